package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"localmind/internal/common/fsutil"
)

// extractModel copies the bundled model into the model directory in chunks
// of cfg.ChunkSize, writing to a .partial file that is renamed into place
// only once complete. An existing file that passes the integrity check is
// kept and skipped reports true; one that fails it is replaced.
func (m *Manager) extractModel(ctx context.Context) (skipped bool, err error) {
	dst := m.ModelPath()
	if fsutil.PathExists(dst) {
		ierr := m.CheckModelIntegrity()
		if ierr == nil {
			return true, nil
		}
		m.log.Warn().Err(ierr).Str("event", "reextract").Str("path", dst).Msg("manager")
		if err := os.Remove(dst); err != nil {
			return false, &ExtractionError{Path: dst, Err: err}
		}
	}
	if m.cfg.Assets == nil {
		return false, &ExtractionError{Path: dst, Err: errors.New("no asset store configured")}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, &ExtractionError{Path: dst, Err: err}
	}

	src, err := m.cfg.Assets.Open(m.cfg.AssetName)
	if err != nil {
		return false, &ExtractionError{Path: dst, Err: fmt.Errorf("open bundled model: %w", err)}
	}
	defer src.Close()

	partial := dst + ".partial"
	if err := copyChunked(ctx, partial, src, m.cfg.ChunkSize); err != nil {
		_ = os.Remove(partial)
		return false, &ExtractionError{Path: dst, Err: err}
	}
	if err := os.Rename(partial, dst); err != nil {
		_ = os.Remove(partial)
		return false, &ExtractionError{Path: dst, Err: err}
	}
	return false, nil
}

// copyChunked streams src into a new file at path, checking ctx between chunks.
func copyChunked(ctx context.Context, path string, src fs.File, chunk int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	buf := make([]byte, chunk)
	for {
		if err := ctx.Err(); err != nil {
			f.Close()
			return err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				f.Close()
				return werr
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			f.Close()
			return rerr
		}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
