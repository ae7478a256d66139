package manager

import (
	"fmt"
	"io/fs"

	"localmind/internal/common/fsutil"
	"localmind/internal/common/hostinfo"
)

// SanityReport describes runtime checks for the engine and the model file.
type SanityReport struct {
	LlamaBuilt     bool   `json:"llama_built"`
	AssetFound     bool   `json:"asset_found"`
	AssetSize      int64  `json:"asset_size,omitempty"`
	ModelPath      string `json:"model_path"`
	ModelExtracted bool   `json:"model_extracted"`
	IntegrityOK    bool   `json:"integrity_ok"`
	// Memory is nil when the platform query fails.
	Memory *hostinfo.Memory `json:"memory,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// CheckModelIntegrity compares the extracted model's size with the bundled
// asset's and fails when they differ by more than IntegrityTolerance.
func (m *Manager) CheckModelIntegrity() error {
	path := m.ModelPath()
	got, err := fsutil.FileSize(path)
	if err != nil {
		return err
	}
	want, err := m.assetSize()
	if err != nil {
		return err
	}
	if !fsutil.SizeWithin(got, want, m.cfg.IntegrityTolerance) {
		return &IntegrityError{Path: path, Got: got, Expected: want}
	}
	return nil
}

func (m *Manager) assetSize() (int64, error) {
	if m.cfg.Assets == nil {
		return 0, fs.ErrNotExist
	}
	fi, err := fs.Stat(m.cfg.Assets, m.cfg.AssetName)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// SanityCheck inspects the build and the files Initialize depends on. It
// does not mutate state and is safe to call at any time.
func (m *Manager) SanityCheck() SanityReport {
	r := SanityReport{LlamaBuilt: llamaBuilt, ModelPath: m.ModelPath()}
	if size, err := m.assetSize(); err == nil {
		r.AssetFound, r.AssetSize = true, size
	} else {
		r.Error = "bundled model: " + err.Error()
	}
	if mem, err := hostinfo.VirtualMemory(); err == nil {
		r.Memory = &mem
		if r.AssetFound && mem.AvailableBytes < uint64(r.AssetSize) {
			r.Error = fmt.Sprintf("available memory %d bytes is below model size %d bytes", mem.AvailableBytes, r.AssetSize)
		}
	}
	r.ModelExtracted = fsutil.PathExists(r.ModelPath)
	if r.ModelExtracted && r.AssetFound {
		if err := m.CheckModelIntegrity(); err != nil {
			r.Error = err.Error()
		} else {
			r.IntegrityOK = true
		}
	}
	return r
}
