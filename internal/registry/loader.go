// Package registry lists the model files shipped in an asset store.
package registry

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// Asset is one model file found in the asset store.
type Asset struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Scan lists *.gguf files (case-insensitive) at the root of fsys, sorted by name.
func Scan(fsys fs.FS) ([]Asset, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read assets: %w", err)
	}
	var assets []Asset
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".gguf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		assets = append(assets, Asset{Name: e.Name(), Size: info.Size()})
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets, nil
}

// Lookup returns the asset called name.
func Lookup(assets []Asset, name string) (Asset, bool) {
	for _, a := range assets {
		if a.Name == name {
			return a, true
		}
	}
	return Asset{}, false
}
