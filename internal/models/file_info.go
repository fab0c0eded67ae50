package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalFile is a file chosen on the user's machine for upload.
type LocalFile struct {
	Name string `json:"name"` // base name sent as the multipart filename
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// NewLocalFile stats path and returns the LocalFile describing it.
func NewLocalFile(path string) (*LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	return &LocalFile{
		Name: filepath.Base(path),
		Path: path,
		Size: info.Size(),
	}, nil
}

// HasExtension reports whether the file name ends in one of exts.
// An empty list accepts everything.
func (f LocalFile) HasExtension(exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
