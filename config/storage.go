package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	osfs "github.com/hack-pad/hackpadfs/os"
)

// OpenStorage returns the attachment file system. ":memory:" keeps files in process.
func OpenStorage(config Config) (hackpadfs.FS, error) {
	if config.StorageRoot == "" || config.StorageRoot == ":memory:" {
		return mem.NewFS()
	}

	abs, err := filepath.Abs(config.StorageRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	rel := strings.TrimPrefix(filepath.ToSlash(abs), "/")

	root := osfs.NewFS()
	if err := hackpadfs.MkdirAll(root, rel, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	sub, err := root.Sub(rel)
	if err != nil {
		return nil, fmt.Errorf("open storage root: %w", err)
	}

	Logger.Infow("attachment storage ready", "root", abs)
	return sub, nil
}
