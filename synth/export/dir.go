package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirSink writes each unit to <root>/<key>/ on the local filesystem.
type DirSink struct {
	root string
	cfg  config
}

// NewDirSink returns a sink rooted at root. An empty root means the current
// working directory.
func NewDirSink(root string, opts ...Option) (*DirSink, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	if root == "" {
		root, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
	}
	return &DirSink{root: root, cfg: cfg}, nil
}

// Root returns the output directory.
func (s *DirSink) Root() string { return s.root }

// Write encodes u and stores its files. Each file is written to a temporary
// name and renamed so a failed write never leaves a truncated array behind.
func (s *DirSink) Write(ctx context.Context, u Unit) error {
	files, err := s.cfg.encode(u)
	if err != nil {
		return err
	}
	dir := filepath.Join(s.root, u.Key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dir, f.name)
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, f.data, 0o644); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if err := os.Rename(tmp, path); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("export: %w", err)
		}
	}
	return nil
}
