package storage

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"path"
)

// CollectStatic uploads every regular file of root to the static area,
// keeping relative paths. It returns the number of files stored.
func CollectStatic(ctx context.Context, store ObjectStore, root fs.FS) (int, error) {
	count := 0
	err := fs.WalkDir(root, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		f, err := root.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()

		contentType := mime.TypeByExtension(path.Ext(name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		if _, err := store.PutStatic(ctx, name, contentType, f); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("collect static files: %w", err)
	}
	return count, nil
}
