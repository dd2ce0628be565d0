// Package backup copies namespace files to any afs supported location
// (local paths, file://, gs:// and s3:// when the afsc connectors are registered).
package backup

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/quickkv/storage/filestore"
)

// Namespace copies the data file and metadata sidecar of namespace under destURL.
// The store should be saved first so the sidecar matches the data file.
// It returns the destination URLs written.
func Namespace(ctx context.Context, fs afs.Service, baseURL, namespace, destURL string) ([]string, error) {
	sources := []string{
		filestore.DataPath(baseURL, namespace),
		filestore.MetaPath(baseURL, namespace),
	}
	var written []string
	for _, source := range sources {
		exists, err := fs.Exists(ctx, source)
		if err != nil {
			return written, fmt.Errorf("backup: check %v: %w", source, err)
		}
		if !exists {
			return written, fmt.Errorf("backup: %v does not exist", source)
		}
		data, err := fs.DownloadWithURL(ctx, source)
		if err != nil {
			return written, fmt.Errorf("backup: read %v: %w", source, err)
		}
		dest := url.Join(destURL, filepath.Base(source))
		if err := fs.Upload(ctx, dest, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
			return written, fmt.Errorf("backup: write %v: %w", dest, err)
		}
		written = append(written, dest)
	}
	return written, nil
}
