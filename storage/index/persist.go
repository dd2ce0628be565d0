package index

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/quickkv/storage"
)

// Load reads and decodes the sidecar stored at URL.
func Load(ctx context.Context, fs afs.Service, URL string) (*Index, error) {
	exists, err := fs.Exists(ctx, URL)
	if err != nil || !exists {
		return nil, fmt.Errorf("%w: %v", storage.ErrMetadataDoesntExist, URL)
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %v", storage.ErrMetadataDoesntExist, URL, err)
	}
	return Decode(data)
}

// Save encodes the index and writes it to URL. Local sidecars are written to a
// temporary file first and renamed over URL; other schemes are uploaded directly.
func (ix *Index) Save(ctx context.Context, fs afs.Service, URL string) error {
	data, err := ix.Encode()
	if err != nil {
		return err
	}
	if url.Scheme(URL, file.Scheme) != file.Scheme {
		if err := fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("%w: %v: %v", storage.ErrMetadataSaveFailed, URL, err)
		}
		return nil
	}
	tmp := URL + "." + uuid.NewString() + ".tmp"
	if err := fs.Upload(ctx, tmp, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %v: %v", storage.ErrMetadataCreateFailed, tmp, err)
	}
	if err := os.Rename(url.Path(tmp), url.Path(URL)); err != nil {
		_ = os.Remove(url.Path(tmp))
		return fmt.Errorf("%w: %v: %v", storage.ErrMetadataSaveFailed, URL, err)
	}
	return nil
}
