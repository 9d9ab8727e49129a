// Package blob defines the binary attachment storage consumed by the
// reconciliation engine, plus its S3-compatible implementation.
package blob

import "context"

// Store uploads and deletes attachment blobs. Upload returns both a
// remote-readable URL and the storage key (path) needed to delete the
// object later.
type Store interface {
	Upload(ctx context.Context, dataURI, folder string) (url, path string, err error)
	Delete(ctx context.Context, path string) error
}
