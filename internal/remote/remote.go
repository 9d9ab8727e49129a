// Package remote defines the client of the authoritative remote store and
// its REST implementation. The reconciliation engine depends only on the
// Store interface; timeouts and transport concerns live here.
package remote

import (
	"context"
	"time"
)

// Record is a remote record as returned by Query: the server-assigned id,
// the server's last-modified timestamp, and the business fields.
type Record struct {
	ID        string
	UpdatedAt time.Time
	Fields    map[string]any
}

// Filter scopes a Query. OwnerID restricts results to one subject's records;
// leaving it empty requests every record visible to the caller's
// organizational scope (only honored for elevated roles).
type Filter struct {
	OwnerID string
}

// Store is the per-collection create/update/delete/query surface of the
// remote authoritative store.
type Store interface {
	// Create inserts a payload and returns the server-assigned id. The
	// idempotency key (the record's local id) lets a backend deduplicate a
	// retried create after a crash between remote accept and local
	// bookkeeping.
	Create(ctx context.Context, collection string, payload map[string]any, idempotencyKey string) (string, error)

	// Update overwrites the given fields of an existing remote record.
	Update(ctx context.Context, collection, remoteID string, payload map[string]any) error

	// Delete removes a remote record.
	Delete(ctx context.Context, collection, remoteID string) error

	// Query returns the remote records matching the filter.
	Query(ctx context.Context, collection string, filter Filter) ([]Record, error)
}
