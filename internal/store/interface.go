// Package store is the typed adapter over the local embedded database. It
// owns the on-disk shape of every record collection and the sync-status
// conventions the reconciliation engine relies on.
package store

import (
	"context"

	"github.com/josepatrial/studioapviagem-sub000/internal/models"
)

// Store describes the record operations consumed by the UI-facing service
// layer and the reconciliation engine. There is deliberately no
// partial-field update: callers read-modify-write whole records, which keeps
// "is this record pending" checks race-free within a single-threaded pass.
type Store interface {
	// Get returns a record by local id, or common.ErrNotFound.
	Get(ctx context.Context, collection, localID string) (*models.Record, error)

	// GetByRemoteID returns a record by its server-assigned id, or
	// common.ErrNotFound. Used by the pull engine's merge.
	GetByRemoteID(ctx context.Context, collection, remoteID string) (*models.Record, error)

	// Put upserts a record, overwriting every column.
	Put(ctx context.Context, rec *models.Record) error

	// QueryActive returns non-deleted records of a collection, optionally
	// filtered by the primary parent's local id ("" means no filter).
	QueryActive(ctx context.Context, collection, parentLocalID string) ([]*models.Record, error)

	// QueryPending returns records awaiting reconciliation: status pending
	// or error, or tombstoned.
	QueryPending(ctx context.Context, collection string) ([]*models.Record, error)

	// CountPending counts records awaiting reconciliation across all
	// collections; it backs the published PendingCount.
	CountPending(ctx context.Context) (int, error)

	// PurgeSyncedTombstones hard-deletes tombstones whose deletion has been
	// confirmed remotely (status synced). Returns the number purged.
	PurgeSyncedTombstones(ctx context.Context, collection string) (int, error)
}
