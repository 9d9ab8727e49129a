// Package models defines the record shapes shared by the local store and the
// reconciliation engine: the common sync metadata carried by every record,
// the ParentRef sum type for not-yet-synced foreign keys, and the typed
// business payloads of each collection.
package models

import "time"

// SyncStatus tracks where a local record stands relative to the remote store.
type SyncStatus string

const (
	// StatusPending marks a local write that has not been reconciled yet.
	StatusPending SyncStatus = "pending"
	// StatusSynced means local state matches the last known remote state.
	StatusSynced SyncStatus = "synced"
	// StatusError means the last reconciliation attempt failed; the record
	// is retried on the next pass.
	StatusError SyncStatus = "error"
)

// Collection names as stored locally and addressed remotely.
const (
	CollectionExpenseTypes  = "expenseTypes"
	CollectionFuelTypes     = "fuelTypes"
	CollectionDrivers       = "drivers"
	CollectionVehicles      = "vehicles"
	CollectionTrips         = "trips"
	CollectionVisits        = "visits"
	CollectionExpenses      = "expenses"
	CollectionFuelPurchases = "fuelings"
)

// Meta carries the sync bookkeeping fields common to every local record.
type Meta struct {
	// LocalID is the stable local primary key, generated at creation and
	// never reassigned.
	LocalID string

	// RemoteID is set once the remote store has accepted the record.
	// Empty for never-synced records.
	RemoteID string

	// Status is the record's reconciliation state.
	Status SyncStatus

	// Deleted marks the record as a tombstone: hidden from reads, retained
	// locally until the deletion is confirmed remotely.
	Deleted bool

	// UpdatedAt is the last local mutation time in UTC; the pull engine's
	// merge rule compares it against the remote timestamp.
	UpdatedAt time.Time

	// OwnerID is the subject that created the record; the remote store
	// filters queries by it.
	OwnerID string
}

// NeedsPush reports whether the record must be visited by the push engine.
func (m Meta) NeedsPush() bool {
	return m.Deleted || m.Status == StatusPending || m.Status == StatusError
}

// Synced reports whether the record's remote copy is confirmed up to date.
func (m Meta) Synced() bool {
	return m.Status == StatusSynced && m.RemoteID != ""
}
