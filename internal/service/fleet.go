// Package service contains the application-facing write and read operations
// over the local record store. Every mutation funnels through here so the
// pending-on-mutate convention the reconciliation engine depends on is
// enforced in one place.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josepatrial/studioapviagem-sub000/internal/identity"
	"github.com/josepatrial/studioapviagem-sub000/internal/models"
	"github.com/josepatrial/studioapviagem-sub000/internal/store"
)

// Fleet exposes create/update/delete/list over the trip-logging collections.
// All writes land locally with status pending; reconciliation happens later.
type Fleet struct {
	store    store.Store
	identity identity.Provider
	now      func() time.Time
}

func NewFleet(s store.Store, id identity.Provider) *Fleet {
	return &Fleet{store: s, identity: id, now: func() time.Time { return time.Now().UTC() }}
}

func (f *Fleet) create(ctx context.Context, collection, ownerID string, parent models.ParentRef, payload any, att models.Attachment) (*models.Record, error) {
	body, err := models.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	rec := &models.Record{
		Meta: models.Meta{
			LocalID:   uuid.NewString(),
			Status:    models.StatusPending,
			UpdatedAt: f.now(),
			OwnerID:   ownerID,
		},
		Collection: collection,
		Parent:     parent,
		Payload:    body,
		Attachment: att,
	}

	if err := f.store.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}
	return rec, nil
}

// AddExpenseType and AddFuelType create taxonomy entries (no owner, no parent).
func (f *Fleet) AddExpenseType(ctx context.Context, v models.ExpenseType) (*models.Record, error) {
	return f.create(ctx, models.CollectionExpenseTypes, "", models.ParentRef{}, v, models.Attachment{})
}

func (f *Fleet) AddFuelType(ctx context.Context, v models.FuelType) (*models.Record, error) {
	return f.create(ctx, models.CollectionFuelTypes, "", models.ParentRef{}, v, models.Attachment{})
}

func (f *Fleet) AddDriver(ctx context.Context, v models.Driver) (*models.Record, error) {
	return f.create(ctx, models.CollectionDrivers, f.identity.SubjectID(), models.ParentRef{}, v, models.Attachment{})
}

func (f *Fleet) AddVehicle(ctx context.Context, v models.Vehicle) (*models.Record, error) {
	return f.create(ctx, models.CollectionVehicles, f.identity.SubjectID(), models.ParentRef{}, v, models.Attachment{})
}

// AddTrip creates a trip referencing a vehicle that may itself still be
// unsynced; the ref is resolved at push time.
func (f *Fleet) AddTrip(ctx context.Context, vehicleLocalID string, v models.Trip) (*models.Record, error) {
	return f.create(ctx, models.CollectionTrips, f.identity.SubjectID(), models.LocalRef(vehicleLocalID), v, models.Attachment{})
}

func (f *Fleet) AddVisit(ctx context.Context, tripLocalID string, v models.Visit) (*models.Record, error) {
	return f.create(ctx, models.CollectionVisits, f.identity.SubjectID(), models.LocalRef(tripLocalID), v, models.Attachment{})
}

// AddExpense creates an expense; receiptDataURI may be empty.
func (f *Fleet) AddExpense(ctx context.Context, tripLocalID string, v models.Expense, receiptDataURI string) (*models.Record, error) {
	att := models.Attachment{Blob: receiptDataURI}
	return f.create(ctx, models.CollectionExpenses, f.identity.SubjectID(), models.LocalRef(tripLocalID), v, att)
}

// AddFuelPurchase creates a refueling under a trip, with a secondary
// reference to the vehicle.
func (f *Fleet) AddFuelPurchase(ctx context.Context, tripLocalID, vehicleLocalID string, v models.FuelPurchase, receiptDataURI string) (*models.Record, error) {
	v.VehicleRef = models.LocalRef(vehicleLocalID)
	att := models.Attachment{Blob: receiptDataURI}
	return f.create(ctx, models.CollectionFuelPurchases, f.identity.SubjectID(), models.LocalRef(tripLocalID), v, att)
}

// Update overwrites a record's business payload and resets it to pending,
// even if it had been synced before.
func (f *Fleet) Update(ctx context.Context, collection, localID string, payload any) (*models.Record, error) {
	rec, err := f.store.Get(ctx, collection, localID)
	if err != nil {
		return nil, err
	}

	body, err := models.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	rec.Payload = body
	rec.Status = models.StatusPending
	rec.UpdatedAt = f.now()

	if err := f.store.Put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ReplaceAttachment installs a freshly captured blob; any previously
// uploaded object is replaced at the next reconciliation pass.
func (f *Fleet) ReplaceAttachment(ctx context.Context, collection, localID, dataURI string) error {
	rec, err := f.store.Get(ctx, collection, localID)
	if err != nil {
		return err
	}

	rec.Attachment.Blob = dataURI
	rec.Status = models.StatusPending
	rec.UpdatedAt = f.now()
	return f.store.Put(ctx, rec)
}

// RemoveAttachment drops the record's attachment. The blob and URL are
// cleared; the storage path is kept so the engine can delete the remote
// object once the record write is confirmed.
func (f *Fleet) RemoveAttachment(ctx context.Context, collection, localID string) error {
	rec, err := f.store.Get(ctx, collection, localID)
	if err != nil {
		return err
	}

	rec.Attachment.Blob = ""
	rec.Attachment.URL = ""
	rec.Status = models.StatusPending
	rec.UpdatedAt = f.now()
	return f.store.Put(ctx, rec)
}

// Delete tombstones a record: hidden from reads immediately, purged locally
// only after the remote deletion is confirmed.
func (f *Fleet) Delete(ctx context.Context, collection, localID string) error {
	rec, err := f.store.Get(ctx, collection, localID)
	if err != nil {
		return err
	}

	rec.Deleted = true
	rec.Status = models.StatusPending
	rec.UpdatedAt = f.now()
	return f.store.Put(ctx, rec)
}

// List returns the non-deleted records of a collection, optionally filtered
// by their primary parent.
func (f *Fleet) List(ctx context.Context, collection, parentLocalID string) ([]*models.Record, error) {
	return f.store.QueryActive(ctx, collection, parentLocalID)
}

// Get returns a single record by local id.
func (f *Fleet) Get(ctx context.Context, collection, localID string) (*models.Record, error) {
	return f.store.Get(ctx, collection, localID)
}
