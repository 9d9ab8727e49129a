package sync

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josepatrial/studioapviagem-sub000/internal/logging"
	"github.com/josepatrial/studioapviagem-sub000/internal/models"
	"github.com/josepatrial/studioapviagem-sub000/internal/store"
)

type pullFixture struct {
	store    *store.SQLiteStore
	remote   *fakeRemote
	identity *fakeIdentity
	puller   *Puller
}

func setupPull(t *testing.T) *pullFixture {
	t.Helper()
	s := setupStore(t)
	r := newFakeRemote()
	id := &fakeIdentity{subject: "user-1", authenticated: true}
	return &pullFixture{
		store:    s,
		remote:   r,
		identity: id,
		puller:   NewPuller(s, r, id, DefaultRegistry(), logging.NewNopLogger()),
	}
}

func (f *pullFixture) seedRemote(collection, remoteID string, updatedAt time.Time, fields map[string]any) {
	f.remote.collection(collection)[remoteID] = remoteDoc{fields: fields, updatedAt: updatedAt}
}

func TestPull_InsertsUnknownRecordAsSynced(t *testing.T) {
	f := setupPull(t)
	ctx := context.Background()

	f.seedRemote(models.CollectionExpenses, "srv-1", time.Now().UTC(), map[string]any{
		"ownerId":        "user-1",
		"tripId":         "srv-trip",
		"description":    "toll",
		"amount":         12.5,
		"attachmentUrl":  "https://blobs.local/receipts/r1",
		"attachmentPath": "receipts/r1",
	})

	pulled, failed := f.puller.Pull(ctx)
	assert.Equal(t, 1, pulled)
	assert.Equal(t, 0, failed)

	rec, err := f.store.GetByRemoteID(ctx, models.CollectionExpenses, "srv-1")
	require.NoError(t, err)
	assert.NotEmpty(t, rec.LocalID)
	assert.Equal(t, models.StatusSynced, rec.Status)
	assert.Equal(t, "user-1", rec.OwnerID)
	parentID, isRemote := rec.Parent.Remote()
	assert.True(t, isRemote)
	assert.Equal(t, "srv-trip", parentID)
	assert.Equal(t, "https://blobs.local/receipts/r1", rec.Attachment.URL)
	assert.Equal(t, "receipts/r1", rec.Attachment.Path)

	// Envelope fields do not leak into the business payload.
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Payload, &payload))
	assert.Equal(t, map[string]any{"description": "toll", "amount": 12.5}, payload)
}

func TestPull_LocalPendingEditWins(t *testing.T) {
	f := setupPull(t)
	ctx := context.Background()

	putRecord(t, f.store, &models.Record{
		Meta:       models.Meta{LocalID: "e1", RemoteID: "srv-1", Status: models.StatusPending, OwnerID: "user-1"},
		Collection: models.CollectionExpenses,
		Payload:    []byte(`{"description":"local edit","amount":99}`),
	})
	f.seedRemote(models.CollectionExpenses, "srv-1", time.Now().UTC().Add(time.Hour), map[string]any{
		"ownerId": "user-1", "description": "remote", "amount": 1,
	})

	pulled, failed := f.puller.Pull(ctx)
	assert.Equal(t, 0, pulled)
	assert.Equal(t, 0, failed)

	rec, err := f.store.Get(ctx, models.CollectionExpenses, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, rec.Status)
	assert.JSONEq(t, `{"description":"local edit","amount":99}`, string(rec.Payload))
}

func TestPull_LocalTombstoneNotResurrected(t *testing.T) {
	f := setupPull(t)
	ctx := context.Background()

	putRecord(t, f.store, &models.Record{
		Meta:       models.Meta{LocalID: "e1", RemoteID: "srv-1", Status: models.StatusPending, Deleted: true, OwnerID: "user-1"},
		Collection: models.CollectionExpenses,
		Payload:    []byte(`{"description":"gone"}`),
	})
	f.seedRemote(models.CollectionExpenses, "srv-1", time.Now().UTC().Add(time.Hour), map[string]any{
		"ownerId": "user-1", "description": "still here",
	})

	pulled, _ := f.puller.Pull(ctx)
	assert.Equal(t, 0, pulled)

	rec, err := f.store.Get(ctx, models.CollectionExpenses, "e1")
	require.NoError(t, err)
	assert.True(t, rec.Deleted)
}

func TestPull_NewerRemoteOverwritesKeepingLocalID(t *testing.T) {
	f := setupPull(t)
	ctx := context.Background()

	putRecord(t, f.store, &models.Record{
		Meta: models.Meta{
			LocalID: "e1", RemoteID: "srv-1", Status: models.StatusSynced,
			UpdatedAt: time.Now().UTC().Add(-time.Hour), OwnerID: "user-1",
		},
		Collection: models.CollectionExpenses,
		Payload:    []byte(`{"description":"stale"}`),
	})
	f.seedRemote(models.CollectionExpenses, "srv-1", time.Now().UTC(), map[string]any{
		"ownerId": "user-1", "description": "fresh",
	})

	pulled, _ := f.puller.Pull(ctx)
	assert.Equal(t, 1, pulled)

	rec, err := f.store.Get(ctx, models.CollectionExpenses, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, rec.Status)
	assert.JSONEq(t, `{"description":"fresh"}`, string(rec.Payload))
}

func TestPull_OlderRemoteDiscarded(t *testing.T) {
	f := setupPull(t)
	ctx := context.Background()

	putRecord(t, f.store, &models.Record{
		Meta: models.Meta{
			LocalID: "e1", RemoteID: "srv-1", Status: models.StatusSynced,
			UpdatedAt: time.Now().UTC(), OwnerID: "user-1",
		},
		Collection: models.CollectionExpenses,
		Payload:    []byte(`{"description":"current"}`),
	})
	f.seedRemote(models.CollectionExpenses, "srv-1", time.Now().UTC().Add(-time.Hour), map[string]any{
		"ownerId": "user-1", "description": "old",
	})

	pulled, _ := f.puller.Pull(ctx)
	assert.Equal(t, 0, pulled)

	rec, err := f.store.Get(ctx, models.CollectionExpenses, "e1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":"current"}`, string(rec.Payload))
}

func TestPull_OwnedCollectionsScopedToSubject(t *testing.T) {
	f := setupPull(t)
	ctx := context.Background()

	f.seedRemote(models.CollectionVehicles, "srv-1", time.Now().UTC(), map[string]any{
		"ownerId": "user-1", "plate": "AAA-0001",
	})
	f.seedRemote(models.CollectionVehicles, "srv-2", time.Now().UTC(), map[string]any{
		"ownerId": "user-2", "plate": "BBB-0002",
	})

	pulled, _ := f.puller.Pull(ctx)
	assert.Equal(t, 1, pulled)

	_, err := f.store.GetByRemoteID(ctx, models.CollectionVehicles, "srv-1")
	assert.NoError(t, err)
	_, err = f.store.GetByRemoteID(ctx, models.CollectionVehicles, "srv-2")
	assert.Error(t, err)
}

func TestPull_ElevatedSubjectPullsAllOwners(t *testing.T) {
	f := setupPull(t)
	f.identity.elevated = true
	ctx := context.Background()

	f.seedRemote(models.CollectionVehicles, "srv-1", time.Now().UTC(), map[string]any{
		"ownerId": "user-1", "plate": "AAA-0001",
	})
	f.seedRemote(models.CollectionVehicles, "srv-2", time.Now().UTC(), map[string]any{
		"ownerId": "user-2", "plate": "BBB-0002",
	})

	pulled, _ := f.puller.Pull(ctx)
	assert.Equal(t, 2, pulled)
}

func TestPull_TaxonomyPulledWithoutOwnerFilter(t *testing.T) {
	f := setupPull(t)
	ctx := context.Background()

	f.seedRemote(models.CollectionFuelTypes, "srv-1", time.Now().UTC(), map[string]any{
		"name": "diesel",
	})

	pulled, _ := f.puller.Pull(ctx)
	assert.Equal(t, 1, pulled)

	rec, err := f.store.GetByRemoteID(ctx, models.CollectionFuelTypes, "srv-1")
	require.NoError(t, err)
	assert.Empty(t, rec.OwnerID)
}
