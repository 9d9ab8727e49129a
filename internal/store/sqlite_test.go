package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josepatrial/studioapviagem-sub000/internal/common"
	"github.com/josepatrial/studioapviagem-sub000/internal/models"
)

func setup(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteStore(db)
}

func sampleRecord(localID string) *models.Record {
	return &models.Record{
		Meta: models.Meta{
			LocalID:   localID,
			Status:    models.StatusPending,
			UpdatedAt: time.Date(2026, 3, 14, 10, 0, 0, 123456000, time.UTC),
			OwnerID:   "user-1",
		},
		Collection: models.CollectionTrips,
		Parent:     models.LocalRef("v1"),
		Payload:    []byte(`{"name":"north run"}`),
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	want := sampleRecord("t1")
	want.Attachment = models.Attachment{Blob: "data:image/jpeg;base64,AAA", URL: "https://x/u", Path: "receipts/p"}
	require.NoError(t, s.Put(ctx, want))

	got, err := s.Get(ctx, models.CollectionTrips, "t1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetNotFound(t *testing.T) {
	s := setup(t)

	_, err := s.Get(context.Background(), models.CollectionTrips, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPutUpsertsByLocalID(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	rec := sampleRecord("t1")
	require.NoError(t, s.Put(ctx, rec))

	rec.RemoteID = "srv-1"
	rec.Status = models.StatusSynced
	rec.Parent = models.RemoteRef("srv-v")
	require.NoError(t, s.Put(ctx, rec))

	got, err := s.Get(ctx, models.CollectionTrips, "t1")
	require.NoError(t, err)
	assert.Equal(t, "srv-1", got.RemoteID)
	assert.Equal(t, models.StatusSynced, got.Status)
	remoteID, isRemote := got.Parent.Remote()
	assert.True(t, isRemote)
	assert.Equal(t, "srv-v", remoteID)
}

func TestGetByRemoteID(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	rec := sampleRecord("t1")
	rec.RemoteID = "srv-1"
	require.NoError(t, s.Put(ctx, rec))

	got, err := s.GetByRemoteID(ctx, models.CollectionTrips, "srv-1")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.LocalID)

	_, err = s.GetByRemoteID(ctx, models.CollectionTrips, "srv-2")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// Records without a remote id never match the empty string.
	require.NoError(t, s.Put(ctx, sampleRecord("t2")))
	_, err = s.GetByRemoteID(ctx, models.CollectionTrips, "")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestQueryActive(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	a := sampleRecord("t1")
	b := sampleRecord("t2")
	b.UpdatedAt = a.UpdatedAt.Add(time.Minute)
	b.Parent = models.LocalRef("v2")
	dead := sampleRecord("t3")
	dead.Deleted = true
	require.NoError(t, s.Put(ctx, a))
	require.NoError(t, s.Put(ctx, b))
	require.NoError(t, s.Put(ctx, dead))

	all, err := s.QueryActive(ctx, models.CollectionTrips, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "t1", all[0].LocalID)
	assert.Equal(t, "t2", all[1].LocalID)

	byParent, err := s.QueryActive(ctx, models.CollectionTrips, "v2")
	require.NoError(t, err)
	require.Len(t, byParent, 1)
	assert.Equal(t, "t2", byParent[0].LocalID)
}

func TestQueryPending(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	pending := sampleRecord("t1")
	errored := sampleRecord("t2")
	errored.Status = models.StatusError
	tombstone := sampleRecord("t3")
	tombstone.Status = models.StatusSynced
	tombstone.Deleted = true
	synced := sampleRecord("t4")
	synced.Status = models.StatusSynced
	for _, rec := range []*models.Record{pending, errored, tombstone, synced} {
		require.NoError(t, s.Put(ctx, rec))
	}

	got, err := s.QueryPending(ctx, models.CollectionTrips)
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, rec := range got {
		ids = append(ids, rec.LocalID)
	}
	assert.ElementsMatch(t, []string{"t1", "t2", "t3"}, ids)
}

func TestCountPending(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	trip := sampleRecord("t1")
	require.NoError(t, s.Put(ctx, trip))

	vehicle := sampleRecord("v1")
	vehicle.Collection = models.CollectionVehicles
	vehicle.Parent = models.ParentRef{}
	require.NoError(t, s.Put(ctx, vehicle))

	synced := sampleRecord("t2")
	synced.Status = models.StatusSynced
	require.NoError(t, s.Put(ctx, synced))

	n, err := s.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPurgeSyncedTombstones(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	confirmed := sampleRecord("t1")
	confirmed.Status = models.StatusSynced
	confirmed.Deleted = true
	retrying := sampleRecord("t2")
	retrying.Status = models.StatusError
	retrying.Deleted = true
	live := sampleRecord("t3")
	live.Status = models.StatusSynced
	for _, rec := range []*models.Record{confirmed, retrying, live} {
		require.NoError(t, s.Put(ctx, rec))
	}

	n, err := s.PurgeSyncedTombstones(ctx, models.CollectionTrips)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.Get(ctx, models.CollectionTrips, "t1")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = s.Get(ctx, models.CollectionTrips, "t2")
	assert.NoError(t, err)
	_, err = s.Get(ctx, models.CollectionTrips, "t3")
	assert.NoError(t, err)
}
