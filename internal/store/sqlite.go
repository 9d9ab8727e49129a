package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/josepatrial/studioapviagem-sub000/internal/common"
	"github.com/josepatrial/studioapviagem-sub000/internal/dbx"
	"github.com/josepatrial/studioapviagem-sub000/internal/models"
)

// SQLiteStore implements Store using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteStore struct {
	db dbx.DBTX
}

// NewSQLiteStore returns a new SQLiteStore bound to the given DBTX.
func NewSQLiteStore(db dbx.DBTX) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const recordColumns = `collection, local_id, remote_id, status, deleted, updated_at, owner_id,
	parent_local, parent_remote, payload, attachment_blob, attachment_url, attachment_path`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	var (
		rec          models.Record
		status       string
		deleted      int
		updatedAt    string
		parentLocal  string
		parentRemote string
		payload      string
	)
	err := row.Scan(&rec.Collection, &rec.LocalID, &rec.RemoteID, &status, &deleted, &updatedAt,
		&rec.OwnerID, &parentLocal, &parentRemote, &payload,
		&rec.Attachment.Blob, &rec.Attachment.URL, &rec.Attachment.Path)
	if err != nil {
		return nil, err
	}

	rec.Status = models.SyncStatus(status)
	rec.Deleted = deleted != 0
	rec.Payload = []byte(payload)

	if parentLocal != "" {
		rec.Parent = models.LocalRef(parentLocal)
	} else if parentRemote != "" {
		rec.Parent = models.RemoteRef(parentRemote)
	}

	ts, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	rec.UpdatedAt = ts

	return &rec, nil
}

// Get returns a record by local id.
func (s *SQLiteStore) Get(ctx context.Context, collection, localID string) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE collection=? AND local_id=?`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, collection, localID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select record: %w", err)
	}
	return rec, nil
}

// GetByRemoteID returns a record by its server-assigned id.
func (s *SQLiteStore) GetByRemoteID(ctx context.Context, collection, remoteID string) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE collection=? AND remote_id=? AND remote_id!=''`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, collection, remoteID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select record by remote id: %w", err)
	}
	return rec, nil
}

// Put upserts a record by (collection, local_id). Every column is
// overwritten; there is no partial update path.
func (s *SQLiteStore) Put(ctx context.Context, rec *models.Record) error {
	parentLocal, _ := rec.Parent.Local()
	parentRemote, _ := rec.Parent.Remote()

	payload := rec.Payload
	if len(payload) == 0 {
		payload = []byte(`{}`)
	}

	query := `INSERT INTO records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, local_id) DO UPDATE SET
			remote_id = excluded.remote_id,
			status = excluded.status,
			deleted = excluded.deleted,
			updated_at = excluded.updated_at,
			owner_id = excluded.owner_id,
			parent_local = excluded.parent_local,
			parent_remote = excluded.parent_remote,
			payload = excluded.payload,
			attachment_blob = excluded.attachment_blob,
			attachment_url = excluded.attachment_url,
			attachment_path = excluded.attachment_path`

	deleted := 0
	if rec.Deleted {
		deleted = 1
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.Collection, rec.LocalID, rec.RemoteID, string(rec.Status), deleted,
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano), rec.OwnerID,
		parentLocal, parentRemote, string(payload),
		rec.Attachment.Blob, rec.Attachment.URL, rec.Attachment.Path)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) queryRecords(ctx context.Context, query string, args ...any) ([]*models.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// QueryActive lists non-deleted records, optionally filtered by the primary
// parent's local id.
func (s *SQLiteStore) QueryActive(ctx context.Context, collection, parentLocalID string) ([]*models.Record, error) {
	if parentLocalID != "" {
		query := `SELECT ` + recordColumns + ` FROM records
			WHERE collection=? AND deleted=0 AND parent_local=? ORDER BY updated_at`
		return s.queryRecords(ctx, query, collection, parentLocalID)
	}
	query := `SELECT ` + recordColumns + ` FROM records
		WHERE collection=? AND deleted=0 ORDER BY updated_at`
	return s.queryRecords(ctx, query, collection)
}

// QueryPending lists records the push engine must visit: unsynced edits,
// failed attempts, and tombstones. Ordered by updated_at so parents created
// earlier tend to land before their children within the same collection.
func (s *SQLiteStore) QueryPending(ctx context.Context, collection string) ([]*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records
		WHERE collection=? AND (status IN ('pending', 'error') OR deleted=1)
		ORDER BY updated_at`
	return s.queryRecords(ctx, query, collection)
}

// CountPending counts records awaiting reconciliation across all collections.
func (s *SQLiteStore) CountPending(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM records WHERE status IN ('pending', 'error') OR deleted=1`
	var n int
	if err := s.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending records: %w", err)
	}
	return n, nil
}

// PurgeSyncedTombstones hard-deletes tombstones whose remote deletion has
// been confirmed. Pending or errored tombstones are kept for retry.
func (s *SQLiteStore) PurgeSyncedTombstones(ctx context.Context, collection string) (int, error) {
	query := `DELETE FROM records WHERE collection=? AND deleted=1 AND status='synced'`
	res, err := s.db.ExecContext(ctx, query, collection)
	if err != nil {
		return 0, fmt.Errorf("failed to purge tombstones: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}
