package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josepatrial/studioapviagem-sub000/internal/common"
	"github.com/josepatrial/studioapviagem-sub000/internal/identity"
	"github.com/josepatrial/studioapviagem-sub000/internal/logging"
	"github.com/josepatrial/studioapviagem-sub000/internal/models"
	"github.com/josepatrial/studioapviagem-sub000/internal/remote"
	"github.com/josepatrial/studioapviagem-sub000/internal/store"
)

// Puller fetches remote collections scoped to the caller's authority and
// merges them into the local store without clobbering unsynced local edits.
type Puller struct {
	store    store.Store
	remote   remote.Store
	identity identity.Provider
	registry []Descriptor
	log      logging.Logger
}

func NewPuller(s store.Store, r remote.Store, id identity.Provider, registry []Descriptor, log logging.Logger) *Puller {
	return &Puller{store: s, remote: r, identity: id, registry: registry, log: log}
}

// Pull merges every collection. It returns the number of records inserted or
// updated locally, and the number of collections whose fetch failed.
// Collection order does not matter here: the merge rule is keyed per record
// and has no cross-collection side effects.
func (p *Puller) Pull(ctx context.Context) (pulled, failed int) {
	for _, desc := range p.registry {
		n, err := p.pullCollection(ctx, desc)
		pulled += n
		if err != nil {
			p.log.Error(ctx, "pull failed", "collection", desc.Name, "error", err)
			failed++
		}
	}
	return pulled, failed
}

func (p *Puller) pullCollection(ctx context.Context, desc Descriptor) (int, error) {
	var filter remote.Filter
	if desc.Owned && !p.identity.Elevated() {
		filter.OwnerID = p.identity.SubjectID()
	}

	rows, err := p.remote.Query(ctx, desc.Name, filter)
	if err != nil {
		return 0, err
	}

	merged := 0
	for _, row := range rows {
		ok, err := p.mergeRecord(ctx, desc, row)
		if err != nil {
			p.log.Warn(ctx, "failed to merge remote record",
				"collection", desc.Name, "remoteId", row.ID, "error", err)
			continue
		}
		if ok {
			merged++
		}
	}
	return merged, nil
}

// mergeRecord applies the non-destructive merge rule: insert unknown remote
// records as synced; never overwrite a record with unsynced local changes;
// otherwise overwrite only when the remote copy is strictly newer.
func (p *Puller) mergeRecord(ctx context.Context, desc Descriptor, row remote.Record) (bool, error) {
	local, err := p.store.GetByRemoteID(ctx, desc.Name, row.ID)
	switch {
	case errors.Is(err, common.ErrNotFound):
		rec, err := recordFromRemote(desc, row)
		if err != nil {
			return false, err
		}
		return true, p.store.Put(ctx, rec)
	case err != nil:
		return false, err
	}

	// Local pending edits win: an edit the push engine has not had a chance
	// to send yet, a failed attempt awaiting retry, or a tombstone awaiting
	// its delete confirmation must not be resurrected or overwritten.
	if local.NeedsPush() {
		return false, nil
	}

	if !row.UpdatedAt.After(local.UpdatedAt) {
		return false, nil
	}

	rec, err := recordFromRemote(desc, row)
	if err != nil {
		return false, err
	}
	rec.LocalID = local.LocalID
	return true, p.store.Put(ctx, rec)
}

// recordFromRemote converts a fetched remote record into a local synced
// record. The primary parent id moves into the Parent ref columns; owner and
// attachment fields move into their envelope columns; the rest stays as the
// business payload.
func recordFromRemote(desc Descriptor, row remote.Record) (*models.Record, error) {
	fields := make(map[string]any, len(row.Fields))
	for k, v := range row.Fields {
		fields[k] = v
	}

	rec := &models.Record{
		Meta: models.Meta{
			LocalID:   uuid.NewString(),
			RemoteID:  row.ID,
			Status:    models.StatusSynced,
			UpdatedAt: row.UpdatedAt,
		},
		Collection: desc.Name,
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}

	if ownerID, ok := fields["ownerId"].(string); ok {
		rec.OwnerID = ownerID
		delete(fields, "ownerId")
	}

	if desc.ParentIDKey != "" {
		if parentID, ok := fields[desc.ParentIDKey].(string); ok && parentID != "" {
			rec.Parent = models.RemoteRef(parentID)
			delete(fields, desc.ParentIDKey)
		}
	}

	if desc.HasAttachment() {
		if url, ok := fields["attachmentUrl"].(string); ok {
			rec.Attachment.URL = url
		}
		if path, ok := fields["attachmentPath"].(string); ok {
			rec.Attachment.Path = path
		}
		delete(fields, "attachmentUrl")
		delete(fields, "attachmentPath")
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pulled payload: %w", err)
	}
	rec.Payload = payload

	return rec, nil
}
