package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/josepatrial/studioapviagem-sub000/internal/blob"
	"github.com/josepatrial/studioapviagem-sub000/internal/logging"
	"github.com/josepatrial/studioapviagem-sub000/internal/models"
	"github.com/josepatrial/studioapviagem-sub000/internal/remote"
	"github.com/josepatrial/studioapviagem-sub000/internal/store"
)

// Counters aggregates the per-item outcomes of one push pass.
type Counters struct {
	Synced  int
	Errors  int
	Skipped int
}

func (c *Counters) add(o outcome) {
	switch o {
	case outcomeSynced:
		c.Synced++
	case outcomeErrored:
		c.Errors++
	case outcomeSkipped:
		c.Skipped++
	}
}

type outcome int

const (
	outcomeSynced outcome = iota
	outcomeErrored
	outcomeSkipped
)

// Pusher walks the pending queue collection by collection, in registry
// (dependency) order, and reconciles each record against the remote store.
// Items are processed strictly sequentially so a parent created early in a
// pass is visible to its children later in the same pass.
type Pusher struct {
	store    store.Store
	remote   remote.Store
	blobs    blob.Store
	resolver *Resolver
	registry []Descriptor
	log      logging.Logger
}

func NewPusher(s store.Store, r remote.Store, b blob.Store, registry []Descriptor, log logging.Logger) *Pusher {
	return &Pusher{
		store:    s,
		remote:   r,
		blobs:    b,
		resolver: NewResolver(s),
		registry: registry,
		log:      log,
	}
}

// Push reconciles every pending record. Per-item failures are absorbed into
// the counters; nothing thrown inside one item aborts the loop.
func (p *Pusher) Push(ctx context.Context) Counters {
	var counters Counters
	for _, desc := range p.registry {
		pending, err := p.store.QueryPending(ctx, desc.Name)
		if err != nil {
			p.log.Error(ctx, "failed to read pending queue", "collection", desc.Name, "error", err)
			counters.Errors++
			continue
		}
		for _, rec := range pending {
			counters.add(p.pushRecord(ctx, desc, rec))
		}
	}
	return counters
}

// markError flips only the record's sync status; every other field keeps its
// pre-pass value.
func (p *Pusher) markError(ctx context.Context, rec *models.Record, cause error) outcome {
	p.log.Warn(ctx, "record reconciliation failed",
		"collection", rec.Collection, "localId", rec.LocalID, "error", cause)
	rec.Status = models.StatusError
	if err := p.store.Put(ctx, rec); err != nil {
		p.log.Error(ctx, "failed to persist error status",
			"collection", rec.Collection, "localId", rec.LocalID, "error", err)
	}
	return outcomeErrored
}

func (p *Pusher) pushRecord(ctx context.Context, desc Descriptor, rec *models.Record) outcome {
	if rec.Deleted {
		return p.pushTombstone(ctx, desc, rec)
	}

	fields, err := payloadFields(rec.Payload)
	if err != nil {
		return p.markError(ctx, rec, err)
	}

	// Foreign-key substitution happens immediately before the remote write:
	// local refs are replaced by remote ids, ref keys never leave the device.
	if desc.Parent != "" {
		remoteID, ok, err := p.resolver.ResolveParent(ctx, rec.Parent, desc.Parent)
		if err != nil {
			return p.markError(ctx, rec, err)
		}
		if !ok {
			return outcomeSkipped
		}
		fields[desc.ParentIDKey] = remoteID
	}

	for _, link := range desc.Links {
		ref, err := refFromAny(fields[link.RefKey])
		if err != nil {
			return p.markError(ctx, rec, err)
		}
		delete(fields, link.RefKey)
		if ref.IsZero() {
			continue
		}
		remoteID, ok, err := p.resolver.ResolveParent(ctx, ref, link.Parent)
		if err != nil {
			return p.markError(ctx, rec, err)
		}
		if !ok {
			return outcomeSkipped
		}
		fields[link.IDKey] = remoteID
	}

	if desc.Owned {
		fields["ownerId"] = rec.OwnerID
	}

	plan := planAttachment(rec.Attachment)
	var newURL, newPath string
	switch {
	case plan.Upload:
		newURL, newPath, err = p.blobs.Upload(ctx, rec.Attachment.Blob, desc.AttachmentFolder)
		if err != nil {
			return p.markError(ctx, rec, fmt.Errorf("attachment upload failed: %w", err))
		}
		fields["attachmentUrl"] = newURL
		fields["attachmentPath"] = newPath
	case plan.Clear:
		fields["attachmentUrl"] = ""
		fields["attachmentPath"] = ""
	case rec.Attachment.Uploaded():
		fields["attachmentUrl"] = rec.Attachment.URL
		fields["attachmentPath"] = rec.Attachment.Path
	}

	remoteID := rec.RemoteID
	if remoteID == "" {
		remoteID, err = p.remote.Create(ctx, desc.Name, fields, rec.LocalID)
	} else {
		err = p.remote.Update(ctx, desc.Name, remoteID, fields)
	}
	if err != nil {
		// Roll back a blob uploaded this pass so storage never accumulates
		// objects with no referencing record. Rollback failure is logged
		// only: an orphaned blob beats a broken reference.
		if plan.Upload && newPath != "" {
			if delErr := p.blobs.Delete(ctx, newPath); delErr != nil {
				p.log.Warn(ctx, "attachment rollback failed", "path", newPath, "error", delErr)
			}
		}
		return p.markError(ctx, rec, err)
	}

	rec.RemoteID = remoteID
	rec.Status = models.StatusSynced
	if plan.Upload {
		rec.Attachment = models.Attachment{URL: newURL, Path: newPath}
	} else if plan.Clear {
		rec.Attachment = models.Attachment{}
	}

	if err := p.store.Put(ctx, rec); err != nil {
		// The remote store accepted the write but the local bookkeeping
		// failed. The next pass retries the create with the same idempotency
		// key; whether that deduplicates is up to the backend.
		p.log.Error(ctx, "failed to record remote id locally",
			"collection", rec.Collection, "localId", rec.LocalID, "error", err)
		return outcomeErrored
	}

	// Deferred deletion of the replaced or removed attachment: only after
	// the record write went through is the old object unreferenced.
	if plan.OldPath != "" {
		if err := p.blobs.Delete(ctx, plan.OldPath); err != nil {
			p.log.Warn(ctx, "failed to delete old attachment", "path", plan.OldPath, "error", err)
		}
	}

	return outcomeSynced
}

// pushTombstone confirms a deletion remotely. A record that never obtained a
// remote id reconciles trivially: it becomes purge-eligible without any
// remote call.
func (p *Pusher) pushTombstone(ctx context.Context, desc Descriptor, rec *models.Record) outcome {
	if rec.RemoteID != "" {
		if err := p.remote.Delete(ctx, desc.Name, rec.RemoteID); err != nil {
			return p.markError(ctx, rec, err)
		}
		if rec.Attachment.Uploaded() {
			if err := p.blobs.Delete(ctx, rec.Attachment.Path); err != nil {
				p.log.Warn(ctx, "failed to delete attachment of removed record",
					"path", rec.Attachment.Path, "error", err)
			}
		}
	}

	rec.Status = models.StatusSynced
	if err := p.store.Put(ctx, rec); err != nil {
		return p.markError(ctx, rec, err)
	}
	return outcomeSynced
}

func payloadFields(payload json.RawMessage) (map[string]any, error) {
	fields := map[string]any{}
	if len(payload) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return fields, nil
}

func refFromAny(v any) (models.ParentRef, error) {
	if v == nil {
		return models.ParentRef{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return models.ParentRef{}, err
	}
	var ref models.ParentRef
	if err := json.Unmarshal(b, &ref); err != nil {
		return models.ParentRef{}, fmt.Errorf("failed to decode parent ref: %w", err)
	}
	return ref, nil
}
