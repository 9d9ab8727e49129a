package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/josepatrial/studioapviagem-sub000/internal/common"
	"github.com/josepatrial/studioapviagem-sub000/internal/models"
	"github.com/josepatrial/studioapviagem-sub000/internal/store"
)

// Resolver decides whether a child's parent reference can be substituted
// with a server-assigned id. A non-resolvable parent is not an error: the
// child is skipped and retried on a later pass, once the parent has landed.
type Resolver struct {
	store store.Store
}

func NewResolver(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// ResolveParent returns the parent's remote id and ok=true when the
// reference is usable remotely. ok=false means SKIP: the parent is unknown,
// still unsynced, or failed its own reconciliation.
func (r *Resolver) ResolveParent(ctx context.Context, ref models.ParentRef, parentCollection string) (string, bool, error) {
	if remoteID, ok := ref.Remote(); ok {
		return remoteID, true, nil
	}

	localID, ok := ref.Local()
	if !ok {
		// No reference at all where one is required; defer rather than fail.
		return "", false, nil
	}

	parent, err := r.store.Get(ctx, parentCollection, localID)
	if errors.Is(err, common.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up parent: %w", err)
	}

	if !parent.Synced() || parent.Deleted {
		return "", false, nil
	}
	return parent.RemoteID, true, nil
}
