package sync

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/josepatrial/studioapviagem-sub000/internal/blob"
	"github.com/josepatrial/studioapviagem-sub000/internal/common"
	"github.com/josepatrial/studioapviagem-sub000/internal/identity"
	"github.com/josepatrial/studioapviagem-sub000/internal/logging"
	"github.com/josepatrial/studioapviagem-sub000/internal/netx"
	"github.com/josepatrial/studioapviagem-sub000/internal/remote"
	"github.com/josepatrial/studioapviagem-sub000/internal/store"
)

// Status is the orchestrator's observable state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusSuccess Status = "success"
	StatusFailed  Status = "error"
)

// State is the snapshot published to subscribers after every transition.
type State struct {
	Status       Status
	LastSyncTime time.Time
	PendingCount int
}

// Result aggregates one reconciliation pass.
type Result struct {
	Synced  int
	Errors  int
	Skipped int
	Pulled  int
}

// Listener receives state snapshots. Callbacks run on the syncing goroutine
// and must not block.
type Listener func(State)

// Orchestrator owns the single public operation of the engine: StartSync.
// It enforces mutual exclusion, gates on connectivity and authentication,
// runs Push then Pull then Cleanup, and publishes observable status.
type Orchestrator struct {
	store    store.Store
	identity identity.Provider
	prober   netx.Prober
	pusher   *Pusher
	puller   *Puller
	registry []Descriptor
	log      logging.Logger

	syncing  atomic.Bool
	autoOnce sync.Once

	mu        sync.Mutex
	state     State
	listeners []Listener
}

func NewOrchestrator(
	s store.Store,
	r remote.Store,
	b blob.Store,
	id identity.Provider,
	prober netx.Prober,
	log logging.Logger,
) *Orchestrator {
	registry := DefaultRegistry()
	return &Orchestrator{
		store:    s,
		identity: id,
		prober:   prober,
		pusher:   NewPusher(s, r, b, registry, log),
		puller:   NewPuller(s, r, id, registry, log),
		registry: registry,
		log:      log,
		state:    State{Status: StatusIdle},
	}
}

// Subscribe registers a listener for state snapshots. The current state is
// delivered immediately.
func (o *Orchestrator) Subscribe(fn Listener) {
	o.mu.Lock()
	o.listeners = append(o.listeners, fn)
	state := o.state
	o.mu.Unlock()
	fn(state)
}

// State returns the latest published snapshot.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) publish(mutate func(*State)) {
	o.mu.Lock()
	mutate(&o.state)
	state := o.state
	listeners := o.listeners
	o.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

// StartSync runs one full reconciliation pass: credential refresh, push in
// dependency order, pull, cleanup. A second call while one is in progress is
// rejected with common.ErrSyncInProgress, not queued. Offline and
// unauthenticated states abort before any record is touched.
func (o *Orchestrator) StartSync(ctx context.Context) (*Result, error) {
	if !o.syncing.CompareAndSwap(false, true) {
		return nil, common.ErrSyncInProgress
	}
	defer o.syncing.Store(false)

	if !o.prober.Online(ctx) {
		return nil, common.ErrOffline
	}

	// One refresh attempt; an unusable session fails the whole pass fast.
	if err := o.identity.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
	}

	o.publish(func(s *State) { s.Status = StatusSyncing })

	counters := o.pusher.Push(ctx)
	pulled, pullFailed := o.puller.Pull(ctx)

	purged := o.cleanup(ctx)
	if purged > 0 {
		o.log.Info(ctx, "purged confirmed tombstones", "count", purged)
	}

	result := &Result{
		Synced:  counters.Synced,
		Errors:  counters.Errors + pullFailed,
		Skipped: counters.Skipped,
		Pulled:  pulled,
	}

	pending, err := o.store.CountPending(ctx)
	if err != nil {
		o.log.Error(ctx, "failed to count pending records", "error", err)
		pending = -1
	}

	status := StatusSuccess
	if result.Errors > 0 {
		status = StatusFailed
	}
	o.publish(func(s *State) {
		s.Status = status
		s.LastSyncTime = time.Now().UTC()
		if pending >= 0 {
			s.PendingCount = pending
		}
	})

	o.log.Info(ctx, "sync finished",
		"synced", result.Synced, "errors", result.Errors,
		"skipped", result.Skipped, "pulled", result.Pulled)

	return result, nil
}

// cleanup hard-purges local tombstones whose deletion was confirmed by the
// push phase of this or an earlier pass. It is a separate step by contract:
// a tombstone is never purged in the same breath as the delete call that
// confirmed it.
func (o *Orchestrator) cleanup(ctx context.Context) int {
	total := 0
	for _, desc := range o.registry {
		n, err := o.store.PurgeSyncedTombstones(ctx, desc.Name)
		if err != nil {
			o.log.Error(ctx, "tombstone purge failed", "collection", desc.Name, "error", err)
			continue
		}
		total += n
	}
	return total
}

// AutoSyncOnce triggers a full sync at most once per process, meant to be
// called on the first authenticated+online observation after start. Later
// calls are no-ops.
func (o *Orchestrator) AutoSyncOnce(ctx context.Context) {
	if !o.identity.Authenticated() || !o.prober.Online(ctx) {
		return
	}
	o.autoOnce.Do(func() {
		if _, err := o.StartSync(ctx); err != nil {
			o.log.Warn(ctx, "automatic sync failed", "error", err)
		}
	})
}

// Watch recomputes the published pending count on a fixed interval until ctx
// is done. It never triggers a full sync; it only keeps the observable count
// honest while the UI mutates records.
func (o *Orchestrator) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			o.RefreshPendingCount(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RefreshPendingCount recounts pending records and publishes the new state.
func (o *Orchestrator) RefreshPendingCount(ctx context.Context) {
	pending, err := o.store.CountPending(ctx)
	if err != nil {
		o.log.Error(ctx, "failed to count pending records", "error", err)
		return
	}
	o.publish(func(s *State) { s.PendingCount = pending })
}
