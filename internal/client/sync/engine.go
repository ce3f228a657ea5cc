package sync

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	gosync "sync"

	"github.com/dmarques/obrafield/internal/client/api"
	"github.com/dmarques/obrafield/internal/common"
	"github.com/dmarques/obrafield/internal/logging"
)

// Remote is the transport surface the engine needs; *api.Client satisfies it.
type Remote interface {
	ListAll(ctx context.Context, path string, query url.Values) ([]api.Record, error)
	Create(ctx context.Context, path string, payload any) (api.Record, error)
	Update(ctx context.Context, path string, serverID int64, payload any) (api.Record, error)
	Remove(ctx context.Context, path string, serverID int64) error
}

// Connectivity gates network I/O; *netx.Monitor satisfies it.
type Connectivity interface {
	Online(ctx context.Context) bool
}

// Engine runs sync cycles. All state that used to be module-level in apps of
// this kind (in-flight flags, registries) is owned by the instance.
type Engine struct {
	remote Remote
	online Connectivity
	log    logging.Logger

	mu       gosync.Mutex
	order    []Source
	byName   map[string]Source
	inFlight map[string]bool
}

func NewEngine(remote Remote, online Connectivity, log logging.Logger) *Engine {
	return &Engine{
		remote:   remote,
		online:   online,
		log:      log,
		byName:   make(map[string]Source),
		inFlight: make(map[string]bool),
	}
}

// Register adds a source to the registry. Registration order is sync order:
// parents must be registered before their dependents so their rows hold
// server ids by the time children build payloads.
func (e *Engine) Register(src Source) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := src.Name()
	if _, dup := e.byName[name]; dup {
		return fmt.Errorf("sync source %q already registered", name)
	}
	for _, dep := range src.DependsOn() {
		if _, ok := e.byName[dep]; !ok {
			return fmt.Errorf("sync source %q depends on unregistered %q", name, dep)
		}
	}
	e.byName[name] = src
	e.order = append(e.order, src)
	return nil
}

// Trigger returns a fire-and-forget closure for the named entity, suitable
// for repositories to invoke from their read path. Failures land in the log
// sink and never reach the caller.
func (e *Engine) Trigger(name string) func() {
	return func() {
		go func() {
			if err := e.Sync(context.Background(), name); err != nil {
				e.log.Warn(context.Background(), "background sync failed", "entity", name, "error", err)
			}
		}()
	}
}

// Sync runs one push/pull cycle for the named entity. Offline is a silent
// no-op, as is a cycle already in flight for the same entity. Per-row push
// failures are isolated; a pull failure aborts only this entity's cycle.
func (e *Engine) Sync(ctx context.Context, name string) error {
	e.mu.Lock()
	src, ok := e.byName[name]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown sync source %q", name)
	}

	if !e.online.Online(ctx) {
		e.log.Debug(ctx, "offline, skipping sync", "entity", name)
		return nil
	}
	if !e.begin(name) {
		e.log.Debug(ctx, "sync already in flight", "entity", name)
		return nil
	}
	defer e.end(name)

	e.push(ctx, src)
	if err := e.pull(ctx, src); err != nil {
		e.log.Warn(ctx, "pull failed, local state unchanged", "entity", name, "error", err)
		return err
	}
	return nil
}

// SyncAll cycles every registered entity in registration (parent-first)
// order. One entity's failure does not stop the rest; the first error is
// returned for callers that care (the CLI's explicit sync command).
func (e *Engine) SyncAll(ctx context.Context) error {
	e.mu.Lock()
	order := make([]Source, len(e.order))
	copy(order, e.order)
	e.mu.Unlock()

	var first error
	for _, src := range order {
		if err := e.Sync(ctx, src.Name()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (e *Engine) begin(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight[name] {
		return false
	}
	e.inFlight[name] = true
	return true
}

func (e *Engine) end(name string) {
	e.mu.Lock()
	delete(e.inFlight, name)
	e.mu.Unlock()
}

// push drains tombstones first (remote deletes), then pending rows
// (creates/updates). Every failure is per-row: logged, row left for the next
// cycle, siblings unaffected.
func (e *Engine) push(ctx context.Context, src Source) {
	name, endpoint := src.Name(), src.Endpoint()

	tombs, err := src.Tombstones(ctx)
	if err != nil {
		e.log.Warn(ctx, "cannot list tombstones", "entity", name, "error", err)
	}
	for _, tomb := range tombs {
		if err := e.remote.Remove(ctx, endpoint, tomb.ServerID); err != nil {
			e.log.Warn(ctx, "remote delete failed", "entity", name,
				"local_id", tomb.LocalID, "server_id", tomb.ServerID, "error", err)
			continue
		}
		if err := src.Forget(ctx, tomb.LocalID); err != nil {
			e.log.Warn(ctx, "cannot drop confirmed tombstone", "entity", name,
				"local_id", tomb.LocalID, "error", err)
		}
	}

	pushes, err := src.Pending(ctx)
	if err != nil {
		e.log.Warn(ctx, "cannot list pending rows", "entity", name, "error", err)
		return
	}
	for _, p := range pushes {
		if p.Err != nil {
			if errors.Is(p.Err, common.ErrParentNotSynced) {
				e.log.Debug(ctx, "push postponed until parent syncs", "entity", name,
					"local_id", p.LocalID)
			} else {
				e.log.Warn(ctx, "cannot build push payload", "entity", name,
					"local_id", p.LocalID, "error", p.Err)
			}
			continue
		}

		serverID, err := e.upload(ctx, endpoint, p)
		if err != nil {
			e.log.Warn(ctx, "push failed, row stays pending", "entity", name,
				"local_id", p.LocalID, "error", err)
			continue
		}
		if err := src.MarkSynced(ctx, p.LocalID, serverID); err != nil {
			e.log.Warn(ctx, "cannot mark row synced", "entity", name,
				"local_id", p.LocalID, "error", err)
		}
	}
}

func (e *Engine) upload(ctx context.Context, endpoint string, p Push) (int64, error) {
	if p.ServerID != nil {
		if _, err := e.remote.Update(ctx, endpoint, *p.ServerID, p.Payload); err != nil {
			return 0, err
		}
		return *p.ServerID, nil
	}

	rec, err := e.remote.Create(ctx, endpoint, p.Payload)
	if err != nil {
		return 0, err
	}
	serverID, ok := rec.ID()
	if !ok {
		return 0, fmt.Errorf("create response carries no id")
	}
	return serverID, nil
}

// pull fetches the authoritative collection and reconciles it into the local
// store. A fetch failure aborts before any local mutation.
func (e *Engine) pull(ctx context.Context, src Source) error {
	records, err := e.remote.ListAll(ctx, src.Endpoint(), nil)
	if err != nil {
		return fmt.Errorf("fetch remote collection: %w", err)
	}
	if err := src.Reconcile(ctx, records); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	e.log.Debug(ctx, "pull reconciled", "entity", src.Name(), "remote_rows", len(records))
	return nil
}
