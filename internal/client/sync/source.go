// Package sync implements the offline reconciliation engine: one generic
// push/pull algorithm instantiated per entity through the Source interface.
// A cycle is push (drain local changes) then pull (adopt authoritative
// remote state); push always completes before pull so a freshly pushed row
// is found again by its new server id instead of being tombstoned.
package sync

import (
	"context"

	"github.com/dmarques/obrafield/internal/client/api"
)

// Push is one locally pending row ready to leave the device. A non-nil Err
// means the payload could not be built (typically ErrParentNotSynced) and
// the row is skipped for this cycle.
type Push struct {
	LocalID  int64
	ServerID *int64
	Payload  map[string]any
	Err      error
}

// Tombstone is a user-deleted row whose remote copy still has to be removed.
type Tombstone struct {
	LocalID  int64
	ServerID int64
}

// Source adapts one entity's table to the engine. Implemented once,
// generically, in the repo package; instantiated per entity from its
// definition.
type Source interface {
	// Name is the entity's registry name (its table name).
	Name() string

	// Endpoint is the remote collection path, e.g. "/geral/areas/".
	Endpoint() string

	// DependsOn lists parent entity names that must sync first.
	DependsOn() []string

	// Pending returns the rows awaiting create/update push.
	Pending(ctx context.Context) ([]Push, error)

	// Tombstones returns the rows awaiting remote deletion.
	Tombstones(ctx context.Context) ([]Tombstone, error)

	// MarkSynced records a successful push: status synced, server id stored.
	MarkSynced(ctx context.Context, localID, serverID int64) error

	// Forget hard-deletes a local row (confirmed remote deletion).
	Forget(ctx context.Context, localID int64) error

	// Reconcile applies the full remote collection: tombstone currently
	// synced rows, upsert every remote record by server id, purge what the
	// server no longer has. Runs in a single transaction; on error the
	// store keeps its last-known-good state. Pending rows and user
	// tombstones are never touched.
	Reconcile(ctx context.Context, records []api.Record) error
}
