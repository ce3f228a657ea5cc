// Package models defines the client-side entity types mirrored from the
// back office and the synchronization metadata every mirrored row carries.
package models

import "time"

// SyncStatus tracks a row's position in the local/remote reconciliation
// lifecycle.
type SyncStatus string

const (
	// StatusPending marks a row created or edited locally and not yet
	// acknowledged by the server. With a nil ServerID the row was never
	// created remotely; with a ServerID it is a local edit awaiting re-push.
	StatusPending SyncStatus = "pending"

	// StatusSynced marks a row that matches the server's last known state.
	StatusSynced SyncStatus = "synced"

	// StatusDeleted marks a tombstone: gone from the user's point of view,
	// awaiting confirmation that the remote copy was removed as well.
	StatusDeleted SyncStatus = "deleted"
)

// SyncMeta is embedded in every synchronized entity.
//
// LocalID is assigned by the local store and never reused; ServerID is
// assigned by the back office on first successful push and is the only
// identity shared with the server.
type SyncMeta struct {
	LocalID   int64
	ServerID  *int64
	Status    SyncStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Meta exposes the embedded metadata to the generic repository and sync
// adapter.
func (m *SyncMeta) Meta() *SyncMeta { return m }

// Synced is implemented by every synchronized entity via the embedded
// SyncMeta.
type Synced interface {
	Meta() *SyncMeta
}
