package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmarques/obrafield/internal/common"
	"github.com/dmarques/obrafield/internal/dbx"
)

// Lookup translates between the device's id space and the server's. Only
// server_id is shared truth; the translation happens here, at payload build
// time, never in the schema.
type Lookup struct {
	q dbx.DBTX
}

// ServerID resolves a parent row's server id. A parent that was never pushed
// yields ErrParentNotSynced, which postpones the child's push for the cycle.
func (l Lookup) ServerID(ctx context.Context, table string, localID int64) (int64, error) {
	var serverID *int64
	query := fmt.Sprintf(`SELECT server_id FROM %s WHERE local_id = ?`, table)
	err := l.q.QueryRowContext(ctx, query, localID).Scan(&serverID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s local_id=%d: %w", table, localID, common.ErrorNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup %s server id: %w", table, err)
	}
	if serverID == nil {
		return 0, fmt.Errorf("%s local_id=%d: %w", table, localID, common.ErrParentNotSynced)
	}
	return *serverID, nil
}

// OptionalServerID is ServerID for nullable references: a nil local id maps
// to a nil wire value.
func (l Lookup) OptionalServerID(ctx context.Context, table string, localID *int64) (any, error) {
	if localID == nil {
		return nil, nil
	}
	serverID, err := l.ServerID(ctx, table, *localID)
	if err != nil {
		return nil, err
	}
	return serverID, nil
}

// LocalID resolves a remote reference into the local id space during pull.
// Parents sync before dependents, so the row normally exists; if it does
// not, the reconcile aborts and retries next cycle.
func (l Lookup) LocalID(ctx context.Context, table string, serverID int64) (int64, error) {
	var localID int64
	query := fmt.Sprintf(`SELECT local_id FROM %s WHERE server_id = ?`, table)
	err := l.q.QueryRowContext(ctx, query, serverID).Scan(&localID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s server_id=%d not mirrored locally: %w", table, serverID, common.ErrorNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup %s local id: %w", table, err)
	}
	return localID, nil
}

// OptionalLocalID is LocalID for nullable wire references.
func (l Lookup) OptionalLocalID(ctx context.Context, table string, serverID int64, present bool) (*int64, error) {
	if !present {
		return nil, nil
	}
	localID, err := l.LocalID(ctx, table, serverID)
	if err != nil {
		return nil, err
	}
	return &localID, nil
}
