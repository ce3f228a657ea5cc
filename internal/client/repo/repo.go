package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmarques/obrafield/internal/client/models"
	"github.com/dmarques/obrafield/internal/common"
	"github.com/dmarques/obrafield/internal/dbx"
	"github.com/dmarques/obrafield/internal/logging"
)

// Repo is the local CRUD surface for one entity type. Writes always mark the
// row pending; reads never touch the network themselves but List kicks off a
// background sync for the entity.
type Repo[T any, PT entityPtr[T]] struct {
	db      *sql.DB
	def     Def[T]
	log     logging.Logger
	trigger func()
	now     func() time.Time
}

func New[T any, PT entityPtr[T]](db *sql.DB, def Def[T], log logging.Logger) *Repo[T, PT] {
	return &Repo[T, PT]{db: db, def: def, log: log, now: time.Now}
}

// OnList installs the fire-and-forget sync trigger invoked from the read
// path. The closure must not block and must swallow its own failures.
func (r *Repo[T, PT]) OnList(trigger func()) {
	r.trigger = trigger
}

// Save inserts e (no local id yet) or updates the matching row. Either way
// the row ends up pending with a fresh updated_at; server_id is preserved.
// Missing required fields surface as *common.ValidationError, local unique
// constraint violations as *common.ConflictError.
func (r *Repo[T, PT]) Save(ctx context.Context, e PT) error {
	if err := e.Validate(); err != nil {
		return err
	}

	meta := e.Meta()
	now := r.now().UTC()
	meta.Status = models.StatusPending
	meta.UpdatedAt = now

	var err error
	if meta.LocalID == 0 {
		meta.CreatedAt = now
		err = insertEntity(ctx, r.db, r.def, e)
	} else {
		err = updateEntity(ctx, r.db, r.def, e)
	}
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return &common.ConflictError{Entity: r.def.Table, Err: err}
		}
		return fmt.Errorf("save %s: %w", r.def.Table, err)
	}
	return nil
}

// List returns all live rows ordered by the entity's display key, then kicks
// off a background sync. Sync failures never reach the caller; readers may
// observe pre-sync rows until the next read.
func (r *Repo[T, PT]) List(ctx context.Context) ([]T, error) {
	query := selectQuery(r.def, "sync_status != 'deleted'", r.def.OrderBy)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.def.Table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		e, err := scanEntity[T, PT](r.def, rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.def.Table, err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if r.trigger != nil {
		r.trigger()
	}
	return out, nil
}

// Get returns the row by local id, or nil when absent (never an error for
// not-found). Tombstoned rows are already gone from the user's perspective
// and count as absent.
func (r *Repo[T, PT]) Get(ctx context.Context, localID int64) (PT, error) {
	query := selectQuery(r.def, "local_id = ? AND sync_status != 'deleted'", "")
	e, err := scanEntity[T, PT](r.def, r.db.QueryRowContext(ctx, query, localID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", r.def.Table, err)
	}
	return e, nil
}

// Delete removes the row from the user's view. A row the server knows about
// becomes a tombstone and its remote removal is pushed in the background; a
// row that never synced is simply dropped.
func (r *Repo[T, PT]) Delete(ctx context.Context, localID int64) error {
	var serverID *int64
	query := fmt.Sprintf(
		`SELECT server_id FROM %s WHERE local_id = ? AND sync_status != 'deleted'`, r.def.Table)
	err := r.db.QueryRowContext(ctx, query, localID).Scan(&serverID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s local_id=%d: %w", r.def.Table, localID, common.ErrorNotFound)
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.def.Table, err)
	}

	if serverID == nil {
		_, err := r.db.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE local_id = ?`, r.def.Table), localID)
		if err != nil {
			return fmt.Errorf("delete %s: %w", r.def.Table, err)
		}
		return nil
	}

	_, err = r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET sync_status = ?, updated_at = ? WHERE local_id = ?`, r.def.Table),
		models.StatusDeleted, r.now().UTC(), localID)
	if err != nil {
		return fmt.Errorf("tombstone %s: %w", r.def.Table, err)
	}

	if r.trigger != nil {
		r.trigger()
	}
	return nil
}
