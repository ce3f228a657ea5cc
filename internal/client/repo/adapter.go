package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmarques/obrafield/internal/client/api"
	"github.com/dmarques/obrafield/internal/client/models"
	syncx "github.com/dmarques/obrafield/internal/client/sync"
	"github.com/dmarques/obrafield/internal/dbx"
)

// Adapter implements sync.Source generically for one entity definition. The
// engine owns sequencing and transport; the adapter owns every SQL statement
// a cycle needs.
type Adapter[T any, PT entityPtr[T]] struct {
	db  *sql.DB
	def Def[T]
	now func() time.Time
}

func NewAdapter[T any, PT entityPtr[T]](db *sql.DB, def Def[T]) *Adapter[T, PT] {
	return &Adapter[T, PT]{db: db, def: def, now: time.Now}
}

func (a *Adapter[T, PT]) Name() string        { return a.def.Table }
func (a *Adapter[T, PT]) Endpoint() string    { return a.def.Endpoint }
func (a *Adapter[T, PT]) DependsOn() []string { return a.def.DependsOn }

// Pending returns every pending row with its wire payload. A row whose
// payload cannot be built yet (unsynced parent) is returned with the error
// attached so the engine can log and skip it without losing the row.
func (a *Adapter[T, PT]) Pending(ctx context.Context) ([]syncx.Push, error) {
	query := selectQuery(a.def, "sync_status = ?", "local_id")
	rows, err := a.db.QueryContext(ctx, query, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending %s: %w", a.def.Table, err)
	}
	defer rows.Close()

	var entities []PT
	for rows.Next() {
		e, err := scanEntity[T, PT](a.def, rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending %s: %w", a.def.Table, err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lk := Lookup{q: a.db}
	pushes := make([]syncx.Push, 0, len(entities))
	for _, e := range entities {
		meta := e.Meta()
		payload, err := a.def.ToWire(ctx, lk, (*T)(e))
		pushes = append(pushes, syncx.Push{
			LocalID:  meta.LocalID,
			ServerID: meta.ServerID,
			Payload:  payload,
			Err:      err,
		})
	}
	return pushes, nil
}

// Tombstones returns user-deleted rows that still exist remotely.
func (a *Adapter[T, PT]) Tombstones(ctx context.Context) ([]syncx.Tombstone, error) {
	query := fmt.Sprintf(
		`SELECT local_id, server_id FROM %s
		 WHERE sync_status = ? AND server_id IS NOT NULL ORDER BY local_id`, a.def.Table)
	rows, err := a.db.QueryContext(ctx, query, models.StatusDeleted)
	if err != nil {
		return nil, fmt.Errorf("list tombstones %s: %w", a.def.Table, err)
	}
	defer rows.Close()

	var out []syncx.Tombstone
	for rows.Next() {
		var t syncx.Tombstone
		if err := rows.Scan(&t.LocalID, &t.ServerID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (a *Adapter[T, PT]) MarkSynced(ctx context.Context, localID, serverID int64) error {
	query := fmt.Sprintf(
		`UPDATE %s SET sync_status = ?, server_id = ?, updated_at = ? WHERE local_id = ?`,
		a.def.Table)
	_, err := a.db.ExecContext(ctx, query, models.StatusSynced, serverID, a.now().UTC(), localID)
	if err != nil {
		return fmt.Errorf("mark %s synced: %w", a.def.Table, err)
	}
	return nil
}

func (a *Adapter[T, PT]) Forget(ctx context.Context, localID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE local_id = ?`, a.def.Table)
	if _, err := a.db.ExecContext(ctx, query, localID); err != nil {
		return fmt.Errorf("forget %s row: %w", a.def.Table, err)
	}
	return nil
}

// Reconcile applies the authoritative remote collection in one transaction:
//
//  1. tentatively tombstone every currently synced row;
//  2. upsert each remote record by server id: rows tombstoned in step 1 are
//     revived with fresh payload, unknown server ids become new synced rows,
//     and rows that were pending or user-deleted before the cycle are left
//     untouched;
//  3. hard-delete the step-1 tombstones the server no longer returned.
//
// Any failure rolls the whole pass back, so a half-applied pull can never
// tombstone rows it did not get to revive.
func (a *Adapter[T, PT]) Reconcile(ctx context.Context, records []api.Record) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		swept, err := a.sweepSynced(ctx, tx)
		if err != nil {
			return err
		}

		lk := Lookup{q: tx}
		for _, rec := range records {
			serverID, ok := rec.ID()
			if !ok {
				return fmt.Errorf("%s: remote record carries no id", a.def.Table)
			}
			if err := a.applyRemote(ctx, tx, lk, rec, serverID, swept); err != nil {
				return err
			}
		}

		for localID := range swept {
			query := fmt.Sprintf(
				`DELETE FROM %s WHERE local_id = ? AND sync_status = ?`, a.def.Table)
			if _, err := tx.ExecContext(ctx, query, localID, models.StatusDeleted); err != nil {
				return fmt.Errorf("purge stale %s row: %w", a.def.Table, err)
			}
		}
		return nil
	})
}

// sweepSynced marks all synced rows deleted and returns their local ids.
// Only these rows may be revived or purged later in the pass; pending rows
// and pre-existing user tombstones stay out of reach.
func (a *Adapter[T, PT]) sweepSynced(ctx context.Context, tx dbx.DBTX) (map[int64]bool, error) {
	rows, err := tx.QueryContext(ctx,
		fmt.Sprintf(`SELECT local_id FROM %s WHERE sync_status = ?`, a.def.Table),
		models.StatusSynced)
	if err != nil {
		return nil, fmt.Errorf("collect synced %s rows: %w", a.def.Table, err)
	}
	defer rows.Close()

	swept := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		swept[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET sync_status = ? WHERE sync_status = ?`, a.def.Table),
		models.StatusDeleted, models.StatusSynced)
	if err != nil {
		return nil, fmt.Errorf("tombstone synced %s rows: %w", a.def.Table, err)
	}
	return swept, nil
}

func (a *Adapter[T, PT]) applyRemote(ctx context.Context, tx dbx.DBTX, lk Lookup,
	rec api.Record, serverID int64, swept map[int64]bool) error {

	var localID int64
	err := tx.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT local_id FROM %s WHERE server_id = ?`, a.def.Table),
		serverID).Scan(&localID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		e := PT(new(T))
		if err := a.def.FromWire(ctx, lk, rec, (*T)(e)); err != nil {
			return fmt.Errorf("decode remote %s record %d: %w", a.def.Table, serverID, err)
		}
		meta := e.Meta()
		now := a.now().UTC()
		meta.ServerID = &serverID
		meta.Status = models.StatusSynced
		meta.CreatedAt, meta.UpdatedAt = now, now
		if err := insertEntity(ctx, tx, a.def, e); err != nil {
			return fmt.Errorf("insert pulled %s record %d: %w", a.def.Table, serverID, err)
		}
		return nil

	case err != nil:
		return fmt.Errorf("find local %s row for server id %d: %w", a.def.Table, serverID, err)

	case !swept[localID]:
		// Pending local edit or a tombstone awaiting remote delete; the
		// local intent wins until the push phase settles it.
		return nil

	default:
		e := PT(new(T))
		if err := a.def.FromWire(ctx, lk, rec, (*T)(e)); err != nil {
			return fmt.Errorf("decode remote %s record %d: %w", a.def.Table, serverID, err)
		}
		meta := e.Meta()
		meta.LocalID = localID
		meta.Status = models.StatusSynced
		meta.UpdatedAt = a.now().UTC()
		if err := updateEntity(ctx, tx, a.def, e); err != nil {
			return fmt.Errorf("revive %s record %d: %w", a.def.Table, serverID, err)
		}
		delete(swept, localID)
		return nil
	}
}
