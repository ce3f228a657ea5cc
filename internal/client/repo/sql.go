package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmarques/obrafield/internal/dbx"
)

// Low-level row plumbing shared by the repository (local CRUD) and the sync
// adapter (reconciliation). All statements are built from the Def's column
// list; entity code never writes SQL.

const metaColumns = "local_id, server_id, sync_status, created_at, updated_at"

func selectQuery[T any](def Def[T], where, orderBy string) string {
	cols := metaColumns
	if len(def.Columns) > 0 {
		cols += ", " + strings.Join(def.Columns, ", ")
	}
	q := "SELECT " + cols + " FROM " + def.Table
	if where != "" {
		q += " WHERE " + where
	}
	if orderBy != "" {
		q += " ORDER BY " + orderBy
	}
	return q
}

type scanner interface {
	Scan(dest ...any) error
}

// scanEntity reads one row (meta columns first, payload after) into a fresh
// entity.
func scanEntity[T any, PT entityPtr[T]](def Def[T], sc scanner) (PT, error) {
	e := PT(new(T))
	meta := e.Meta()
	dest := []any{&meta.LocalID, &meta.ServerID, &meta.Status, &meta.CreatedAt, &meta.UpdatedAt}
	dest = append(dest, def.Fields((*T)(e))...)
	if err := sc.Scan(dest...); err != nil {
		return nil, err
	}
	return e, nil
}

// insertEntity inserts e and stores the assigned local id back into its
// metadata.
func insertEntity[T any, PT entityPtr[T]](ctx context.Context, q dbx.DBTX, def Def[T], e PT) error {
	meta := e.Meta()
	cols := append([]string{"server_id", "sync_status", "created_at", "updated_at"}, def.Columns...)
	args := append([]any{meta.ServerID, meta.Status, meta.CreatedAt, meta.UpdatedAt},
		def.Fields((*T)(e))...)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		def.Table,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
	)
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	localID, err := res.LastInsertId()
	if err != nil {
		return err
	}
	meta.LocalID = localID
	return nil
}

// updateEntity rewrites e's payload columns plus sync_status and updated_at,
// both taken from its metadata. server_id and created_at are never touched
// here.
func updateEntity[T any, PT entityPtr[T]](ctx context.Context, q dbx.DBTX, def Def[T], e PT) error {
	meta := e.Meta()
	set := make([]string, 0, len(def.Columns)+2)
	for _, c := range def.Columns {
		set = append(set, c+" = ?")
	}
	set = append(set, "sync_status = ?", "updated_at = ?")
	args := append(def.Fields((*T)(e)), meta.Status, meta.UpdatedAt, meta.LocalID)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE local_id = ?",
		def.Table, strings.Join(set, ", "))
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s local_id=%d: no row updated", def.Table, meta.LocalID)
	}
	return nil
}
