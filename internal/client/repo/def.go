// Package repo holds the generic entity repository and the generic sync
// adapter. Both are parameterized by a Def: table name, remote endpoint,
// column list, field binder and wire codec. One implementation, nine
// instantiations; the per-entity definitions live in catalog.go and
// documents.go.
package repo

import (
	"context"

	"github.com/dmarques/obrafield/internal/client/api"
	"github.com/dmarques/obrafield/internal/client/models"
)

// entityPtr constrains PT to "pointer to entity": it gives generic code the
// embedded sync metadata and the entity's validation rules.
type entityPtr[T any] interface {
	*T
	models.Synced
	Validate() error
}

// Def describes one synchronized entity.
type Def[T any] struct {
	// Table is the local table and registry name.
	Table string

	// Endpoint is the remote collection path.
	Endpoint string

	// DependsOn names parent entities that must sync first.
	DependsOn []string

	// Columns are the domain payload columns, in binder order.
	Columns []string

	// OrderBy is the natural display key for listings.
	OrderBy string

	// Fields returns pointers to the payload fields aligned with Columns.
	// The same slice serves scans and exec arguments; nested collections are
	// wrapped in dbx.JSON.
	Fields func(e *T) []any

	// ToWire builds the remote payload, translating parent local ids to
	// server ids through lk.
	ToWire func(ctx context.Context, lk Lookup, e *T) (map[string]any, error)

	// FromWire fills e from a remote record, translating server ids back to
	// local ids through lk.
	FromWire func(ctx context.Context, lk Lookup, rec api.Record, e *T) error
}
