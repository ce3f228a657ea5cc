package dbx

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON adapts a Go value to a TEXT column holding its JSON encoding. It is
// used for the nested line-item collections embedded in daily records,
// surveys and measurements, so parent and children are written as one row.
//
// The same JSON value works as both an exec argument (driver.Valuer) and a
// scan destination (sql.Scanner), which lets one field binder serve reads
// and writes.
type JSON[T any] struct {
	V *T
}

// Value encodes the wrapped value as JSON text.
func (j JSON[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.V)
	if err != nil {
		return nil, fmt.Errorf("encode json column: %w", err)
	}
	return string(b), nil
}

// Scan decodes JSON text or bytes into the wrapped value. NULL and the empty
// string leave the value at its zero state.
func (j JSON[T]) Scan(src any) error {
	var data []byte
	switch s := src.(type) {
	case nil:
		return nil
	case string:
		data = []byte(s)
	case []byte:
		data = s
	default:
		return fmt.Errorf("json column: unsupported source type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, j.V); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}
