package dbx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name   string  `json:"name"`
	Qty    float64 `json:"qty"`
	Extra  bool    `json:"extra"`
	Serial int     `json:"serial"`
}

func TestJSON_RoundTripThroughColumn(t *testing.T) {
	db := setupDB(t)
	_, err := db.Exec(`CREATE TABLE docs (id INTEGER PRIMARY KEY, items TEXT NOT NULL)`)
	require.NoError(t, err)

	in := []item{
		{Name: "montagem", Qty: 7.5, Extra: true, Serial: 1},
		{Name: "solda", Qty: 0, Extra: false, Serial: 2},
	}
	_, err = db.Exec(`INSERT INTO docs(items) VALUES (?)`, JSON[[]item]{V: &in})
	require.NoError(t, err)

	var out []item
	require.NoError(t, db.QueryRow(`SELECT items FROM docs`).Scan(JSON[[]item]{V: &out}))
	assert.Equal(t, in, out)
}

func TestJSON_ScanNullAndEmpty(t *testing.T) {
	var out []item
	require.NoError(t, JSON[[]item]{V: &out}.Scan(nil))
	assert.Nil(t, out)

	require.NoError(t, JSON[[]item]{V: &out}.Scan(""))
	assert.Nil(t, out)

	require.Error(t, JSON[[]item]{V: &out}.Scan(42))
}
