package session

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/dmarques/obrafield/internal/client/kv"
)

func setupManager(t *testing.T) (*Manager, kv.Repository) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE kv (key TEXT PRIMARY KEY, value BLOB);`)
	require.NoError(t, err)

	store := kv.NewSQLiteRepository(db)
	return NewManager(store, nil), store
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestManager_PersistAndReload(t *testing.T) {
	m, store := setupManager(t)
	ctx := context.Background()

	require.NoError(t, m.SetToken(ctx, "tok-abc"))
	assert.Equal(t, "tok-abc", m.Token())

	// A fresh manager over the same store sees the persisted token.
	reloaded := NewManager(store, nil)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, "tok-abc", reloaded.Token())
}

func TestManager_Valid(t *testing.T) {
	m, _ := setupManager(t)
	ctx := context.Background()

	assert.False(t, m.Valid(), "no token means not valid")

	require.NoError(t, m.SetToken(ctx, "opaque-token"))
	assert.True(t, m.Valid(), "opaque tokens are accepted")

	require.NoError(t, m.SetToken(ctx, signedToken(t, time.Now().Add(time.Hour))))
	assert.True(t, m.Valid())

	require.NoError(t, m.SetToken(ctx, signedToken(t, time.Now().Add(-time.Hour))))
	assert.False(t, m.Valid(), "expired JWT must be invalid")
}

func TestManager_InvalidateDropsStoredToken(t *testing.T) {
	m, store := setupManager(t)
	ctx := context.Background()

	require.NoError(t, m.SetToken(ctx, "tok"))
	m.Invalidate()

	assert.Empty(t, m.Token())
	v, err := store.Get(ctx, "session_token")
	require.NoError(t, err)
	assert.Nil(t, v)
}
