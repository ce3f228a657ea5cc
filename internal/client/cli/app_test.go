package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarques/obrafield/internal/client/cache"
	"github.com/dmarques/obrafield/internal/client/kv"
	"github.com/dmarques/obrafield/internal/client/models"
	"github.com/dmarques/obrafield/internal/client/repo"
	"github.com/dmarques/obrafield/internal/client/store"
	syncx "github.com/dmarques/obrafield/internal/client/sync"
	"github.com/dmarques/obrafield/internal/logging"
)

type offlineStub struct{}

func (offlineStub) Online(context.Context) bool { return false }

// newTestApp wires an App against an in-memory store with connectivity
// forced off, plus a capture buffer for command output.
func newTestApp(t *testing.T, stdin string) (*App, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	engine := syncx.NewEngine(nil, offlineStub{}, log)
	reg, err := repo.NewRegistry(db, engine, log)
	require.NoError(t, err)

	var out bytes.Buffer
	app := &App{
		log:          log,
		db:           db,
		engine:       engine,
		reg:          reg,
		measurements: cache.New[models.Measurement]("cache_measurements", time.Minute, kv.NewSQLiteRepository(db), log),
		reader:       bufio.NewReader(strings.NewReader(stdin)),
		out:          &out,
	}
	return app, &out
}

func TestAddAndListArea(t *testing.T) {
	ctx := context.Background()
	app, out := newTestApp(t, "")

	require.NoError(t, app.Run(ctx, []string{"add", "area", "--name", "Caldeiraria"}))
	assert.Contains(t, out.String(), "Area 1 saved.")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"list", "areas"}))
	assert.Contains(t, out.String(), "Caldeiraria")
	assert.Contains(t, out.String(), "pending")
}

func TestAddArea_RequiresName(t *testing.T) {
	app, _ := newTestApp(t, "")
	err := app.Run(context.Background(), []string{"add", "area"})
	assert.Error(t, err)
}

func TestAddRecord_InteractiveEntries(t *testing.T) {
	ctx := context.Background()
	// Two entries, then an empty line to finish.
	stdin := "1\n8\nsolda\ny\n1\n2\npintura\n\n\n"
	app, out := newTestApp(t, stdin)

	require.NoError(t, app.Run(ctx, []string{"add", "area", "--name", "Montagem"}))
	require.NoError(t, app.Run(ctx, []string{
		"add", "collaborator", "--name", "Carlos", "--registration", "M-201"}))

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{
		"add", "record", "--date", "2026-08-28", "--area", "1"}))
	assert.Contains(t, out.String(), "saved with 2 entries")

	recs, err := app.reg.DailyRecords.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Len(t, recs[0].Entries, 2)
	assert.True(t, recs[0].Entries[0].Overtime)
	assert.Equal(t, "pintura", recs[0].Entries[1].Activity)
}

func TestDelete_UnknownEntity(t *testing.T) {
	app, _ := newTestApp(t, "")
	err := app.Run(context.Background(), []string{"delete", "widget", "1"})
	assert.Error(t, err)
}

func TestDelete_RemovesPendingRow(t *testing.T) {
	ctx := context.Background()
	app, out := newTestApp(t, "")

	require.NoError(t, app.Run(ctx, []string{"add", "area", "--name", "Pintura"}))
	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"delete", "area", "1"}))
	assert.Contains(t, out.String(), "area 1 deleted.")

	areas, err := app.reg.Areas.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, areas)
}

func TestListMeasurements_ServedFromCacheUntilWrite(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t, "")

	require.NoError(t, app.reg.ProjectCodes.Save(ctx, &models.ProjectCode{Code: "PRJ-1"}))
	require.NoError(t, app.reg.Measurements.Save(ctx, &models.Measurement{
		Number: "BM-001", ProjectCodeID: 1,
	}))

	first, err := app.listMeasurements(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A direct repository write bypasses the cache: the stale listing keeps
	// serving until something invalidates it.
	require.NoError(t, app.reg.Measurements.Save(ctx, &models.Measurement{
		Number: "BM-002", ProjectCodeID: 1,
	}))
	cached, err := app.listMeasurements(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	app.measurements.Invalidate(ctx)
	refreshed, err := app.listMeasurements(ctx)
	require.NoError(t, err)
	assert.Len(t, refreshed, 2)
}
