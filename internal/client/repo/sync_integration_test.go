package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarques/obrafield/internal/client/api"
	"github.com/dmarques/obrafield/internal/client/models"
	"github.com/dmarques/obrafield/internal/client/store"
	syncx "github.com/dmarques/obrafield/internal/client/sync"
	"github.com/dmarques/obrafield/internal/logging"
)

// fakeBackOffice is an in-memory stand-in for the REST service: one
// paginated collection per endpoint, ids assigned from 500 up.
type fakeBackOffice struct {
	mu       gosync.Mutex
	nextID   int64
	data     map[string][]map[string]any
	pageSize int
	reject   func(endpoint string, payload map[string]any) bool
}

func newFakeBackOffice() *fakeBackOffice {
	return &fakeBackOffice{nextID: 500, data: map[string][]map[string]any{}}
}

func (f *fakeBackOffice) seed(endpoint string, recs ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range recs {
		f.nextID++
		rec["id"] = f.nextID
		f.data[endpoint] = append(f.data[endpoint], rec)
	}
}

func (f *fakeBackOffice) records(endpoint string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, len(f.data[endpoint]))
	copy(out, f.data[endpoint])
	return out
}

func (f *fakeBackOffice) deleteByID(endpoint string, id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	recs := f.data[endpoint]
	for i, rec := range recs {
		if rec["id"] == id {
			f.data[endpoint] = append(recs[:i], recs[i+1:]...)
			return true
		}
	}
	return false
}

func (f *fakeBackOffice) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	endpoint, id, hasID := splitResourcePath(r.URL.Path)

	switch {
	case !hasID && r.Method == http.MethodGet:
		f.list(w, r, endpoint)
	case !hasID && r.Method == http.MethodPost:
		f.create(w, r, endpoint)
	case hasID && r.Method == http.MethodPut:
		f.update(w, r, endpoint, id)
	case hasID && r.Method == http.MethodDelete:
		if !f.deleteByID(endpoint, id) {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

// splitResourcePath distinguishes "/geral/areas/" from "/geral/areas/501/".
func splitResourcePath(path string) (endpoint string, id int64, hasID bool) {
	trimmed := strings.TrimSuffix(path, "/")
	last := trimmed[strings.LastIndex(trimmed, "/")+1:]
	n, err := strconv.ParseInt(last, 10, 64)
	if err != nil {
		return path, 0, false
	}
	return trimmed[:len(trimmed)-len(last)], n, true
}

func (f *fakeBackOffice) list(w http.ResponseWriter, r *http.Request, endpoint string) {
	recs := f.records(endpoint)

	page, size := 1, f.pageSize
	if p := r.URL.Query().Get("page"); p != "" {
		page, _ = strconv.Atoi(p)
	}
	if size <= 0 {
		size = len(recs) + 1
	}

	start := (page - 1) * size
	end := start + size
	if start > len(recs) {
		start = len(recs)
	}
	if end > len(recs) {
		end = len(recs)
	}

	var next *string
	if end < len(recs) {
		u := fmt.Sprintf("%s?page=%d", endpoint, page+1)
		next = &u
	}
	window := recs[start:end]
	if window == nil {
		window = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": window,
		"count":   len(recs),
		"next":    next,
	})
}

func (f *fakeBackOffice) create(w http.ResponseWriter, r *http.Request, endpoint string) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if f.reject != nil && f.reject(endpoint, payload) {
		http.Error(w, `{"detail":"payload rejected"}`, http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.nextID++
	payload["id"] = f.nextID
	f.data[endpoint] = append(f.data[endpoint], payload)
	f.mu.Unlock()

	writeJSON(w, http.StatusCreated, payload)
}

func (f *fakeBackOffice) update(w http.ResponseWriter, r *http.Request, endpoint string, id int64) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, rec := range f.data[endpoint] {
		if rec["id"] == id {
			payload["id"] = id
			f.data[endpoint][i] = payload
			writeJSON(w, http.StatusOK, payload)
			return
		}
	}
	http.NotFound(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type onlineStub struct{ online bool }

func (o *onlineStub) Online(context.Context) bool { return o.online }

type syncEnv struct {
	db     *sql.DB
	reg    *Registry
	engine *syncx.Engine
	remote *fakeBackOffice
	online *onlineStub
}

func newSyncEnv(t *testing.T) *syncEnv {
	t.Helper()
	ctx := context.Background()

	db, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	remote := newFakeBackOffice()
	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	online := &onlineStub{online: true}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	engine := syncx.NewEngine(api.NewClient(srv.URL), online, log)

	reg, err := NewRegistry(db, engine, log)
	require.NoError(t, err)

	return &syncEnv{db: db, reg: reg, engine: engine, remote: remote, online: online}
}

func (env *syncEnv) rowStatus(t *testing.T, table string, localID int64) (string, *int64) {
	t.Helper()
	var status string
	var serverID *int64
	err := env.db.QueryRow(
		fmt.Sprintf(`SELECT sync_status, server_id FROM %s WHERE local_id = ?`, table),
		localID).Scan(&status, &serverID)
	require.NoError(t, err)
	return status, serverID
}

func (env *syncEnv) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, env.db.QueryRow(
		fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&n))
	return n
}

func TestCycle_PushThenPullKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	env := newSyncEnv(t)

	a := &models.Area{Name: "Caldeiraria"}
	require.NoError(t, env.reg.Areas.Save(ctx, a))

	require.NoError(t, env.engine.Sync(ctx, "areas"))

	// The pull must recognize the row it just pushed, not duplicate it.
	assert.Equal(t, 1, env.count(t, "areas"))
	status, serverID := env.rowStatus(t, "areas", a.LocalID)
	assert.Equal(t, string(models.StatusSynced), status)
	require.NotNil(t, serverID)
	assert.Equal(t, int64(501), *serverID)

	remote := env.remote.records("/geral/areas/")
	require.Len(t, remote, 1)
	assert.Equal(t, "Caldeiraria", remote[0]["nome"])
}

func TestCycle_PullIsIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newSyncEnv(t)
	env.remote.seed("/geral/areas/",
		map[string]any{"nome": "Civil"},
		map[string]any{"nome": "Montagem"},
	)

	require.NoError(t, env.engine.Sync(ctx, "areas"))
	require.NoError(t, env.engine.Sync(ctx, "areas"))
	require.NoError(t, env.engine.Sync(ctx, "areas"))

	assert.Equal(t, 2, env.count(t, "areas"))
	list, err := env.reg.Areas.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.StatusSynced, list[0].Status)
	assert.Equal(t, models.StatusSynced, list[1].Status)
}

func TestCycle_ServerDeletionPropagates(t *testing.T) {
	ctx := context.Background()
	env := newSyncEnv(t)
	env.remote.seed("/geral/areas/",
		map[string]any{"nome": "Civil"},
		map[string]any{"nome": "Montagem"},
	)

	require.NoError(t, env.engine.Sync(ctx, "areas"))
	require.Equal(t, 2, env.count(t, "areas"))

	require.True(t, env.remote.deleteByID("/geral/areas/", 501))
	require.NoError(t, env.engine.Sync(ctx, "areas"))

	assert.Equal(t, 1, env.count(t, "areas"))
	list, err := env.reg.Areas.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Montagem", list[0].Name)
}

func TestCycle_PartialPushFailureIsolated(t *testing.T) {
	ctx := context.Background()
	env := newSyncEnv(t)
	env.remote.reject = func(_ string, payload map[string]any) bool {
		return payload["matricula"] == "DUP-1"
	}

	good1 := &models.Collaborator{Name: "Ana", Registration: "M-1"}
	bad := &models.Collaborator{Name: "Bruno", Registration: "DUP-1"}
	good2 := &models.Collaborator{Name: "Clara", Registration: "M-3"}
	require.NoError(t, env.reg.Collabs.Save(ctx, good1))
	require.NoError(t, env.reg.Collabs.Save(ctx, bad))
	require.NoError(t, env.reg.Collabs.Save(ctx, good2))

	require.NoError(t, env.engine.Sync(ctx, "collaborators"))

	status, _ := env.rowStatus(t, "collaborators", good1.LocalID)
	assert.Equal(t, string(models.StatusSynced), status)
	status, _ = env.rowStatus(t, "collaborators", good2.LocalID)
	assert.Equal(t, string(models.StatusSynced), status)

	status, serverID := env.rowStatus(t, "collaborators", bad.LocalID)
	assert.Equal(t, string(models.StatusPending), status, "rejected row stays queued")
	assert.Nil(t, serverID)
	assert.Len(t, env.remote.records("/efetivo/colaboradores/"), 2)
}

func TestCycle_OfflineTouchesNothing(t *testing.T) {
	ctx := context.Background()
	env := newSyncEnv(t)
	env.online.online = false

	a := &models.Area{Name: "Caldeiraria"}
	require.NoError(t, env.reg.Areas.Save(ctx, a))

	require.NoError(t, env.engine.SyncAll(ctx))

	status, serverID := env.rowStatus(t, "areas", a.LocalID)
	assert.Equal(t, string(models.StatusPending), status)
	assert.Nil(t, serverID)
	assert.Empty(t, env.remote.records("/geral/areas/"))
}

func TestCycle_PendingRowSurvivesPull(t *testing.T) {
	ctx := context.Background()
	env := newSyncEnv(t)
	env.remote.seed("/geral/areas/", map[string]any{"nome": "Civil"})

	// A row that exists only locally, and a remote collection that does not
	// contain it. Pull alone must not discard the local work.
	local := &models.Area{Name: "Rascunho"}
	require.NoError(t, env.reg.Areas.Save(ctx, local))

	adapter := NewAdapter[models.Area](env.db, AreaDef())
	require.NoError(t, adapter.Reconcile(ctx, []api.Record{{"id": float64(501), "nome": "Civil"}}))

	status, _ := env.rowStatus(t, "areas", local.LocalID)
	assert.Equal(t, string(models.StatusPending), status)
	assert.Equal(t, 2, env.count(t, "areas"))
}

func TestCycle_TombstonePushedAndPurged(t *testing.T) {
	ctx := context.Background()
	env := newSyncEnv(t)
	env.remote.seed("/geral/areas/", map[string]any{"nome": "Pintura"})

	require.NoError(t, env.engine.Sync(ctx, "areas"))

	var localID int64
	require.NoError(t, env.db.QueryRow(
		`SELECT local_id FROM areas WHERE server_id = 501`).Scan(&localID))

	// Delete kicks off a background cycle; the explicit one may be skipped
	// by the in-flight guard, so wait for either to settle the tombstone.
	require.NoError(t, env.reg.Areas.Delete(ctx, localID))
	require.NoError(t, env.engine.Sync(ctx, "areas"))

	require.Eventually(t, func() bool {
		var n int
		if err := env.db.QueryRow(`SELECT COUNT(*) FROM areas`).Scan(&n); err != nil {
			return false
		}
		return len(env.remote.records("/geral/areas/")) == 0 && n == 0
	}, 2*time.Second, 20*time.Millisecond, "tombstone pushed and dropped")
}

func TestCycle_PaginationFollowedToCompletion(t *testing.T) {
	ctx := context.Background()
	env := newSyncEnv(t)
	env.remote.pageSize = 2
	env.remote.seed("/geral/areas/",
		map[string]any{"nome": "A"},
		map[string]any{"nome": "B"},
		map[string]any{"nome": "C"},
		map[string]any{"nome": "D"},
		map[string]any{"nome": "E"},
	)

	require.NoError(t, env.engine.Sync(ctx, "areas"))
	assert.Equal(t, 5, env.count(t, "areas"))
}

func TestCycle_DocumentPushTranslatesIDs(t *testing.T) {
	ctx := context.Background()
	env := newSyncEnv(t)

	area := &models.Area{Name: "Montagem"}
	require.NoError(t, env.reg.Areas.Save(ctx, area))
	worker := &models.Collaborator{Name: "Carlos", Registration: "M-201"}
	require.NoError(t, env.reg.Collabs.Save(ctx, worker))

	rec := &models.DailyRecord{
		RecordDate: "2026-08-28",
		AreaID:     area.LocalID,
		Entries: []models.AttendanceEntry{
			{CollaboratorID: worker.LocalID, Hours: 8, Activity: "solda"},
		},
	}
	require.NoError(t, env.reg.DailyRecords.Save(ctx, rec))

	// Parent-first order: the record's first cycle runs after areas and
	// collaborators already hold server ids.
	require.NoError(t, env.engine.SyncAll(ctx))

	status, _ := env.rowStatus(t, "daily_records", rec.LocalID)
	assert.Equal(t, string(models.StatusSynced), status)

	pushed := env.remote.records("/efetivo/apontamentos/")
	require.Len(t, pushed, 1)

	areaRemote := env.remote.records("/geral/areas/")
	require.Len(t, areaRemote, 1)
	assert.EqualValues(t, areaRemote[0]["id"], pushed[0]["area"])

	entries, ok := pushed[0]["apontamentos"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 1)
	entry, ok := entries[0].(map[string]any)
	require.True(t, ok)
	workerRemote := env.remote.records("/efetivo/colaboradores/")
	require.Len(t, workerRemote, 1)
	assert.EqualValues(t, workerRemote[0]["id"], entry["colaborador"])

	got, err := env.reg.DailyRecords.Get(ctx, rec.LocalID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, worker.LocalID, got.Entries[0].CollaboratorID)
}
