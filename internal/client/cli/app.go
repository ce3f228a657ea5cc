// Package cli is the interactive surface of the obrafield client: cobra
// commands over the local repositories, with sync running in the background
// whenever the device is online.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/dmarques/obrafield/internal/client/api"
	"github.com/dmarques/obrafield/internal/client/cache"
	"github.com/dmarques/obrafield/internal/client/config"
	"github.com/dmarques/obrafield/internal/client/kv"
	"github.com/dmarques/obrafield/internal/client/models"
	"github.com/dmarques/obrafield/internal/client/netx"
	"github.com/dmarques/obrafield/internal/client/repo"
	"github.com/dmarques/obrafield/internal/client/session"
	"github.com/dmarques/obrafield/internal/client/store"
	syncx "github.com/dmarques/obrafield/internal/client/sync"
	"github.com/dmarques/obrafield/internal/logging"
)

// App owns every long-lived dependency of the client process.
type App struct {
	cfg     *config.Config
	log     logging.Logger
	db      *sql.DB
	session *session.Manager
	client  *api.Client
	monitor *netx.Monitor
	engine  *syncx.Engine
	reg     *repo.Registry

	// Measurement listings are the heavy read on site, so they are served
	// through a cache that local writes invalidate.
	measurements *cache.Cache[models.Measurement]

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewFileLogger(cfg.LogFile, parseLevel(cfg.LogLevel))

	db, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	kvRepo := kv.NewSQLiteRepository(db)
	sess := session.NewManager(kvRepo, log)
	if err := sess.Load(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	client := api.NewClient(cfg.ServerURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		api.WithToken(sess.Token),
		api.WithUnauthorizedHook(sess.Invalidate),
		api.WithDeviceID(cfg.DeviceID),
	)

	monitor := netx.NewMonitor(client, cfg.ProbeTimeout, log)
	engine := syncx.NewEngine(client, monitor, log)

	reg, err := repo.NewRegistry(db, engine, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("assemble repositories: %w", err)
	}

	return &App{
		cfg:          cfg,
		log:          log,
		db:           db,
		session:      sess,
		client:       client,
		monitor:      monitor,
		engine:       engine,
		reg:          reg,
		measurements: cache.New[models.Measurement]("cache_measurements", cfg.CacheTTL, kvRepo, log),
		reader:       bufio.NewReader(os.Stdin),
		out:          os.Stdout,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// Run executes one CLI invocation.
func (a *App) Run(ctx context.Context, args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
