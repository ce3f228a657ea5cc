package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dmarques/obrafield/internal/client/models"
)

func (a *App) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push local changes and refresh the local mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !a.monitor.Online(ctx) {
				fmt.Fprintln(a.out, color.YellowString("Server unreachable, nothing synced."))
				return nil
			}
			if err := a.engine.SyncAll(ctx); err != nil {
				return fmt.Errorf("sync: %w", err)
			}

			a.measurements.Invalidate(ctx)
			fmt.Fprintln(a.out, color.GreenString("Sync complete."))
			return nil
		},
	}
}

func (a *App) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show connectivity, session and pending work",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if a.monitor.Online(ctx) {
				fmt.Fprintln(a.out, "Server:  "+color.GreenString("online"))
			} else {
				fmt.Fprintln(a.out, "Server:  "+color.RedString("offline"))
			}
			if a.session.Valid() {
				fmt.Fprintln(a.out, "Session: "+color.GreenString("active"))
			} else {
				fmt.Fprintln(a.out, "Session: "+color.YellowString("logged out"))
			}

			fmt.Fprintln(a.out, "Pending changes:")
			for _, table := range syncTables {
				n, err := a.pendingCount(ctx, table)
				if err != nil {
					return err
				}
				if n > 0 {
					fmt.Fprintf(a.out, "  %-15s %s\n", table, color.YellowString("%d", n))
				}
			}
			return nil
		},
	}
}

// syncTables lists every synchronized table, parents first, for status
// reporting.
var syncTables = []string{
	"areas", "collaborators", "requesters", "approvers", "bm_items",
	"project_codes", "daily_records", "surveys", "measurements",
}

// pendingCount counts rows still waiting for the server: queued edits plus
// tombstones whose remote delete has not been confirmed.
func (a *App) pendingCount(ctx context.Context, table string) (int, error) {
	var n int
	query := fmt.Sprintf(
		`SELECT COUNT(*) FROM %s
		 WHERE sync_status = ? OR (sync_status = ? AND server_id IS NOT NULL)`, table)
	err := a.db.QueryRowContext(ctx, query, models.StatusPending, models.StatusDeleted).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending %s rows: %w", table, err)
	}
	return n, nil
}
