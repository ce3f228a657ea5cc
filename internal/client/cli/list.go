package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dmarques/obrafield/internal/client/models"
)

func (a *App) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List locally stored data",
	}
	cmd.AddCommand(
		a.listAreasCmd(),
		a.listCollaboratorsCmd(),
		a.listRequestersCmd(),
		a.listApproversCmd(),
		a.listBmItemsCmd(),
		a.listProjectCodesCmd(),
		a.listRecordsCmd(),
		a.listSurveysCmd(),
		a.listMeasurementsCmd(),
	)
	return cmd
}

// statusTag renders the row's sync state the way site staff read it: pending
// work stands out, synced rows stay quiet.
func statusTag(s models.SyncStatus) string {
	if s == models.StatusPending {
		return color.YellowString("[pending]")
	}
	return color.GreenString("[synced]")
}

func (a *App) listAreasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "areas",
		Short: "List work areas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.reg.Areas.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, it := range items {
				fmt.Fprintf(a.out, "%4d  %-30s %s\n", it.LocalID, it.Name, statusTag(it.Status))
			}
			return nil
		},
	}
}

func (a *App) listCollaboratorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collaborators",
		Short: "List collaborators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.reg.Collabs.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, it := range items {
				fmt.Fprintf(a.out, "%4d  %-10s %-25s %-20s %s\n",
					it.LocalID, it.Registration, it.Name, it.Role, statusTag(it.Status))
			}
			return nil
		},
	}
}

func (a *App) listRequestersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "requesters",
		Short: "List requesters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.reg.Requesters.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, it := range items {
				fmt.Fprintf(a.out, "%4d  %-25s %-25s %s\n",
					it.LocalID, it.Name, it.Email, statusTag(it.Status))
			}
			return nil
		},
	}
}

func (a *App) listApproversCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approvers",
		Short: "List approvers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.reg.Approvers.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, it := range items {
				fmt.Fprintf(a.out, "%4d  %-25s %-25s %s\n",
					it.LocalID, it.Name, it.Email, statusTag(it.Status))
			}
			return nil
		},
	}
}

func (a *App) listBmItemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bm-items",
		Short: "List measurement bulletin items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.reg.BmItems.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, it := range items {
				fmt.Fprintf(a.out, "%4d  %-12s %-35s %-6s %10.2f %s\n",
					it.LocalID, it.Code, it.Description, it.Unit, it.UnitPrice, statusTag(it.Status))
			}
			return nil
		},
	}
}

func (a *App) listProjectCodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "project-codes",
		Short: "List project codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.reg.ProjectCodes.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, it := range items {
				fmt.Fprintf(a.out, "%4d  %-12s %-40s %s\n",
					it.LocalID, it.Code, it.Description, statusTag(it.Status))
			}
			return nil
		},
	}
}

func (a *App) listRecordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "List daily attendance records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.reg.DailyRecords.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, it := range items {
				fmt.Fprintf(a.out, "%4d  %s  area=%d  %d workers %s\n",
					it.LocalID, it.RecordDate, it.AreaID, len(it.Entries), statusTag(it.Status))
			}
			return nil
		},
	}
}

func (a *App) listSurveysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "surveys",
		Short: "List quality surveys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.reg.Surveys.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, it := range items {
				fmt.Fprintf(a.out, "%4d  %s  %-30s %d items %s\n",
					it.LocalID, it.SurveyDate, it.Title, len(it.Items), statusTag(it.Status))
			}
			return nil
		},
	}
}

func (a *App) listMeasurementsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "measurements",
		Short: "List measurement bulletins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.listMeasurements(cmd.Context())
			if err != nil {
				return err
			}
			for _, it := range items {
				fmt.Fprintf(a.out, "%4d  %-10s %s .. %s  project=%d  %d items %s\n",
					it.LocalID, it.Number, it.PeriodStart, it.PeriodEnd,
					it.ProjectCodeID, len(it.Items), statusTag(it.Status))
			}
			return nil
		},
	}
}

// listMeasurements serves the bulletin listing from the cache when fresh,
// refilling it from the repository otherwise.
func (a *App) listMeasurements(ctx context.Context) ([]models.Measurement, error) {
	if items, ok := a.measurements.Get(ctx); ok {
		return items, nil
	}
	items, err := a.reg.Measurements.List(ctx)
	if err != nil {
		return nil, err
	}
	a.measurements.Put(ctx, items)
	return items, nil
}
