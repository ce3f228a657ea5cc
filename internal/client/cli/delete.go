package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (a *App) deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <entity> <local-id>",
		Short: "Delete a locally stored row",
		Long: `Delete removes the row from this device. A row the server already knows
about is deleted remotely on the next sync.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			localID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || localID <= 0 {
				return fmt.Errorf("expected a positive local id, got %q", args[1])
			}

			ctx := cmd.Context()
			switch args[0] {
			case "area":
				err = a.reg.Areas.Delete(ctx, localID)
			case "collaborator":
				err = a.reg.Collabs.Delete(ctx, localID)
			case "requester":
				err = a.reg.Requesters.Delete(ctx, localID)
			case "approver":
				err = a.reg.Approvers.Delete(ctx, localID)
			case "record":
				err = a.reg.DailyRecords.Delete(ctx, localID)
			case "survey":
				err = a.reg.Surveys.Delete(ctx, localID)
			case "measurement":
				if err = a.reg.Measurements.Delete(ctx, localID); err == nil {
					a.measurements.Invalidate(ctx)
				}
			default:
				return fmt.Errorf("unknown entity %q", args[0])
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "%s %d deleted.\n", args[0], localID)
			return nil
		},
	}
	return cmd
}
