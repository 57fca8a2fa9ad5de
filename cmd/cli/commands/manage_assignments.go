package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/event-rota/pkg/core/services"
)

// SetStatusCmd creates the setStatus command
func SetStatusCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "setStatus <assignment_id> <pending|checked-in|completed>",
		Short: "Update the status of an assignment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.UpdateAssignmentStatus(app.Ctx, app.Database, app.Logger, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("\n✓ Assignment %s is now %s\n\n", args[0], args[1])
			return nil
		},
	}
}

// UnassignCmd creates the unassign command
func UnassignCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <assignment_id>...",
		Short: "Delete assignments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if err := services.DeleteAssignment(app.Ctx, app.Database, app.Logger, id); err != nil {
					return err
				}
				fmt.Printf("✓ Deleted %s\n", id)
			}
			fmt.Println()
			return nil
		},
	}
}

// CheckScheduleCmd creates the checkSchedule command
func CheckScheduleCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "checkSchedule",
		Short: "Report volunteers assigned to more consecutive shifts than the limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("checkSchedule command", zap.Int("limit", app.Limit()))

			violations, err := services.CheckSchedule(app.Ctx, app.Database, app.Grid, app.Limit(), app.Logger)
			if err != nil {
				return err
			}

			if len(violations) == 0 {
				fmt.Printf("\n✓ No volunteer exceeds %d consecutive shifts\n\n", app.Limit())
				return nil
			}

			fmt.Printf("\n⚠️  %d runs exceed %d consecutive shifts:\n", len(violations), app.Limit())
			for _, v := range violations {
				fmt.Printf("  %s: %s (%d shifts)\n", v.VolunteerID, v.Describe(app.Grid), v.Length)
			}
			fmt.Println()
			return nil
		},
	}
}
