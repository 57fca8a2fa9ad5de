package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/event-rota/pkg/core/services"
)

// ToggleAvailabilityCmd creates the toggleAvailability command
func ToggleAvailabilityCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toggleAvailability <volunteer_id> <day> <shift>",
		Short: "Toggle a day/shift in a volunteer's availability, as the volunteer would",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			volunteerID, day, shift := args[0], args[1], args[2]

			app.Logger.Debug("toggleAvailability command",
				zap.String("volunteer_id", volunteerID),
				zap.String("day", day),
				zap.String("shift", shift))

			result, err := services.ToggleAvailability(app.Ctx, app.Database, app.Grid, app.Limit(), app.Logger, volunteerID, day, shift)
			if err != nil {
				return err
			}

			if result.Rejected {
				fmt.Printf("\n✗ Not saved: %s\n\n", result.Message)
				return nil
			}

			state := "unavailable"
			if result.Available {
				state = "available"
			}
			fmt.Printf("\n✓ %s is now %s for %s %s\n\n", result.Volunteer.FullName(), state, day, shift)
			printAvailability(app, result.Volunteer.Availability)

			return nil
		},
	}
}

func printAvailability(app *AppContext, availability map[string][]string) {
	fmt.Println("Availability:")
	for _, day := range app.Grid.Days() {
		shifts := availability[day]
		if len(shifts) == 0 {
			continue
		}
		fmt.Printf("  %-12s %v\n", day, shifts)
	}
	fmt.Println()
}
