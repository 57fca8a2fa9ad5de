package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/event-rota/pkg/core/services"
)

// ImportRosterCmd creates the importRoster command
func ImportRosterCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "importRoster",
		Short: "Import volunteers from the roster sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Cfg.RosterSheetID == "" {
				return fmt.Errorf("rosterSheetID is not configured")
			}

			app.Logger.Debug("importRoster command",
				zap.String("spreadsheet_id", app.Cfg.RosterSheetID),
				zap.String("tab", app.Cfg.RosterTab))

			result, err := services.ImportRoster(
				app.Ctx,
				app.Database,
				app.SheetsClient,
				app.Grid,
				app.Logger,
				app.Cfg.RosterSheetID,
				app.Cfg.RosterTab,
				app.Cfg.Event.Attributes,
			)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Roster imported: %d new, %d updated\n\n", result.Created, result.Updated)
			return nil
		},
	}
}
