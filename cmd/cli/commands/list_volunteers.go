package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/event-rota/pkg/core/services"
)

// ListVolunteersCmd creates the listVolunteers command
func ListVolunteersCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listVolunteers",
		Short: "List volunteers, optionally narrowed by availability, attributes and load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			preds, err := predicatesFromFlags(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			app.Logger.Debug("listVolunteers command", zap.Int("predicates", len(preds)), zap.Int("limit", limit))

			listing, err := services.ListVolunteers(app.Ctx, app.Database, app.Grid, app.Logger, preds, limit)
			if err != nil {
				return fmt.Errorf("failed to list volunteers: %w", err)
			}

			fmt.Printf("\nFound %d volunteers", listing.Matched)
			if len(listing.Volunteers) < listing.Matched {
				fmt.Printf(" (showing %d)", len(listing.Volunteers))
			}
			fmt.Printf(":\n\n")

			for _, v := range listing.Volunteers {
				fmt.Printf("- %s (%s) - %s - %d assignments%s\n",
					v.FullName(),
					v.ID,
					v.Email,
					listing.AssignmentCounts[v.ID],
					formatAttributes(v.Attributes),
				)
			}
			fmt.Println()

			return nil
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().Int("limit", 0, "Show at most this many volunteers (0 for all)")

	return cmd
}

func formatAttributes(attributes map[string][]string) string {
	if len(attributes) == 0 {
		return ""
	}
	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %s", name, strings.Join(attributes[name], ", "))
	}
	return " [" + strings.Join(parts, "; ") + "]"
}
