package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/event-rota/pkg/core/filter"
	"github.com/jakechorley/event-rota/pkg/core/services"
)

// timeLayouts are the accepted formats for --start and --end
var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"}

// AssignCmd creates the assign command
func AssignCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <volunteer_id>...",
		Short: "Assign volunteers to a task at a day/shift or explicit times",
		Long: `Assign the given volunteers to a task.

Volunteers who would exceed the consecutive shift limit are flagged and held back,
with a suggested replacement. Use --override to assign them anyway, or --replace to
assign the suggested replacement instead. The filter flags narrow the replacements
considered.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := assignRequestFromFlags(cmd, args)
			if err != nil {
				return err
			}
			notifyAfter, _ := cmd.Flags().GetBool("notify")

			app.Logger.Debug("assign command",
				zap.String("task_id", req.TaskID),
				zap.Strings("volunteer_ids", req.VolunteerIDs),
				zap.Bool("override", req.Override),
				zap.Bool("replace", req.ReplaceFlagged))

			result, err := services.AssignVolunteers(app.Ctx, app.Database, app.Grid, app.Limit(), app.Logger, req)
			if err != nil {
				return err
			}

			printAssignResult(app, result)

			if notifyAfter && len(result.Assignments) > 0 {
				ids := make([]string, len(result.Assignments))
				for i, a := range result.Assignments {
					ids[i] = a.ID
				}
				return runNotify(app, ids)
			}

			return nil
		},
	}

	cmd.Flags().String("task", "", "Task ID (required)")
	cmd.Flags().String("location", "", "Location ID")
	cmd.Flags().String("day", "", "Day label")
	cmd.Flags().String("shift", "", "Shift label")
	cmd.Flags().String("start", "", "Explicit start time (RFC 3339 or \"2006-01-02 15:04\")")
	cmd.Flags().String("end", "", "Explicit end time")
	cmd.Flags().String("description", "", "Free-text note for the volunteers")
	cmd.Flags().Bool("override", false, "Assign flagged volunteers despite the consecutive shift warning")
	cmd.Flags().Bool("replace", false, "Assign the suggested replacement for each flagged volunteer")
	cmd.Flags().Bool("notify", false, "Notify the assigned volunteers once committed")
	cmd.MarkFlagRequired("task")

	// replacement filter
	cmd.Flags().StringSlice("available-on", nil, "Replacements must be available on at least one of these days")
	cmd.Flags().StringArray("attr", nil, "Replacements must match attribute name=value[,value...] (repeatable)")
	cmd.Flags().String("count", "", "Replacements' assignment count comparison, e.g. \"<2\"")

	return cmd
}

func assignRequestFromFlags(cmd *cobra.Command, args []string) (services.AssignRequest, error) {
	req := services.AssignRequest{VolunteerIDs: args}
	req.TaskID, _ = cmd.Flags().GetString("task")
	req.LocationID, _ = cmd.Flags().GetString("location")
	req.Day, _ = cmd.Flags().GetString("day")
	req.Shift, _ = cmd.Flags().GetString("shift")
	req.Description, _ = cmd.Flags().GetString("description")
	req.Override, _ = cmd.Flags().GetBool("override")
	req.ReplaceFlagged, _ = cmd.Flags().GetBool("replace")

	var err error
	if req.StartTime, err = timeFlag(cmd, "start"); err != nil {
		return req, err
	}
	if req.EndTime, err = timeFlag(cmd, "end"); err != nil {
		return req, err
	}

	days, _ := cmd.Flags().GetStringSlice("available-on")
	if len(days) > 0 {
		req.ReplacementFilter = append(req.ReplacementFilter, filter.AvailableOnDays(days...))
	}
	attrs, _ := cmd.Flags().GetStringArray("attr")
	for _, attr := range attrs {
		pred, err := parseAttribute(attr)
		if err != nil {
			return req, err
		}
		req.ReplacementFilter = append(req.ReplacementFilter, pred)
	}
	count, _ := cmd.Flags().GetString("count")
	if count != "" {
		pred, err := parseCount(count)
		if err != nil {
			return req, err
		}
		req.ReplacementFilter = append(req.ReplacementFilter, pred)
	}

	return req, nil
}

func timeFlag(cmd *cobra.Command, name string) (*time.Time, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("--%s must be RFC 3339 or \"2006-01-02 15:04\", got %q", name, value)
}

func printAssignResult(app *AppContext, result *services.AssignResult) {
	fmt.Printf("\n✓ %d assignments created\n\n", len(result.Assignments))
	for _, a := range result.Assignments {
		fmt.Printf("  %s  %s\n", a.ID, a.VolunteerID)
	}
	if len(result.Assignments) > 0 {
		fmt.Println()
	}

	if len(result.AlreadyAssigned) > 0 {
		fmt.Printf("Already assigned to this slot: %v\n\n", result.AlreadyAssigned)
	}

	if len(result.Flagged) > 0 {
		fmt.Printf("⚠️  %d volunteers flagged:\n", len(result.Flagged))
		for _, f := range result.Flagged {
			fmt.Printf("  %s: %s [%s]\n", f.VolunteerID, f.Message, f.Resolution)
			if f.Replacement != nil {
				fmt.Printf("      replacement: %s (%s)\n", f.Replacement.FullName(), f.Replacement.ID)
			} else {
				fmt.Printf("      no replacement available\n")
			}
		}
		fmt.Println()
	}

	if len(result.Violations) > 0 {
		fmt.Printf("⚠️  Schedule now exceeds %d consecutive shifts:\n", app.Limit())
		for _, v := range result.Violations {
			fmt.Printf("  %s: %s (%d shifts)\n", v.VolunteerID, v.Describe(app.Grid), v.Length)
		}
		fmt.Println()
	}
}
