package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/event-rota/pkg/core/filter"
)

// countOperators is ordered so that two-character operators match first
var countOperators = []string{">=", "<=", "==", "≥", "≤", "=", "<", ">"}

// addFilterFlags registers the predicate flags shared by listVolunteers and assign
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("day", nil, "Available on at least one of these days")
	cmd.Flags().StringSlice("shift", nil, "Available for at least one of these shifts on any day")
	cmd.Flags().StringArray("attr", nil, "Attribute filter as name=value[,value...] (repeatable)")
	cmd.Flags().String("count", "", "Assignment count comparison, e.g. \">=2\" or \"=0\"")
	cmd.Flags().Bool("assigned", false, "Has at least one assignment")
	cmd.Flags().Bool("unassigned", false, "Has no assignments")
	cmd.Flags().StringSlice("free-on", nil, "Has no assignment on this day (repeatable)")
}

// predicatesFromFlags builds the predicates selected on the command line
func predicatesFromFlags(cmd *cobra.Command) ([]filter.Predicate, error) {
	var preds []filter.Predicate

	days, _ := cmd.Flags().GetStringSlice("day")
	if len(days) > 0 {
		preds = append(preds, filter.AvailableOnDays(days...))
	}

	shifts, _ := cmd.Flags().GetStringSlice("shift")
	if len(shifts) > 0 {
		preds = append(preds, filter.AvailableForShifts(shifts...))
	}

	attrs, _ := cmd.Flags().GetStringArray("attr")
	for _, attr := range attrs {
		pred, err := parseAttribute(attr)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}

	count, _ := cmd.Flags().GetString("count")
	if count != "" {
		pred, err := parseCount(count)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}

	assigned, _ := cmd.Flags().GetBool("assigned")
	unassigned, _ := cmd.Flags().GetBool("unassigned")
	if assigned && unassigned {
		return nil, fmt.Errorf("--assigned and --unassigned cannot be combined")
	}
	if assigned {
		preds = append(preds, filter.HasAssignments())
	}
	if unassigned {
		preds = append(preds, filter.HasNoAssignments())
	}

	freeOn, _ := cmd.Flags().GetStringSlice("free-on")
	for _, day := range freeOn {
		preds = append(preds, filter.UnassignedOnDay(day))
	}

	return preds, nil
}

func parseAttribute(s string) (filter.Predicate, error) {
	name, values, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return filter.Predicate{}, fmt.Errorf("attribute filter must be name=value[,value...], got %q", s)
	}

	var parsed []string
	for _, v := range strings.Split(values, ",") {
		if v = strings.TrimSpace(v); v != "" {
			parsed = append(parsed, v)
		}
	}
	if len(parsed) == 0 {
		return filter.Predicate{}, fmt.Errorf("attribute filter %q has no values", s)
	}
	return filter.HasAttribute(name, parsed...), nil
}

func parseCount(s string) (filter.Predicate, error) {
	s = strings.TrimSpace(s)
	for _, prefix := range countOperators {
		if !strings.HasPrefix(s, prefix) {
			continue
		}
		op, err := filter.ParseCompareOp(prefix)
		if err != nil {
			return filter.Predicate{}, err
		}
		target, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(s, prefix)))
		if err != nil {
			return filter.Predicate{}, fmt.Errorf("count target must be a number, got %q", s)
		}
		return filter.AssignmentCount(op, target), nil
	}
	return filter.Predicate{}, fmt.Errorf("count must start with one of =, <, <=, >, >=, got %q", s)
}
