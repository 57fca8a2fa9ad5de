package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/event-rota/pkg/core/filter"
	"github.com/jakechorley/event-rota/pkg/core/model"
	"github.com/jakechorley/event-rota/pkg/core/slots"
)

// ListVolunteersStore defines the database operations needed to filter the roster
type ListVolunteersStore interface {
	ListVolunteers(ctx context.Context) ([]model.Volunteer, error)
	ListAssignments(ctx context.Context) ([]model.Assignment, error)
}

// VolunteerListing is a filtered roster with the assignment count of each volunteer
type VolunteerListing struct {
	Volunteers       []model.Volunteer
	AssignmentCounts map[string]int
	// Matched is the number of volunteers matching before the limit was applied
	Matched int
}

// ListVolunteers narrows the roster by preds, in roster order. A limit of zero
// or less returns every match.
func ListVolunteers(
	ctx context.Context,
	database ListVolunteersStore,
	grid *slots.Grid,
	logger *zap.Logger,
	preds []filter.Predicate,
	limit int,
) (*VolunteerListing, error) {
	roster, err := database.ListVolunteers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch volunteers: %w", err)
	}

	assignments, err := database.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	matched, err := filter.New(grid).Filter(roster, assignments, preds)
	if err != nil {
		return nil, err
	}

	listing := &VolunteerListing{
		Volunteers:       matched,
		AssignmentCounts: make(map[string]int),
		Matched:          len(matched),
	}
	if limit > 0 {
		listing.Volunteers = filter.Limit(matched, limit)
	}
	for _, a := range assignments {
		listing.AssignmentCounts[a.VolunteerID]++
	}

	logger.Debug("Volunteers filtered",
		zap.Int("roster", len(roster)),
		zap.Int("predicates", len(preds)),
		zap.Int("matched", listing.Matched),
		zap.Int("returned", len(listing.Volunteers)))

	return listing, nil
}
