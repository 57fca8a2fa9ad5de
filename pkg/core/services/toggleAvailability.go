package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/event-rota/pkg/core/constraints"
	"github.com/jakechorley/event-rota/pkg/core/model"
	"github.com/jakechorley/event-rota/pkg/core/slots"
)

// ToggleAvailabilityStore defines the database operations needed to toggle availability
type ToggleAvailabilityStore interface {
	GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error)
	SaveVolunteer(ctx context.Context, volunteer *model.Volunteer) error
}

// ToggleResult is the outcome of a self-service availability toggle
type ToggleResult struct {
	Volunteer *model.Volunteer
	// Available is the state of the slot after the toggle
	Available bool
	Rejected  bool
	Message   string
	Conflicts []constraints.Conflict
}

// ToggleAvailability flips a single day/shift in a volunteer's availability.
//
// Adding a slot that would exceed the consecutive limit is refused and nothing is
// saved. Removing a slot is always allowed.
func ToggleAvailability(
	ctx context.Context,
	database ToggleAvailabilityStore,
	grid *slots.Grid,
	limit int,
	logger *zap.Logger,
	volunteerID, day, shift string,
) (*ToggleResult, error) {
	logger.Debug("Toggling availability",
		zap.String("volunteer_id", volunteerID),
		zap.String("day", day),
		zap.String("shift", shift))

	slot, err := grid.SlotFor(day, shift)
	if err != nil {
		return nil, err
	}

	volunteer, err := database.GetVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch volunteer %s: %w", volunteerID, err)
	}

	held, err := grid.AvailabilitySlots(volunteer.Availability)
	if err != nil {
		return nil, fmt.Errorf("volunteer %s has invalid availability: %w", volunteerID, err)
	}

	result := &ToggleResult{Volunteer: volunteer}

	if held.Has(slot) {
		held.Remove(slot)
	} else {
		decision := constraints.Check(grid, held, slot, constraints.Enforcing, limit)
		if !decision.Allowed {
			result.Rejected = true
			result.Conflicts = decision.Conflicts
			result.Message = constraints.RejectionMessage(grid, slot, limit, decision.Conflicts)
			logger.Info("Availability toggle rejected",
				zap.String("volunteer_id", volunteerID),
				zap.String("slot", grid.Label(slot)),
				zap.Int("conflicts", len(decision.Conflicts)))
			return result, nil
		}
		held.Add(slot)
		result.Available = true
	}

	volunteer.Availability = grid.ToAvailability(held)
	if err := database.SaveVolunteer(ctx, volunteer); err != nil {
		return nil, fmt.Errorf("failed to save volunteer %s: %w", volunteerID, err)
	}

	logger.Info("Availability updated",
		zap.String("volunteer_id", volunteerID),
		zap.String("slot", grid.Label(slot)),
		zap.Bool("available", result.Available))

	return result, nil
}
