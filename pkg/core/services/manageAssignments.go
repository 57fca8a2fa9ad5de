package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/event-rota/pkg/core/constraints"
	"github.com/jakechorley/event-rota/pkg/core/model"
	"github.com/jakechorley/event-rota/pkg/core/slots"
)

// AssignmentStatusStore defines the database operation needed to change a status
type AssignmentStatusStore interface {
	UpdateAssignmentStatus(ctx context.Context, id string, status model.AssignmentStatus) error
}

// AssignmentDeleter defines the database operation needed to remove an assignment
type AssignmentDeleter interface {
	DeleteAssignment(ctx context.Context, id string) error
}

// AssignmentLister defines the database operation needed to check the schedule
type AssignmentLister interface {
	ListAssignments(ctx context.Context) ([]model.Assignment, error)
}

// UpdateAssignmentStatus moves an assignment to pending, checked-in or completed
func UpdateAssignmentStatus(ctx context.Context, database AssignmentStatusStore, logger *zap.Logger, id, status string) error {
	s := model.AssignmentStatus(status)
	if !s.IsValid() {
		return fmt.Errorf("invalid assignment status %q: must be one of %s, %s, %s",
			status, model.StatusPending, model.StatusCheckedIn, model.StatusCompleted)
	}

	if err := database.UpdateAssignmentStatus(ctx, id, s); err != nil {
		return fmt.Errorf("failed to update assignment %s: %w", id, err)
	}

	logger.Info("Assignment status updated", zap.String("assignment_id", id), zap.String("status", status))
	return nil
}

// DeleteAssignment removes an assignment
func DeleteAssignment(ctx context.Context, database AssignmentDeleter, logger *zap.Logger, id string) error {
	if err := database.DeleteAssignment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete assignment %s: %w", id, err)
	}

	logger.Info("Assignment deleted", zap.String("assignment_id", id))
	return nil
}

// CheckSchedule reports every volunteer whose assigned slots form a run longer than limit
func CheckSchedule(ctx context.Context, database AssignmentLister, grid *slots.Grid, limit int, logger *zap.Logger) ([]constraints.Violation, error) {
	assignments, err := database.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	byVolunteer, err := constraints.SlotsByVolunteer(grid, assignments)
	if err != nil {
		return nil, fmt.Errorf("failed to map assignments onto the grid: %w", err)
	}

	violations := constraints.ValidateSchedule(grid, byVolunteer, limit)
	logger.Debug("Schedule checked",
		zap.Int("assignments", len(assignments)),
		zap.Int("volunteers", len(byVolunteer)),
		zap.Int("violations", len(violations)))

	return violations, nil
}
