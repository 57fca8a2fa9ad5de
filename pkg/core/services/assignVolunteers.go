package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/event-rota/pkg/core/constraints"
	"github.com/jakechorley/event-rota/pkg/core/filter"
	"github.com/jakechorley/event-rota/pkg/core/model"
	"github.com/jakechorley/event-rota/pkg/core/slots"
	"github.com/jakechorley/event-rota/pkg/db"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// AssignStore defines the database operations needed to assign volunteers
type AssignStore interface {
	ListVolunteers(ctx context.Context) ([]model.Volunteer, error)
	ListAssignments(ctx context.Context) ([]model.Assignment, error)
	InsertAssignments(ctx context.Context, assignments []model.Assignment) error
	GetTask(ctx context.Context, id string) (*model.Task, error)
	GetLocation(ctx context.Context, id string) (*model.Location, error)
}

// AssignRequest describes one coordinator bulk assignment
type AssignRequest struct {
	TaskID      string `validate:"required"`
	LocationID  string
	// Day may accompany explicit times without a Shift
	Day         string
	Shift       string
	StartTime   *time.Time
	EndTime     *time.Time `validate:"required_with=StartTime"`
	Description string
	// VolunteerIDs is the working selection, in selection order
	VolunteerIDs []string `validate:"required,min=1,unique,dive,required"`
	// Override commits flagged volunteers despite the warning
	Override bool
	// ReplaceFlagged substitutes the suggested replacement for each flagged volunteer
	ReplaceFlagged bool
	// ReplacementFilter narrows the candidates considered as replacements
	ReplacementFilter []filter.Predicate
}

// Resolution records what happened to a flagged volunteer
type Resolution string

const (
	ResolutionHeld       Resolution = "held"
	ResolutionOverridden Resolution = "overridden"
	ResolutionReplaced   Resolution = "replaced"
)

// Flag is a consecutive-shift warning raised for one selected volunteer
type Flag struct {
	VolunteerID string
	Message     string
	Conflicts   []constraints.Conflict
	// Replacement is the first eligible substitute, nil if none exists
	Replacement *model.Volunteer
	Resolution  Resolution
}

// AssignResult reports what was committed and every warning raised
type AssignResult struct {
	Assignments []model.Assignment
	Flagged     []Flag
	// AlreadyAssigned lists selected volunteers who already hold the slot
	AlreadyAssigned []string
	// Violations are consecutive runs found after commit, involving the assigned volunteers
	Violations []constraints.Violation
}

// AssignVolunteers creates one assignment per selected volunteer.
//
// Slot-scheduled requests are checked against each volunteer's current assignments
// before commit. Conflicts never block the request: flagged volunteers are held back
// unless Override is set or a replacement is substituted. After commit the schedule
// is re-read and re-checked, since other writers may have changed it in between.
func AssignVolunteers(
	ctx context.Context,
	database AssignStore,
	grid *slots.Grid,
	limit int,
	logger *zap.Logger,
	req AssignRequest,
) (*AssignResult, error) {
	if err := validateAssignRequest(req); err != nil {
		return nil, err
	}

	logger.Debug("Assigning volunteers",
		zap.String("task_id", req.TaskID),
		zap.String("day", req.Day),
		zap.String("shift", req.Shift),
		zap.Int("selected", len(req.VolunteerIDs)))

	if _, err := database.GetTask(ctx, req.TaskID); err != nil {
		return nil, fmt.Errorf("failed to fetch task %s: %w", req.TaskID, err)
	}
	if req.LocationID != "" {
		if _, err := database.GetLocation(ctx, req.LocationID); err != nil {
			return nil, fmt.Errorf("failed to fetch location %s: %w", req.LocationID, err)
		}
	}

	roster, err := database.ListVolunteers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch volunteers: %w", err)
	}
	known := make(map[string]bool, len(roster))
	for _, v := range roster {
		known[v.ID] = true
	}
	for _, id := range req.VolunteerIDs {
		if !known[id] {
			return nil, fmt.Errorf("volunteer %s: %w", id, db.ErrNotFound)
		}
	}

	existing, err := database.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	result := &AssignResult{}
	commitIDs := req.VolunteerIDs

	hasSlot := req.Day != "" && req.Shift != ""
	var slot slots.Slot
	if hasSlot {
		slot, err = grid.SlotFor(req.Day, req.Shift)
		if err != nil {
			return nil, err
		}
		if len(req.ReplacementFilter) > 0 {
			if err := filter.New(grid).Validate(req.ReplacementFilter); err != nil {
				return nil, err
			}
		}

		commitIDs, err = preCommitCheck(grid, limit, req, roster, existing, slot, result)
		if err != nil {
			return nil, err
		}
	}

	if len(commitIDs) == 0 {
		logger.Info("No volunteers to assign",
			zap.Int("flagged", len(result.Flagged)),
			zap.Int("already_assigned", len(result.AlreadyAssigned)))
		return result, nil
	}

	now := time.Now().UTC()
	for _, id := range commitIDs {
		result.Assignments = append(result.Assignments, model.Assignment{
			ID:          uuid.New().String(),
			VolunteerID: id,
			TaskID:      req.TaskID,
			LocationID:  req.LocationID,
			Day:         req.Day,
			Shift:       req.Shift,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			Description: req.Description,
			Status:      model.StatusPending,
			CreatedAt:   now,
		})
	}

	if err := database.InsertAssignments(ctx, result.Assignments); err != nil {
		return nil, fmt.Errorf("failed to insert assignments: %w", err)
	}

	logger.Info("Assignments created",
		zap.String("task_id", req.TaskID),
		zap.Int("count", len(result.Assignments)),
		zap.Int("flagged", len(result.Flagged)))

	if hasSlot {
		result.Violations = postCommitCheck(ctx, database, grid, limit, logger, commitIDs)
	}

	return result, nil
}

func validateAssignRequest(req AssignRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid assign request: %w", err)
	}

	hasSlot := req.Day != "" && req.Shift != ""
	hasTimes := req.StartTime != nil && req.EndTime != nil
	if req.Shift != "" && req.Day == "" {
		return errors.New("invalid assign request: a shift requires a day")
	}
	if req.Day != "" && req.Shift == "" && !hasTimes {
		return errors.New("invalid assign request: a day without a shift requires a start and end time")
	}
	if !hasSlot && !hasTimes {
		return errors.New("invalid assign request: a day and shift or a start and end time is required")
	}
	if hasTimes && !req.EndTime.After(*req.StartTime) {
		return errors.New("invalid assign request: end time must be after start time")
	}
	return nil
}

// preCommitCheck flags selected volunteers whose assigned slots would exceed the
// limit and returns the ids that should be committed.
func preCommitCheck(
	grid *slots.Grid,
	limit int,
	req AssignRequest,
	roster []model.Volunteer,
	existing []model.Assignment,
	slot slots.Slot,
	result *AssignResult,
) ([]string, error) {
	candidates := filter.New(grid)

	selected := make(map[string]bool, len(req.VolunteerIDs))
	for _, id := range req.VolunteerIDs {
		selected[id] = true
	}

	var commitIDs []string
	for _, id := range req.VolunteerIDs {
		held, err := constraints.AssignedSlots(grid, existing, id)
		if err != nil {
			return nil, err
		}
		if held.Has(slot) {
			result.AlreadyAssigned = append(result.AlreadyAssigned, id)
			continue
		}

		decision := constraints.Check(grid, held, slot, constraints.Advisory, limit)
		if !decision.Warn {
			commitIDs = append(commitIDs, id)
			continue
		}

		flag := Flag{
			VolunteerID: id,
			Conflicts:   decision.Conflicts,
			Message:     constraints.RejectionMessage(grid, slot, limit, decision.Conflicts),
		}
		flag.Replacement, err = candidates.FindReplacement(roster, existing, id, req.ReplacementFilter, selected, slot, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to find replacement for %s: %w", id, err)
		}

		switch {
		case req.ReplaceFlagged && flag.Replacement != nil:
			flag.Resolution = ResolutionReplaced
			selected[flag.Replacement.ID] = true
			commitIDs = append(commitIDs, flag.Replacement.ID)
		case req.Override:
			flag.Resolution = ResolutionOverridden
			commitIDs = append(commitIDs, id)
		default:
			flag.Resolution = ResolutionHeld
		}
		result.Flagged = append(result.Flagged, flag)
	}

	return commitIDs, nil
}

// postCommitCheck re-reads the assignments and reports runs longer than the limit
// for the given volunteers. Failures are logged only, the commit already succeeded.
func postCommitCheck(
	ctx context.Context,
	database AssignStore,
	grid *slots.Grid,
	limit int,
	logger *zap.Logger,
	volunteerIDs []string,
) []constraints.Violation {
	fresh, err := database.ListAssignments(ctx)
	if err != nil {
		logger.Warn("Failed to re-read assignments after commit", zap.Error(err))
		return nil
	}

	byVolunteer, err := constraints.SlotsByVolunteer(grid, fresh)
	if err != nil {
		logger.Warn("Failed to check schedule after commit", zap.Error(err))
		return nil
	}

	affected := make(map[string]slots.SlotSet, len(volunteerIDs))
	for _, id := range volunteerIDs {
		if set, ok := byVolunteer[id]; ok {
			affected[id] = set
		}
	}

	violations := constraints.ValidateSchedule(grid, affected, limit)
	for _, v := range violations {
		logger.Warn("Consecutive shift limit exceeded after commit",
			zap.String("volunteer_id", v.VolunteerID),
			zap.String("run", v.Describe(grid)))
	}
	return violations
}
