package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/event-rota/pkg/core/dispatch"
	"github.com/jakechorley/event-rota/pkg/core/model"
	"github.com/jakechorley/event-rota/pkg/core/notify"
	"github.com/jakechorley/event-rota/pkg/db"
)

// NotifyStore defines the database operations needed to build notifications
type NotifyStore interface {
	ListVolunteers(ctx context.Context) ([]model.Volunteer, error)
	ListAssignments(ctx context.Context) ([]model.Assignment, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListLocations(ctx context.Context) ([]model.Location, error)
}

// NotifyResult is the delivery report of a notification run
type NotifyResult struct {
	dispatch.Result
	// Unreachable lists assigned volunteers with no roster entry or email address
	Unreachable []string
}

// NotifyAssignees sends each affected volunteer one message summarising all of
// their selected assignments.
//
// assignmentIDs selects the assignments to announce; when empty every pending
// assignment is included. onProgress, if set, is called after every batch. Delivery
// failures are reported in the result and never returned as the error.
func NotifyAssignees(
	ctx context.Context,
	database NotifyStore,
	transport dispatch.Transport,
	opts dispatch.Options,
	portalURL string,
	logger *zap.Logger,
	assignmentIDs []string,
	onProgress func(dispatch.Progress),
) (*NotifyResult, error) {
	assignments, err := database.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	selected, err := selectAssignments(assignments, assignmentIDs)
	if err != nil {
		return nil, err
	}

	roster, err := database.ListVolunteers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch volunteers: %w", err)
	}

	tasks, err := database.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	locations, err := database.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch locations: %w", err)
	}

	jobs, unreachable := notify.BuildJobs(roster, selected, indexTasks(tasks), indexLocations(locations), portalURL)
	for _, id := range unreachable {
		logger.Warn("Volunteer cannot be notified", zap.String("volunteer_id", id))
	}

	logger.Info("Dispatching notifications",
		zap.Int("assignments", len(selected)),
		zap.Int("jobs", len(jobs)))

	run := dispatch.New(transport, opts, logger).Start(ctx, jobs)
	for p := range run.Progress() {
		if onProgress != nil {
			onProgress(p)
		}
	}
	result := run.Wait()

	logger.Info("Notification run finished",
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Bool("cancelled", result.Cancelled))
	if err := result.Err(); err != nil {
		logger.Warn("Notifications failed to deliver", zap.Error(err))
	}

	return &NotifyResult{Result: result, Unreachable: unreachable}, nil
}

func selectAssignments(assignments []model.Assignment, ids []string) ([]model.Assignment, error) {
	if len(ids) == 0 {
		var pending []model.Assignment
		for _, a := range assignments {
			if a.Status == model.StatusPending {
				pending = append(pending, a)
			}
		}
		return pending, nil
	}

	byID := make(map[string]model.Assignment, len(assignments))
	for _, a := range assignments {
		byID[a.ID] = a
	}

	selected := make([]model.Assignment, 0, len(ids))
	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("assignment %s: %w", id, db.ErrNotFound)
		}
		selected = append(selected, a)
	}
	return selected, nil
}

func indexTasks(tasks []model.Task) map[string]model.Task {
	byID := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	return byID
}

func indexLocations(locations []model.Location) map[string]model.Location {
	byID := make(map[string]model.Location, len(locations))
	for _, l := range locations {
		byID[l.ID] = l
	}
	return byID
}
