package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/event-rota/pkg/core/filter"
	"github.com/jakechorley/event-rota/pkg/core/model"
	"github.com/jakechorley/event-rota/pkg/db"
)

func assignStore() *mockStore {
	return &mockStore{
		volunteers: []model.Volunteer{
			{ID: "v1", FirstName: "Alice", Email: "alice@example.com"},
			{ID: "v2", FirstName: "Bob", Email: "bob@example.com", Attributes: map[string][]string{"skills": {"first-aid"}}},
			{ID: "v3", FirstName: "Carol", Email: "carol@example.com", Attributes: map[string][]string{"skills": {"first-aid"}}},
		},
		tasks:     []model.Task{{ID: "gate", Name: "Gate"}},
		locations: []model.Location{{ID: "north", Name: "North entrance"}},
	}
}

func TestAssignVolunteers_CreatesPendingAssignments(t *testing.T) {
	store := assignStore()

	result, err := AssignVolunteers(context.Background(), store, testGrid(), 2, zap.NewNop(), AssignRequest{
		TaskID:       "gate",
		LocationID:   "north",
		Day:          "Friday",
		Shift:        "Evening",
		Description:  "Check wristbands",
		VolunteerIDs: []string{"v1", "v2"},
	})
	require.NoError(t, err)

	require.Len(t, result.Assignments, 2)
	assert.Empty(t, result.Flagged)
	assert.Empty(t, result.Violations)

	for i, id := range []string{"v1", "v2"} {
		a := result.Assignments[i]
		assert.Equal(t, id, a.VolunteerID)
		assert.Equal(t, "gate", a.TaskID)
		assert.Equal(t, "north", a.LocationID)
		assert.Equal(t, model.StatusPending, a.Status)
		assert.Equal(t, "Check wristbands", a.Description)
		_, parseErr := uuid.Parse(a.ID)
		assert.NoError(t, parseErr)
	}
	assert.NotEqual(t, result.Assignments[0].ID, result.Assignments[1].ID)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, 2, store.listCalls, "assignments read before and after commit")
}

func TestAssignVolunteers_FlaggedVolunteerHeldWithReplacement(t *testing.T) {
	store := assignStore()
	store.assignments = []model.Assignment{
		slotted("a1", "v1", "Friday", "Evening"),
		slotted("a2", "v1", "Friday", "Night"),
	}

	result, err := AssignVolunteers(context.Background(), store, testGrid(), 2, zap.NewNop(), AssignRequest{
		TaskID:            "gate",
		Day:               "Friday",
		Shift:             "Afternoon",
		VolunteerIDs:      []string{"v1", "v2"},
		ReplacementFilter: []filter.Predicate{filter.HasAttribute("skills", "first-aid")},
	})
	require.NoError(t, err)

	require.Len(t, result.Flagged, 1)
	flag := result.Flagged[0]
	assert.Equal(t, "v1", flag.VolunteerID)
	assert.Equal(t, ResolutionHeld, flag.Resolution)
	assert.Contains(t, flag.Message, "Friday Afternoon → Friday Night")
	require.NotNil(t, flag.Replacement)
	assert.Equal(t, "v3", flag.Replacement.ID, "v2 is already selected")

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "v2", result.Assignments[0].VolunteerID)
}

func TestAssignVolunteers_OverrideCommitsFlagged(t *testing.T) {
	store := assignStore()
	store.assignments = []model.Assignment{
		slotted("a1", "v1", "Friday", "Evening"),
		slotted("a2", "v1", "Friday", "Night"),
	}

	result, err := AssignVolunteers(context.Background(), store, testGrid(), 2, zap.NewNop(), AssignRequest{
		TaskID:       "gate",
		Day:          "Friday",
		Shift:        "Afternoon",
		VolunteerIDs: []string{"v1"},
		Override:     true,
	})
	require.NoError(t, err)

	require.Len(t, result.Flagged, 1)
	assert.Equal(t, ResolutionOverridden, result.Flagged[0].Resolution)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "v1", result.Assignments[0].VolunteerID)

	require.Len(t, result.Violations, 1)
	assert.Equal(t, "v1", result.Violations[0].VolunteerID)
	assert.Equal(t, 3, result.Violations[0].Length)
}

func TestAssignVolunteers_ReplaceFlaggedSubstitutes(t *testing.T) {
	store := assignStore()
	store.assignments = []model.Assignment{
		slotted("a1", "v1", "Friday", "Evening"),
		slotted("a2", "v1", "Friday", "Night"),
	}

	result, err := AssignVolunteers(context.Background(), store, testGrid(), 2, zap.NewNop(), AssignRequest{
		TaskID:         "gate",
		Day:            "Friday",
		Shift:          "Afternoon",
		VolunteerIDs:   []string{"v1"},
		ReplaceFlagged: true,
	})
	require.NoError(t, err)

	require.Len(t, result.Flagged, 1)
	assert.Equal(t, ResolutionReplaced, result.Flagged[0].Resolution)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "v2", result.Assignments[0].VolunteerID)
	assert.Empty(t, result.Violations)
}

func TestAssignVolunteers_NoReplacementAvailable(t *testing.T) {
	store := assignStore()
	store.assignments = []model.Assignment{
		slotted("a1", "v1", "Friday", "Evening"),
		slotted("a2", "v1", "Friday", "Night"),
	}

	result, err := AssignVolunteers(context.Background(), store, testGrid(), 2, zap.NewNop(), AssignRequest{
		TaskID:            "gate",
		Day:               "Friday",
		Shift:             "Afternoon",
		VolunteerIDs:      []string{"v1"},
		ReplaceFlagged:    true,
		ReplacementFilter: []filter.Predicate{filter.HasAttribute("skills", "driving")},
	})
	require.NoError(t, err)

	require.Len(t, result.Flagged, 1)
	assert.Nil(t, result.Flagged[0].Replacement)
	assert.Equal(t, ResolutionHeld, result.Flagged[0].Resolution)
	assert.Empty(t, result.Assignments)
	assert.Empty(t, store.inserted, "nothing to commit")
}

func TestAssignVolunteers_SkipsVolunteerAlreadyInSlot(t *testing.T) {
	store := assignStore()
	store.assignments = []model.Assignment{slotted("a1", "v1", "Saturday", "Morning")}

	result, err := AssignVolunteers(context.Background(), store, testGrid(), 2, zap.NewNop(), AssignRequest{
		TaskID:       "gate",
		Day:          "Saturday",
		Shift:        "Morning",
		VolunteerIDs: []string{"v1", "v2"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"v1"}, result.AlreadyAssigned)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "v2", result.Assignments[0].VolunteerID)
}

func TestAssignVolunteers_PostCommitDetectsConcurrentWrite(t *testing.T) {
	store := assignStore()
	store.assignments = []model.Assignment{slotted("a1", "v1", "Friday", "Evening")}
	// another coordinator assigns Friday Night between our check and commit
	store.afterInsert = []model.Assignment{slotted("other", "v1", "Friday", "Night")}

	result, err := AssignVolunteers(context.Background(), store, testGrid(), 2, zap.NewNop(), AssignRequest{
		TaskID:       "gate",
		Day:          "Friday",
		Shift:        "Afternoon",
		VolunteerIDs: []string{"v1"},
	})
	require.NoError(t, err)

	assert.Empty(t, result.Flagged)
	require.Len(t, result.Assignments, 1)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "v1", result.Violations[0].VolunteerID)
}

func TestAssignVolunteers_ExplicitTimesSkipSlotChecks(t *testing.T) {
	store := assignStore()
	start := time.Date(2026, 6, 12, 18, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)

	result, err := AssignVolunteers(context.Background(), store, testGrid(), 2, zap.NewNop(), AssignRequest{
		TaskID:       "gate",
		StartTime:    &start,
		EndTime:      &end,
		VolunteerIDs: []string{"v1"},
	})
	require.NoError(t, err)

	require.Len(t, result.Assignments, 1)
	assert.False(t, result.Assignments[0].HasSlot())
	assert.Equal(t, &start, result.Assignments[0].StartTime)
	assert.Equal(t, 1, store.listCalls, "no post-commit check without a slot")
}

func TestAssignVolunteers_ExplicitTimesWithDay(t *testing.T) {
	store := assignStore()
	start := time.Date(2026, 6, 12, 18, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)

	result, err := AssignVolunteers(context.Background(), store, testGrid(), 2, zap.NewNop(), AssignRequest{
		TaskID:       "gate",
		Day:          "Friday",
		StartTime:    &start,
		EndTime:      &end,
		VolunteerIDs: []string{"v1"},
	})
	require.NoError(t, err)

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "Friday", result.Assignments[0].Day)
	assert.Empty(t, result.Assignments[0].Shift)
	assert.False(t, result.Assignments[0].HasSlot())
	assert.Equal(t, 1, store.listCalls, "no post-commit check without a slot")
}

func TestAssignVolunteers_InvalidRequests(t *testing.T) {
	start := time.Date(2026, 6, 12, 18, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)

	tests := map[string]AssignRequest{
		"missing task":        {Day: "Friday", Shift: "Night", VolunteerIDs: []string{"v1"}},
		"no volunteers":       {TaskID: "gate", Day: "Friday", Shift: "Night"},
		"duplicate volunteer": {TaskID: "gate", Day: "Friday", Shift: "Night", VolunteerIDs: []string{"v1", "v1"}},
		"day without shift":   {TaskID: "gate", Day: "Friday", VolunteerIDs: []string{"v1"}},
		"shift without day":   {TaskID: "gate", Shift: "Night", VolunteerIDs: []string{"v1"}},
		"no schedule":         {TaskID: "gate", VolunteerIDs: []string{"v1"}},
		"end before start":    {TaskID: "gate", StartTime: &start, EndTime: &before, VolunteerIDs: []string{"v1"}},
	}

	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			store := assignStore()
			_, err := AssignVolunteers(context.Background(), store, testGrid(), 2, zap.NewNop(), req)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "invalid assign request")
			assert.Empty(t, store.inserted)
		})
	}
}

func TestAssignVolunteers_UnknownReferences(t *testing.T) {
	_, err := AssignVolunteers(context.Background(), assignStore(), testGrid(), 2, zap.NewNop(), AssignRequest{
		TaskID: "bar", Day: "Friday", Shift: "Night", VolunteerIDs: []string{"v1"},
	})
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = AssignVolunteers(context.Background(), assignStore(), testGrid(), 2, zap.NewNop(), AssignRequest{
		TaskID: "gate", Day: "Friday", Shift: "Night", VolunteerIDs: []string{"v9"},
	})
	assert.ErrorIs(t, err, db.ErrNotFound)

	_, err = AssignVolunteers(context.Background(), assignStore(), testGrid(), 2, zap.NewNop(), AssignRequest{
		TaskID: "gate", Day: "Monday", Shift: "Night", VolunteerIDs: []string{"v1"},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Monday")
}

func TestAssignVolunteers_InsertError(t *testing.T) {
	store := assignStore()
	store.insertErr = errors.New("write conflict")

	_, err := AssignVolunteers(context.Background(), store, testGrid(), 2, zap.NewNop(), AssignRequest{
		TaskID: "gate", Day: "Friday", Shift: "Night", VolunteerIDs: []string{"v1"},
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert assignments")
}
