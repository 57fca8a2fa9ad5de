package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/event-rota/pkg/core/model"
)

type mockRosterSource struct {
	volunteers []model.Volunteer
	err        error
	gotSheet   string
	gotTab     string
}

func (m *mockRosterSource) ListVolunteers(ctx context.Context, spreadsheetID, tab string) ([]model.Volunteer, error) {
	m.gotSheet, m.gotTab = spreadsheetID, tab
	if m.err != nil {
		return nil, m.err
	}
	return m.volunteers, nil
}

func TestImportRoster_CreatesAndUpdates(t *testing.T) {
	store := &mockStore{volunteers: []model.Volunteer{{
		ID:           "v1",
		FirstName:    "Old",
		Availability: model.Availability{"Friday": {"Night"}},
	}}}
	source := &mockRosterSource{volunteers: []model.Volunteer{
		{ID: "v1", FirstName: "Alice", Email: "alice@example.com"},
		{
			ID:           "v2",
			FirstName:    "Bob",
			Availability: model.Availability{"Saturday": {"Night", "Morning"}},
			Attributes:   map[string][]string{"skills": {"driving"}, "t-shirt": {"L"}},
		},
	}}

	result, err := ImportRoster(context.Background(), store, source, testGrid(), zap.NewNop(),
		"sheet123", "Volunteers", []string{"skills"})
	require.NoError(t, err)

	assert.Equal(t, "sheet123", source.gotSheet)
	assert.Equal(t, "Volunteers", source.gotTab)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)

	require.Len(t, store.saved, 2)
	alice := store.saved[0]
	assert.Equal(t, "Alice", alice.FirstName)
	assert.Equal(t, model.Availability{"Friday": {"Night"}}, alice.Availability, "stored availability kept")

	bob := store.saved[1]
	assert.Equal(t, model.Availability{"Saturday": {"Morning", "Night"}}, bob.Availability, "shifts in grid order")
	assert.Equal(t, map[string][]string{"skills": {"driving"}}, bob.Attributes)
}

func TestImportRoster_InvalidAvailability(t *testing.T) {
	source := &mockRosterSource{volunteers: []model.Volunteer{
		{ID: "v1", Availability: model.Availability{"Monday": {"Night"}}},
	}}
	store := &mockStore{}

	_, err := ImportRoster(context.Background(), store, source, testGrid(), zap.NewNop(), "sheet", "tab", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid availability")
	assert.Empty(t, store.saved)
}

func TestImportRoster_SourceError(t *testing.T) {
	source := &mockRosterSource{err: errors.New("permission denied")}

	_, err := ImportRoster(context.Background(), &mockStore{}, source, testGrid(), zap.NewNop(), "sheet", "tab", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read roster")
}
