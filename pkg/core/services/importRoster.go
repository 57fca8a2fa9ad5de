package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/jakechorley/event-rota/pkg/core/model"
	"github.com/jakechorley/event-rota/pkg/core/slots"
	"github.com/jakechorley/event-rota/pkg/db"
)

// RosterSource reads volunteers from an external sheet
type RosterSource interface {
	ListVolunteers(ctx context.Context, spreadsheetID, tab string) ([]model.Volunteer, error)
}

// ImportRosterStore defines the database operations needed to import volunteers
type ImportRosterStore interface {
	GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error)
	SaveVolunteer(ctx context.Context, volunteer *model.Volunteer) error
}

// ImportResult counts the volunteers written by an import
type ImportResult struct {
	Created int
	Updated int
}

// ImportRoster copies the roster sheet into the database.
//
// Availability from the sheet must use grid labels. When a row carries no
// availability, any stored availability is kept. When facets is non-empty only
// those attributes are imported.
func ImportRoster(
	ctx context.Context,
	database ImportRosterStore,
	source RosterSource,
	grid *slots.Grid,
	logger *zap.Logger,
	spreadsheetID, tab string,
	facets []string,
) (*ImportResult, error) {
	logger.Debug("Importing roster",
		zap.String("spreadsheet_id", spreadsheetID),
		zap.String("tab", tab))

	volunteers, err := source.ListVolunteers(ctx, spreadsheetID, tab)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	result := &ImportResult{}
	for i := range volunteers {
		v := volunteers[i]

		held, err := grid.AvailabilitySlots(v.Availability)
		if err != nil {
			return nil, fmt.Errorf("volunteer %s has invalid availability: %w", v.ID, err)
		}
		v.Availability = grid.ToAvailability(held)
		v.Attributes = keepFacets(v.Attributes, facets)

		stored, err := database.GetVolunteer(ctx, v.ID)
		switch {
		case errors.Is(err, db.ErrNotFound):
			result.Created++
		case err != nil:
			return nil, fmt.Errorf("failed to fetch volunteer %s: %w", v.ID, err)
		default:
			result.Updated++
			if len(held) == 0 {
				v.Availability = stored.Availability
			}
		}

		if err := database.SaveVolunteer(ctx, &v); err != nil {
			return nil, fmt.Errorf("failed to save volunteer %s: %w", v.ID, err)
		}
	}

	logger.Info("Roster imported",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated))

	return result, nil
}

func keepFacets(attributes map[string][]string, facets []string) map[string][]string {
	if len(facets) == 0 || attributes == nil {
		return attributes
	}
	kept := make(map[string][]string)
	for name, values := range attributes {
		if slices.Contains(facets, name) {
			kept[name] = values
		}
	}
	return kept
}
