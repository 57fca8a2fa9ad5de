package sheetsclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/jakechorley/event-rota/pkg/core/model"
)

// Expected column names in the roster sheet
var volunteerFields = []string{
	"Unique ID",
	"First name",
	"Last name",
	"Email",
}

const (
	phoneField         = "Phone"
	availabilityPrefix = "Availability:"
)

// ListVolunteers retrieves and parses the roster from a spreadsheet tab
func (c *Client) ListVolunteers(ctx context.Context, spreadsheetID, tab string) ([]model.Volunteer, error) {
	values, err := c.GetValues(ctx, spreadsheetID, tab)
	if err != nil {
		return nil, fmt.Errorf("failed to get volunteer data: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	volunteers, err := parseVolunteers(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse volunteers: %w", err)
	}

	return volunteers, nil
}

// parseVolunteers converts raw spreadsheet data into volunteers.
//
// Columns named "Availability: <day>" hold comma separated shift labels for that day.
// Every other column beyond the fixed fields becomes an attribute facet named after
// its header, with comma separated values.
func parseVolunteers(raw [][]interface{}) ([]model.Volunteer, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("no header row found")
	}

	headerRow := raw[0]
	headers := make([]string, len(headerRow))
	for i, cell := range headerRow {
		if s, ok := cell.(string); ok {
			headers[i] = strings.TrimSpace(s)
		}
	}

	fieldIndexes := make(map[string]int)
	for _, field := range volunteerFields {
		index := -1
		for i, h := range headers {
			if h == field {
				index = i
				break
			}
		}
		if index == -1 {
			return nil, fmt.Errorf("missing required field in header: %s", field)
		}
		fieldIndexes[field] = index
	}

	fixed := map[string]bool{phoneField: true}
	for _, field := range volunteerFields {
		fixed[field] = true
	}

	getCell := func(index int, row []interface{}) string {
		if index < 0 || index >= len(row) {
			return ""
		}
		if str, ok := row[index].(string); ok {
			return strings.TrimSpace(str)
		}
		return ""
	}
	getField := func(field string, row []interface{}) string {
		index, ok := fieldIndexes[field]
		if !ok {
			return ""
		}
		return getCell(index, row)
	}

	phoneIndex := -1
	for i, h := range headers {
		if h == phoneField {
			phoneIndex = i
		}
	}

	seen := make(map[string]int)
	volunteers := make([]model.Volunteer, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		row := raw[i]

		firstName := getField("First name", row)
		// Skip empty rows (rows with no first name)
		if firstName == "" {
			continue
		}

		id := getField("Unique ID", row)
		if id == "" {
			return nil, fmt.Errorf("missing unique id for volunteer in row %d", i+1)
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate unique id %q in rows %d and %d", id, prev, i+1)
		}
		seen[id] = i + 1

		volunteer := model.Volunteer{
			ID:        id,
			FirstName: firstName,
			LastName:  getField("Last name", row),
			Email:     getField("Email", row),
			Phone:     getCell(phoneIndex, row),
		}

		for col, header := range headers {
			if header == "" || fixed[header] {
				continue
			}
			values := splitList(getCell(col, row))
			if len(values) == 0 {
				continue
			}

			if day, ok := strings.CutPrefix(header, availabilityPrefix); ok {
				if volunteer.Availability == nil {
					volunteer.Availability = model.Availability{}
				}
				volunteer.Availability[strings.TrimSpace(day)] = values
				continue
			}

			if volunteer.Attributes == nil {
				volunteer.Attributes = map[string][]string{}
			}
			volunteer.Attributes[header] = values
		}

		volunteers = append(volunteers, volunteer)
	}

	return volunteers, nil
}

func splitList(cell string) []string {
	if cell == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(cell, ",") {
		if v := strings.TrimSpace(part); v != "" {
			values = append(values, v)
		}
	}
	return values
}
