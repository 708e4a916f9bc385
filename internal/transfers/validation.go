package transfers

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/foresttrail/trailops/pkg/db/models"
	pkgerrors "github.com/foresttrail/trailops/pkg/errors"
)

func validateActor(actor string) error {
	if strings.TrimSpace(actor) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor is required")
	}
	return nil
}

// validateLineSet checks the shape of a line set and reports every problem at once.
func validateLineSet(lines []LineInput, maxLines int) error {
	if len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}
	if maxLines > 0 && len(lines) > maxLines {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("a transfer may carry at most %d lines", maxLines)).
			WithDetails(map[string]any{"max_lines": maxLines, "lines": len(lines)})
	}

	var errs error
	seen := make(map[uuid.UUID]int, len(lines))
	for i, line := range lines {
		if line.ItemID == uuid.Nil {
			errs = multierr.Append(errs, fmt.Errorf("lines[%d]: item_id is required", i))
		} else if first, dup := seen[line.ItemID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("lines[%d]: item %s already requested in lines[%d]", i, line.ItemID, first))
		} else {
			seen[line.ItemID] = i
		}
		if line.Quantity <= 0 {
			errs = multierr.Append(errs, fmt.Errorf("lines[%d]: quantity must be greater than zero", i))
		}
	}
	if errs == nil {
		return nil
	}

	problems := make([]string, 0)
	for _, err := range multierr.Errors(errs) {
		problems = append(problems, err.Error())
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, errs, "invalid transfer lines").
		WithDetails(map[string]any{"problems": problems})
}

func validateLocations(sourceID, destinationID uuid.UUID) error {
	if sourceID == uuid.Nil || destinationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "source and destination locations are required")
	}
	if sourceID == destinationID {
		return pkgerrors.New(pkgerrors.CodeValidation, "source and destination must differ").
			WithDetails(map[string]any{"location_id": sourceID.String()})
	}
	return nil
}

func checkLocation(found map[uuid.UUID]models.Location, id uuid.UUID, role string) error {
	loc, ok := found[id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown %s location", role)).
			WithDetails(map[string]any{"location_id": id.String()})
	}
	if !loc.Active {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s location %s is inactive", role, loc.Code)).
			WithDetails(map[string]any{"location_id": id.String(), "location_code": loc.Code})
	}
	return nil
}

func itemIDs(lines []LineInput) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ItemID)
	}
	return ids
}

func lineTotals(lines []LineInput) (items, quantity int) {
	for _, line := range lines {
		items++
		quantity += line.Quantity
	}
	return items, quantity
}
