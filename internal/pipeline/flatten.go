// Package pipeline implements the shift ETL: flattening raw shift
// records into normalized rows and deriving KPIs from them.
package pipeline

import (
	"fmt"
	"time"

	"shift-etl/internal/model"
)

// Flatten converts raw shift records into the four normalized row
// groups. Each shift's cost is accumulated from its allowances and
// award interpretations; breaks carry no cost. A record with no nested
// items yields a cost-0 shift and no child rows. Any timestamp or date
// conversion failure aborts the whole batch so no partial dataset is
// ever persisted.
func Flatten(records []model.RawShift) (*model.Dataset, error) {
	ds := &model.Dataset{
		Shifts:               make([]model.Shift, 0, len(records)),
		Allowances:           []model.Allowance{},
		AwardInterpretations: []model.AwardInterpretation{},
		Breaks:               []model.Break{},
	}

	for _, rec := range records {
		date, err := parseDate(rec.Date)
		if err != nil {
			return nil, fmt.Errorf("shift %s: invalid date %q: %w", rec.ID, rec.Date, err)
		}

		shiftCost := 0.0

		for _, a := range rec.Allowances {
			ds.Allowances = append(ds.Allowances, model.Allowance{
				ID:      a.ID,
				ShiftID: rec.ID,
				Value:   a.Value,
				Cost:    a.Cost,
			})
			shiftCost += a.Cost
		}

		for _, aw := range rec.AwardInterpretations {
			awardDate, err := parseDate(aw.Date)
			if err != nil {
				return nil, fmt.Errorf("award %s on shift %s: invalid date %q: %w", aw.ID, rec.ID, aw.Date, err)
			}
			ds.AwardInterpretations = append(ds.AwardInterpretations, model.AwardInterpretation{
				ID:      aw.ID,
				ShiftID: rec.ID,
				Date:    awardDate,
				Units:   aw.Units,
				Cost:    aw.Cost,
			})
			shiftCost += aw.Cost
		}

		for _, b := range rec.Breaks {
			ds.Breaks = append(ds.Breaks, model.Break{
				ID:      b.ID,
				ShiftID: rec.ID,
				Start:   fromEpochMillis(b.Start),
				Finish:  fromEpochMillis(b.Finish),
				Paid:    b.Paid,
			})
		}

		ds.Shifts = append(ds.Shifts, model.Shift{
			ID:     rec.ID,
			Date:   date,
			Start:  fromEpochMillis(rec.Start),
			Finish: fromEpochMillis(rec.Finish),
			Cost:   shiftCost,
		})
	}

	return ds, nil
}

// parseDate parses an ISO-8601 calendar date with no time component.
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, time.UTC)
}

func fromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
