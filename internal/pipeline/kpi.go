package pipeline

import (
	"fmt"
	"math"
	"sort"
	"time"

	"shift-etl/internal/model"
)

// KPI names. One row per name is written each run.
const (
	KPIMeanBreakLength    = "mean_break_length_in_minutes"
	KPIMeanShiftCost      = "mean_shift_cost"
	KPIMaxAllowanceCost   = "max_allowance_cost_14d"
	KPIMaxBreakFreePeriod = "max_break_free_shift_period_in_days"
	KPIMinShiftLength     = "min_shift_length_in_hours"
	KPIPaidBreaks         = "total_number_of_paid_breaks"
)

// allowanceWindowDays is the lookback for max_allowance_cost_14d,
// inclusive on both ends.
const allowanceWindowDays = 14

// ComputeKPIs derives the six metrics from a flattened dataset. The
// award interpretation rows are not used by any metric. today is the
// run's execution date and becomes the date on every returned row.
//
// Empty aggregate inputs fail fast: a dataset with no shifts, no
// breaks, or no allowance inside the 14-day window yields an error
// naming the metric rather than a NaN or sentinel row.
func ComputeKPIs(ds *model.Dataset, today time.Time) ([]model.KPI, error) {
	runDate := truncateToDate(today)

	meanBreak, err := meanBreakMinutes(ds.Breaks)
	if err != nil {
		return nil, err
	}
	meanCost, err := meanShiftCost(ds.Shifts)
	if err != nil {
		return nil, err
	}
	maxAllowance, err := maxAllowanceCostInWindow(ds.Shifts, ds.Allowances, runDate)
	if err != nil {
		return nil, err
	}
	minLength, err := minShiftHours(ds.Shifts)
	if err != nil {
		return nil, err
	}

	kpis := []model.KPI{
		{Name: KPIMeanBreakLength, Value: meanBreak, Date: runDate},
		{Name: KPIMeanShiftCost, Value: meanCost, Date: runDate},
		{Name: KPIMaxAllowanceCost, Value: maxAllowance, Date: runDate},
		{Name: KPIMaxBreakFreePeriod, Value: float64(maxBreakFreeStreak(ds.Shifts, ds.Breaks)), Date: runDate},
		{Name: KPIMinShiftLength, Value: minLength, Date: runDate},
		{Name: KPIPaidBreaks, Value: float64(countPaidBreaks(ds.Breaks)), Date: runDate},
	}

	for _, k := range kpis {
		if math.IsNaN(k.Value) || math.IsInf(k.Value, 0) {
			return nil, fmt.Errorf("kpi %s: value is not finite", k.Name)
		}
	}

	return kpis, nil
}

func meanBreakMinutes(breaks []model.Break) (float64, error) {
	if len(breaks) == 0 {
		return 0, fmt.Errorf("kpi %s: no break rows", KPIMeanBreakLength)
	}
	total := 0.0
	for _, b := range breaks {
		total += b.Finish.Sub(b.Start).Minutes()
	}
	return total / float64(len(breaks)), nil
}

func meanShiftCost(shifts []model.Shift) (float64, error) {
	if len(shifts) == 0 {
		return 0, fmt.Errorf("kpi %s: no shift rows", KPIMeanShiftCost)
	}
	total := 0.0
	for _, s := range shifts {
		total += s.Cost
	}
	return total / float64(len(shifts)), nil
}

// maxAllowanceCostInWindow joins allowances to their parent shift's
// date and takes the maximum cost among those whose shift falls within
// [today-14d, today], both ends inclusive.
func maxAllowanceCostInWindow(shifts []model.Shift, allowances []model.Allowance, today time.Time) (float64, error) {
	windowStart := today.AddDate(0, 0, -allowanceWindowDays)

	shiftDates := make(map[string]time.Time, len(shifts))
	for _, s := range shifts {
		shiftDates[s.ID] = truncateToDate(s.Date)
	}

	maxCost := 0.0
	found := false
	for _, a := range allowances {
		d, ok := shiftDates[a.ShiftID]
		if !ok || d.Before(windowStart) || d.After(today) {
			continue
		}
		if !found || a.Cost > maxCost {
			maxCost = a.Cost
			found = true
		}
	}
	if !found {
		return 0, fmt.Errorf("kpi %s: no allowance within the last %d days", KPIMaxAllowanceCost, allowanceWindowDays)
	}
	return maxCost, nil
}

// maxBreakFreeStreak returns the longest run of consecutive shifts,
// ordered by date ascending, that have no associated break. Shifts on
// the same date are ordered by shift ID ascending so the result is
// deterministic. Whether a shift has a break is derived once per shift,
// so a shift with several breaks resets the streak exactly once.
func maxBreakFreeStreak(shifts []model.Shift, breaks []model.Break) int {
	hasBreak := make(map[string]bool, len(shifts))
	for _, b := range breaks {
		hasBreak[b.ShiftID] = true
	}

	ordered := make([]model.Shift, len(shifts))
	copy(ordered, shifts)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].ID < ordered[j].ID
	})

	longest, streak := 0, 0
	for _, s := range ordered {
		if hasBreak[s.ID] {
			streak = 0
			continue
		}
		streak++
		if streak > longest {
			longest = streak
		}
	}
	return longest
}

func minShiftHours(shifts []model.Shift) (float64, error) {
	if len(shifts) == 0 {
		return 0, fmt.Errorf("kpi %s: no shift rows", KPIMinShiftLength)
	}
	min := shifts[0].Finish.Sub(shifts[0].Start).Hours()
	for _, s := range shifts[1:] {
		if h := s.Finish.Sub(s.Start).Hours(); h < min {
			min = h
		}
	}
	return min, nil
}

func countPaidBreaks(breaks []model.Break) int {
	n := 0
	for _, b := range breaks {
		if b.Paid {
			n++
		}
	}
	return n
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
