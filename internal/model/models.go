package model

import "time"

// RawShift is a single shift record as returned by the shifts API,
// before flattening. Start and Finish are epoch milliseconds; Date is
// an ISO-8601 date string (YYYY-MM-DD).
type RawShift struct {
	ID                   string         `json:"id"`
	Date                 string         `json:"date"`
	Start                int64          `json:"start"`
	Finish               int64          `json:"finish"`
	Allowances           []RawAllowance `json:"allowances"`
	AwardInterpretations []RawAward     `json:"award_interpretations"`
	Breaks               []RawBreak     `json:"breaks"`
}

// RawAllowance is a nested allowance item on a raw shift.
type RawAllowance struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
	Cost  float64 `json:"cost"`
}

// RawAward is a nested award interpretation item on a raw shift.
type RawAward struct {
	ID    string  `json:"id"`
	Date  string  `json:"date"`
	Units float64 `json:"units"`
	Cost  float64 `json:"cost"`
}

// RawBreak is a nested break item on a raw shift. Start and Finish are
// epoch milliseconds.
type RawBreak struct {
	ID     string `json:"id"`
	Start  int64  `json:"start"`
	Finish int64  `json:"finish"`
	Paid   bool   `json:"paid"`
}

// PageLinks carries the pagination references of a shifts API page.
// An empty Next signals the last page.
type PageLinks struct {
	Base string `json:"base"`
	Next string `json:"next"`
}

// ShiftsPage is one page of the shifts API response envelope.
type ShiftsPage struct {
	Results []RawShift `json:"results"`
	Links   PageLinks  `json:"links"`
}

// Shift is a flattened shift row. Cost is the sum of the costs of the
// shift's allowances and award interpretations.
type Shift struct {
	ID     string    `json:"shift_id"`
	Date   time.Time `json:"shift_date"`
	Start  time.Time `json:"shift_start"`
	Finish time.Time `json:"shift_finish"`
	Cost   float64   `json:"shift_cost"`
}

// Allowance is a flattened allowance row.
type Allowance struct {
	ID      string  `json:"allowance_id"`
	ShiftID string  `json:"shift_id"`
	Value   float64 `json:"allowance_value"`
	Cost    float64 `json:"allowance_cost"`
}

// AwardInterpretation is a flattened award interpretation row.
type AwardInterpretation struct {
	ID      string    `json:"award_id"`
	ShiftID string    `json:"shift_id"`
	Date    time.Time `json:"award_date"`
	Units   float64   `json:"award_units"`
	Cost    float64   `json:"award_cost"`
}

// Break is a flattened break row.
type Break struct {
	ID      string    `json:"break_id"`
	ShiftID string    `json:"shift_id"`
	Start   time.Time `json:"break_start"`
	Finish  time.Time `json:"break_finish"`
	Paid    bool      `json:"is_paid"`
}

// KPI is one computed metric row. Date is the run's execution date,
// not a record date.
type KPI struct {
	Name  string    `json:"kpi_name"`
	Value float64   `json:"kpi_value"`
	Date  time.Time `json:"kpi_date"`
}

// Dataset holds the flattened output of one ETL run. Row order matches
// input record order; nested collection order is preserved.
type Dataset struct {
	Shifts               []Shift
	Allowances           []Allowance
	AwardInterpretations []AwardInterpretation
	Breaks               []Break
}
