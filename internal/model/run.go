package model

import "time"

// Run statuses, in the order the pipeline moves through them.
const (
	RunStatusPending    = "pending"
	RunStatusFetching   = "fetching"
	RunStatusFlattening = "flattening"
	RunStatusPersisting = "persisting"
	RunStatusComputing  = "computing_kpis"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

// Run is the bookkeeping record for a single ETL execution.
type Run struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	ShiftCount     int       `json:"shift_count"`
	AllowanceCount int       `json:"allowance_count"`
	AwardCount     int       `json:"award_count"`
	BreakCount     int       `json:"break_count"`
}

// RunError records a failure captured during a run.
type RunError struct {
	RunID     string    `json:"run_id"`
	Message   string    `json:"error_message"`
	CreatedAt time.Time `json:"created_at"`
}
