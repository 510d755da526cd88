package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shift-etl/internal/model"
	"shift-etl/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testDataset() *model.Dataset {
	date := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	return &model.Dataset{
		Shifts: []model.Shift{
			{ID: "s1", Date: date, Start: date.Add(9 * time.Hour), Finish: date.Add(17 * time.Hour), Cost: 15},
			{ID: "s2", Date: date.AddDate(0, 0, 1), Start: date.Add(33 * time.Hour), Finish: date.Add(41 * time.Hour), Cost: 0},
		},
		Allowances: []model.Allowance{
			{ID: "a1", ShiftID: "s1", Value: 1, Cost: 15},
		},
		AwardInterpretations: []model.AwardInterpretation{
			{ID: "aw1", ShiftID: "s2", Date: date, Units: 2, Cost: 0},
		},
		Breaks: []model.Break{
			{ID: "b1", ShiftID: "s1", Start: date.Add(12 * time.Hour), Finish: date.Add(12*time.Hour + 30*time.Minute), Paid: true},
			{ID: "b2", ShiftID: "s2", Start: date.Add(36 * time.Hour), Finish: date.Add(37 * time.Hour), Paid: false},
		},
	}
}

func testKPIs(date time.Time) []model.KPI {
	return []model.KPI{
		{Name: "mean_shift_cost", Value: 7.5, Date: date},
		{Name: "total_number_of_paid_breaks", Value: 1.0, Date: date},
	}
}

func TestSaveDataset_AppendsAllRows(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveDataset(testDataset()))

	shifts, allowances, awards, breaks, kpis, err := s.EntityCounts()
	require.NoError(t, err)
	assert.Equal(t, 2, shifts)
	assert.Equal(t, 1, allowances)
	assert.Equal(t, 1, awards)
	assert.Equal(t, 2, breaks)
	assert.Equal(t, 0, kpis)
}

func TestSaveDataset_DuplicateRunWithoutResetFails(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveDataset(testDataset()))
	err := s.SaveDataset(testDataset())

	require.Error(t, err, "append-only semantics: same IDs cannot be written twice")
	assert.Contains(t, err.Error(), "inserting shifts")
}

func TestReset_ClearsEntitiesAndKPIs(t *testing.T) {
	s := newTestStore(t)
	date := time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveDataset(testDataset()))
	require.NoError(t, s.SaveKPIs(testKPIs(date)))
	require.NoError(t, s.Reset())

	shifts, allowances, awards, breaks, kpis, err := s.EntityCounts()
	require.NoError(t, err)
	assert.Zero(t, shifts)
	assert.Zero(t, allowances, "child rows cleared through the shifts cascade")
	assert.Zero(t, awards)
	assert.Zero(t, breaks)
	assert.Zero(t, kpis, "stale KPIs must never linger after a reset")
}

func TestResetThenReload_IsIdempotent(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 2; i++ {
		require.NoError(t, s.Reset())
		require.NoError(t, s.SaveDataset(testDataset()))
	}

	shifts, allowances, awards, breaks, _, err := s.EntityCounts()
	require.NoError(t, err)
	assert.Equal(t, 2, shifts)
	assert.Equal(t, 1, allowances)
	assert.Equal(t, 1, awards)
	assert.Equal(t, 2, breaks)
}

func TestSaveKPIs_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	date := time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveKPIs(testKPIs(date)))

	kpis, err := s.LatestKPIs()
	require.NoError(t, err)
	require.Len(t, kpis, 2)

	byName := map[string]model.KPI{}
	for _, k := range kpis {
		byName[k.Name] = k
	}
	assert.Equal(t, 7.5, byName["mean_shift_cost"].Value)
	assert.Equal(t, 1.0, byName["total_number_of_paid_breaks"].Value)
	assert.True(t, byName["mean_shift_cost"].Date.Equal(date))
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveRun("run-1"))
	require.NoError(t, s.UpdateRunStatus("run-1", model.RunStatusFetching))
	require.NoError(t, s.UpdateRunCounts("run-1", testDataset()))
	require.NoError(t, s.UpdateRunStatus("run-1", model.RunStatusCompleted))

	run, err := s.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusCompleted, run.Status)
	assert.Equal(t, 2, run.ShiftCount)
	assert.Equal(t, 1, run.AllowanceCount)
	assert.Equal(t, 1, run.AwardCount)
	assert.Equal(t, 2, run.BreakCount)

	runs, err := s.ListRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestSaveRunError_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveRun("run-1"))
	require.NoError(t, s.SaveRunError("run-1", assert.AnError))

	errs, err := s.GetRunErrors("run-1")
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, assert.AnError.Error(), errs[0].Message)
}
