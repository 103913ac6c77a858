package forecast

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sequence []float64

func (s sequence) Forecast(steps int) ([]float64, error) {
	if steps > len(s) {
		return s, nil
	}
	return s[:steps], nil
}

type ramp struct{ start float64 }

func (r ramp) Forecast(steps int) ([]float64, error) {
	out := make([]float64, steps)
	for i := range out {
		out[i] = r.start + float64(i)
	}
	return out, nil
}

type failing struct{}

func (failing) Forecast(int) ([]float64, error) { return nil, errors.New("model exploded") }

func TestARModel_AR1(t *testing.T) {
	m := ARModel{Intercept: 10, AR: []float64{0.5}, History: []float64{14}}
	got, err := m.Forecast(3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{12, 11, 10.5}, got, 1e-12)
}

func TestARModel_Differenced(t *testing.T) {
	// constant drift of +2 per day
	m := ARModel{Intercept: 2, Diff: 1, History: []float64{10, 12, 14}}
	got, err := m.Forecast(3)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{16, 18, 20}, got, 1e-12)
}

func TestARModel_NonNegative(t *testing.T) {
	m := ARModel{Intercept: -5, NonNegative: true, History: []float64{1}}
	got, err := m.Forecast(2)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, got)
}

func TestARModel_Errors(t *testing.T) {
	_, err := ARModel{}.Forecast(0)
	assert.Error(t, err)
	_, err = ARModel{AR: []float64{0.1, 0.2}, History: []float64{1}}.Forecast(1)
	assert.Error(t, err)
	_, err = ARModel{Diff: 2, History: []float64{1, 2, 3}}.Forecast(1)
	assert.Error(t, err)
}

func TestStepsNeeded(t *testing.T) {
	last := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 14, StepsNeeded(last, last, 14))
	assert.Equal(t, 19, StepsNeeded(last, time.Date(2026, 2, 4, 15, 0, 0, 0, time.UTC), 14))
	// today before the training cut-off never shortens the horizon
	assert.Equal(t, 14, StepsNeeded(last, last.AddDate(0, 0, -3), 14))
}

func TestSubscriptionModels_BridgesGap(t *testing.T) {
	last := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)
	m := SubscriptionModels{Prepaid: ramp{100}, Postpaid: ramp{10}, LastTrainDate: last}

	rows, err := m.Run(3, last.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// 8 steps forecast, last 3 kept: indices 5, 6, 7
	assert.Equal(t, last.AddDate(0, 0, 6), rows[0].Date)
	assert.Equal(t, 105.0, rows[0].Prepaid)
	assert.Equal(t, 15.0, rows[0].Postpaid)
	assert.Equal(t, 120.0, rows[0].Total)
	assert.Equal(t, last.AddDate(0, 0, 8), rows[2].Date)
}

func TestAddChurnModels_Run(t *testing.T) {
	last := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)
	m := AddChurnModels{
		PrepaidAdds:   ramp{1},
		PrepaidChurn:  ramp{2},
		PostpaidAdds:  ramp{3},
		PostpaidChurn: ramp{4},
		LastTrainDate: last,
	}
	rows, err := m.Run(2, last)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, AddChurnRow{Date: last.AddDate(0, 0, 1), PrepaidAdds: 1, PrepaidChurn: 2, PostpaidAdds: 3, PostpaidChurn: 4}, rows[0])
}

func TestRun_PropagatesModelFailures(t *testing.T) {
	last := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)
	_, err := SubscriptionModels{Prepaid: failing{}, Postpaid: ramp{1}, LastTrainDate: last}.Run(2, last)
	assert.ErrorContains(t, err, "model exploded")

	_, err = SubscriptionModels{Prepaid: sequence{1}, Postpaid: ramp{1}, LastTrainDate: last}.Run(2, last)
	assert.ErrorIs(t, err, ErrShortForecast)

	_, err = SubscriptionModels{Prepaid: ramp{1}, LastTrainDate: last}.Run(2, last)
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestLoadAddChurnModels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "add_churn.yaml")
	payload := `
last_train_date: "2026-01-30"
models:
  prepaid_adds_model: {intercept: 50, history: [50]}
  prepaid_churn_model: {intercept: 20, history: [20]}
  postpaid_adds_model: {intercept: 80, ar: [0.3], history: [80]}
  postpaid_churn_model: {intercept: 30, history: [30]}
`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))

	m, err := LoadAddChurnModels(path)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC), m.LastTrainDate)

	rows, err := m.Run(1, m.LastTrainDate)
	require.NoError(t, err)
	assert.InDelta(t, 80, rows[0].PostpaidAdds, 1e-12)
}

func TestLoadSubscriptionModels_MissingModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subs.yaml")
	require.NoError(t, os.WriteFile(path, []byte("last_train_date: \"2026-01-30\"\nmodels:\n  prepaid_model: {history: [1]}\n"), 0644))

	_, err := LoadSubscriptionModels(path)
	assert.ErrorIs(t, err, ErrUnknownModel)
}
