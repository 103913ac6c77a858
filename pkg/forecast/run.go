package forecast

import (
	"errors"
	"fmt"
	"time"
)

// SubscriptionRow is one forecast day for subscription adds.
type SubscriptionRow struct {
	Date     time.Time `json:"date"`
	Prepaid  float64   `json:"prepaid_forecast"`
	Postpaid float64   `json:"postpaid_forecast"`
	Total    float64   `json:"total_forecast"`
}

// AddChurnRow is one forecast day for adds and churn per segment.
type AddChurnRow struct {
	Date          time.Time `json:"date"`
	PrepaidAdds   float64   `json:"prepaid_adds_forecast"`
	PrepaidChurn  float64   `json:"prepaid_churn_forecast"`
	PostpaidAdds  float64   `json:"postpaid_adds_forecast"`
	PostpaidChurn float64   `json:"postpaid_churn_forecast"`
}

// SubscriptionModels pairs the prepaid and postpaid subscription models.
type SubscriptionModels struct {
	Prepaid       Forecaster
	Postpaid      Forecaster
	LastTrainDate time.Time
}

// AddChurnModels holds the four add/churn models.
type AddChurnModels struct {
	PrepaidAdds   Forecaster
	PrepaidChurn  Forecaster
	PostpaidAdds  Forecaster
	PostpaidChurn Forecaster
	LastTrainDate time.Time
}

// LoadSubscriptionModels reads a payload carrying prepaid_model and postpaid_model.
func LoadSubscriptionModels(path string) (SubscriptionModels, error) {
	p, err := LoadPayload(path)
	if err != nil {
		return SubscriptionModels{}, err
	}
	var m SubscriptionModels
	if m.LastTrainDate, err = p.TrainedThrough(); err != nil {
		return SubscriptionModels{}, err
	}
	if m.Prepaid, err = p.Model("prepaid_model"); err != nil {
		return SubscriptionModels{}, err
	}
	if m.Postpaid, err = p.Model("postpaid_model"); err != nil {
		return SubscriptionModels{}, err
	}
	return m, nil
}

// LoadAddChurnModels reads a payload carrying the four add/churn models.
func LoadAddChurnModels(path string) (AddChurnModels, error) {
	p, err := LoadPayload(path)
	if err != nil {
		return AddChurnModels{}, err
	}
	var m AddChurnModels
	if m.LastTrainDate, err = p.TrainedThrough(); err != nil {
		return AddChurnModels{}, err
	}
	for name, dst := range map[string]*Forecaster{
		"prepaid_adds_model":   &m.PrepaidAdds,
		"prepaid_churn_model":  &m.PrepaidChurn,
		"postpaid_adds_model":  &m.PostpaidAdds,
		"postpaid_churn_model": &m.PostpaidChurn,
	} {
		if *dst, err = p.Model(name); err != nil {
			return AddChurnModels{}, err
		}
	}
	return m, nil
}

// StepsNeeded bridges the gap between the last training date and today:
// the models must first forecast the days already elapsed, then the horizon.
func StepsNeeded(lastTrain, today time.Time, horizon int) int {
	day := func(t time.Time) time.Time {
		t = t.UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	gap := int(day(today).Sub(day(lastTrain)).Hours() / 24)
	if gap < 0 {
		gap = 0
	}
	return gap + horizon
}

// Run forecasts horizon days past today and keeps only those days.
func (m SubscriptionModels) Run(horizon int, today time.Time) ([]SubscriptionRow, error) {
	if horizon < 1 {
		return nil, errors.New("horizon must be at least 1 day")
	}
	steps := StepsNeeded(m.LastTrainDate, today, horizon)
	prepaid, err := run(m.Prepaid, "prepaid", steps)
	if err != nil {
		return nil, err
	}
	postpaid, err := run(m.Postpaid, "postpaid", steps)
	if err != nil {
		return nil, err
	}

	rows := make([]SubscriptionRow, 0, horizon)
	for i := steps - horizon; i < steps; i++ {
		rows = append(rows, SubscriptionRow{
			Date:     m.LastTrainDate.AddDate(0, 0, i+1),
			Prepaid:  prepaid[i],
			Postpaid: postpaid[i],
			Total:    prepaid[i] + postpaid[i],
		})
	}
	return rows, nil
}

// Run forecasts horizon days past today for the four series.
func (m AddChurnModels) Run(horizon int, today time.Time) ([]AddChurnRow, error) {
	if horizon < 1 {
		return nil, errors.New("horizon must be at least 1 day")
	}
	steps := StepsNeeded(m.LastTrainDate, today, horizon)

	series := make([][]float64, 4)
	for i, f := range []struct {
		name string
		m    Forecaster
	}{
		{"prepaid_adds", m.PrepaidAdds},
		{"prepaid_churn", m.PrepaidChurn},
		{"postpaid_adds", m.PostpaidAdds},
		{"postpaid_churn", m.PostpaidChurn},
	} {
		values, err := run(f.m, f.name, steps)
		if err != nil {
			return nil, err
		}
		series[i] = values
	}

	rows := make([]AddChurnRow, 0, horizon)
	for i := steps - horizon; i < steps; i++ {
		rows = append(rows, AddChurnRow{
			Date:          m.LastTrainDate.AddDate(0, 0, i+1),
			PrepaidAdds:   series[0][i],
			PrepaidChurn:  series[1][i],
			PostpaidAdds:  series[2][i],
			PostpaidChurn: series[3][i],
		})
	}
	return rows, nil
}

func run(f Forecaster, name string, steps int) ([]float64, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	values, err := f.Forecast(steps)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", name, err)
	}
	if len(values) < steps {
		return nil, fmt.Errorf("forecast %s: %w (%d < %d)", name, ErrShortForecast, len(values), steps)
	}
	return values, nil
}
