// Package forecast wraps the pretrained volume models consumed as black boxes:
// each model maps a step count to a sequence of daily values. Models are
// loaded once from a YAML payload and injected into the analysis run.
package forecast

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownModel is returned when a payload does not carry a requested model.
	ErrUnknownModel = errors.New("unknown model")
	// ErrShortForecast is returned when a model yields fewer values than requested.
	ErrShortForecast = errors.New("forecast shorter than requested")
)

// Forecaster produces steps future values.
type Forecaster interface {
	Forecast(steps int) ([]float64, error)
}

// ARModel is a fitted autoregressive model with optional first differencing.
// History holds the last observations on the original scale, oldest first.
type ARModel struct {
	Intercept   float64   `yaml:"intercept"`
	AR          []float64 `yaml:"ar"`
	Diff        int       `yaml:"diff"`
	History     []float64 `yaml:"history"`
	NonNegative bool      `yaml:"non_negative"`
}

// Forecast runs the AR recursion forward, then integrates back when the model was differenced.
func (m ARModel) Forecast(steps int) ([]float64, error) {
	if steps < 1 {
		return nil, errors.New("steps must be at least 1")
	}
	if m.Diff < 0 || m.Diff > 1 {
		return nil, fmt.Errorf("unsupported differencing order %d", m.Diff)
	}
	if len(m.History) < len(m.AR)+m.Diff {
		return nil, fmt.Errorf("history has %d points, need %d", len(m.History), len(m.AR)+m.Diff)
	}

	y := m.History
	if m.Diff == 1 {
		y = make([]float64, len(m.History)-1)
		for i := 1; i < len(m.History); i++ {
			y[i-1] = m.History[i] - m.History[i-1]
		}
	}

	n := len(y)
	ext := make([]float64, n+steps)
	copy(ext, y)
	for h := 0; h < steps; h++ {
		t := n + h
		pred := m.Intercept
		for i := 0; i < len(m.AR) && t-i-1 >= 0; i++ {
			pred += m.AR[i] * (ext[t-i-1] - m.Intercept)
		}
		ext[t] = pred
	}
	out := make([]float64, steps)
	copy(out, ext[n:])

	if m.Diff == 1 {
		last := m.History[len(m.History)-1]
		for i := range out {
			last += out[i]
			out[i] = last
		}
	}
	if m.NonNegative {
		for i, v := range out {
			if v < 0 {
				out[i] = 0
			}
		}
	}
	return out, nil
}

// Payload is the on-disk form of a set of models trained together.
type Payload struct {
	LastTrainDate string             `yaml:"last_train_date"`
	Models        map[string]ARModel `yaml:"models"`
}

// LoadPayload reads a YAML model payload.
func LoadPayload(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model payload: %w", err)
	}
	var p Payload
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse model payload %s: %w", path, err)
	}
	return &p, nil
}

// TrainedThrough parses the last training date.
func (p *Payload) TrainedThrough() (time.Time, error) {
	t, err := time.Parse("2006-01-02", p.LastTrainDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("last_train_date: %w", err)
	}
	return t, nil
}

// Model returns the named model.
func (p *Payload) Model(name string) (Forecaster, error) {
	m, ok := p.Models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, name)
	}
	return m, nil
}
