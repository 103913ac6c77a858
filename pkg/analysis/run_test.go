package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"subscriber-drivers/pkg/forecast"
	"subscriber-drivers/pkg/metrics"
	"subscriber-drivers/pkg/models"
)

type fakeSource struct {
	orders    []models.OrderRecord
	subs      []models.SubscriptionRecord
	err       error
	from, to  time.Time
	callCount int
}

func (f *fakeSource) LoadOrders(_ context.Context, from, to time.Time) ([]models.OrderRecord, error) {
	f.from, f.to = from, to
	f.callCount++
	return f.orders, f.err
}

func (f *fakeSource) LoadSubscriptions(context.Context, time.Time, time.Time) ([]models.SubscriptionRecord, error) {
	f.callCount++
	return f.subs, nil
}

type fakeNarrator struct{ err error }

func (f fakeNarrator) NarrateSubscriptions(context.Context, models.SubscriptionReport) (string, error) {
	return "subs text", nil
}

func (f fakeNarrator) NarrateAddChurn(context.Context, models.AddChurnReport) (string, error) {
	return "", f.err
}

type fakeExporter struct {
	drivers, subs, addChurn int
	err                     error
}

func (f *fakeExporter) WriteDrivers(_ context.Context, _ string, _ time.Time, r models.DriverReport) (int, error) {
	f.drivers++
	return 1, f.err
}

func (f *fakeExporter) WriteSubscriptionForecast(_ context.Context, _ string, rows []forecast.SubscriptionRow) (int, error) {
	f.subs = len(rows)
	return len(rows), nil
}

func (f *fakeExporter) WriteAddChurnForecast(_ context.Context, _ string, rows []forecast.AddChurnRow) (int, error) {
	f.addChurn = len(rows)
	return len(rows), nil
}

type flat float64

func (v flat) Forecast(steps int) ([]float64, error) {
	out := make([]float64, steps)
	for i := range out {
		out[i] = float64(v)
	}
	return out, nil
}

// premiumSubscriptions : 20 semaines prépayées, 40 adds à 5% premium puis 60 adds à 25% à partir de la semaine d'indice 14.
func premiumSubscriptions(start time.Time) []models.SubscriptionRecord {
	var out []models.SubscriptionRecord
	for w := 0; w < 20; w++ {
		total, high := 40, 2
		if w >= 14 {
			total, high = 60, 15
		}
		week := start.AddDate(0, 0, 7*w)
		for i := 0; i < total; i++ {
			product := "Basic 5GB"
			if i < high {
				product = "Unlimited Plus"
			}
			out = append(out, models.SubscriptionRecord{
				Week:        week,
				RecordID:    fmt.Sprintf("w%d-%d", w, i),
				ProductName: product,
				Segment:     "prepaid",
			})
		}
	}
	return out
}

func testConfig() models.Config {
	return models.Config{
		Detection:     models.DefaultDetectionConfig(),
		HorizonDays:   7,
		Today:         time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC),
		LookbackWeeks: 26,
		Quiet:         true,
	}
}

func TestRun_FullPipeline(t *testing.T) {
	src := &fakeSource{subs: premiumSubscriptions(time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC))}
	last := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	exp := &fakeExporter{}
	deps := Deps{
		Source:        src,
		WeekEnd:       time.Monday,
		Subscriptions: &forecast.SubscriptionModels{Prepaid: flat(10), Postpaid: flat(5), LastTrainDate: last},
		Narrator:      fakeNarrator{err: errors.New("quota")},
		Exporter:      exp,
		Metrics:       metrics.NewRecorder(),
	}

	report, err := Run(context.Background(), deps, testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.RunID == "" {
		t.Fatal("expected a run id")
	}
	if !src.to.Equal(time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)) || !src.from.Equal(src.to.AddDate(0, 0, -7*26)) {
		t.Fatalf("unexpected range: %v..%v", src.from, src.to)
	}
	if got := len(report.Forecast.Subscriptions); got != 7 {
		t.Fatalf("got %d forecast rows, want 7", got)
	}
	if !report.Forecast.Subscriptions[0].Date.Equal(time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first forecast day = %v", report.Forecast.Subscriptions[0].Date)
	}
	if report.Forecast.AddChurn != nil {
		t.Fatal("add/churn forecast should be absent without models")
	}

	prepaid := report.Drivers.Subscriptions.Analysis.Prepaid
	if !prepaid.Detected() || prepaid.ConfidenceLevel() != models.ConfidenceHigh {
		t.Fatalf("expected premium shift detected with high confidence, got %+v", prepaid)
	}
	if _, ok := report.Drivers.Subscriptions.Analysis.Postpaid.(models.NotEvaluated); !ok {
		t.Fatal("postpaid has no data and should not be evaluated")
	}
	if report.Drivers.AddChurn.Analysis.Prepaid.Churn.DriverName() != "no_structural_driver_detected" {
		t.Fatal("prepaid churn should carry the stub")
	}

	// la narration partielle est conservée malgré l'échec de l'autre appel
	if report.Narration == nil || report.Narration.Subscriptions != "subs text" || report.Narration.AddChurn != "" {
		t.Fatalf("unexpected narration: %+v", report.Narration)
	}
	if exp.drivers != 1 || exp.subs != 7 || exp.addChurn != 0 {
		t.Fatalf("unexpected exports: %+v", exp)
	}
}

func TestRun_SourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	_, err := Run(context.Background(), Deps{Source: src, WeekEnd: time.Monday}, testConfig())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if src.callCount != 1 {
		t.Fatalf("subscriptions should not be loaded after an order failure, calls=%d", src.callCount)
	}
}

func TestRun_ExportErrorIsFatal(t *testing.T) {
	deps := Deps{Source: &fakeSource{}, WeekEnd: time.Monday, Exporter: &fakeExporter{err: errors.New("unauthorized")}}
	if _, err := Run(context.Background(), deps, testConfig()); err == nil {
		t.Fatal("expected export error")
	}
}

func TestRun_RequiresSourceAndLookback(t *testing.T) {
	if _, err := Run(context.Background(), Deps{}, testConfig()); err == nil {
		t.Fatal("expected error without source")
	}
	cfg := testConfig()
	cfg.LookbackWeeks = 0
	if _, err := Run(context.Background(), Deps{Source: &fakeSource{}}, cfg); err == nil {
		t.Fatal("expected error with zero lookback")
	}
}

func TestDetect_EmptyInput(t *testing.T) {
	r := Detect(Input{}, models.DefaultDetectionConfig())
	r.AddChurn.Analysis.Each(func(segment, check string, res models.DriverResult) {
		if res.Detected() {
			t.Fatalf("%s/%s detected on empty input", segment, check)
		}
	})
	ne, ok := r.Subscriptions.Analysis.Prepaid.(models.NotEvaluated)
	if !ok || ne.Reason != "No prepaid data" {
		t.Fatalf("unexpected prepaid result: %+v", r.Subscriptions.Analysis.Prepaid)
	}
}
