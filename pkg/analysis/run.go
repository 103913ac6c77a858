// Package analysis orchestre un run complet : chargement, prévision, détection des drivers,
// narration puis export. Chaque collaborateur optionnel peut être absent.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"subscriber-drivers/pkg/database"
	"subscriber-drivers/pkg/drivers"
	"subscriber-drivers/pkg/forecast"
	"subscriber-drivers/pkg/metrics"
	"subscriber-drivers/pkg/models"
	"subscriber-drivers/pkg/narration"
)

// Source fournit les commandes et souscriptions brutes sur une plage [from, to).
type Source interface {
	LoadOrders(ctx context.Context, from, to time.Time) ([]models.OrderRecord, error)
	LoadSubscriptions(ctx context.Context, from, to time.Time) ([]models.SubscriptionRecord, error)
}

// Exporter reçoit les résultats d'un run.
type Exporter interface {
	WriteDrivers(ctx context.Context, runID string, at time.Time, report models.DriverReport) (int, error)
	WriteSubscriptionForecast(ctx context.Context, runID string, rows []forecast.SubscriptionRow) (int, error)
	WriteAddChurnForecast(ctx context.Context, runID string, rows []forecast.AddChurnRow) (int, error)
}

// Deps regroupe les collaborateurs d'un run. Seul Source est obligatoire.
type Deps struct {
	Source        Source
	WeekEnd       time.Weekday
	Subscriptions *forecast.SubscriptionModels
	AddChurn      *forecast.AddChurnModels
	Narrator      narration.Narrator
	Exporter      Exporter
	Metrics       *metrics.Recorder
}

// Forecasts contient les prévisions journalières, absentes si aucun modèle n'est chargé.
type Forecasts struct {
	Subscriptions []forecast.SubscriptionRow `json:"subscriptions,omitempty"`
	AddChurn      []forecast.AddChurnRow     `json:"add_churn,omitempty"`
}

// Narratives contient les textes produits par le narrateur.
type Narratives struct {
	Subscriptions string `json:"subscriptions,omitempty"`
	AddChurn      string `json:"add_churn,omitempty"`
}

// Report est la sortie d'un run complet.
type Report struct {
	RunID       string              `json:"run_id"`
	GeneratedAt time.Time           `json:"generated_at"`
	From        time.Time           `json:"from"`
	To          time.Time           `json:"to"`
	Forecast    Forecasts           `json:"forecast"`
	Drivers     models.DriverReport `json:"drivers"`
	Narration   *Narratives         `json:"narration,omitempty"`
}

// Input est l'entrée de la détection seule : souscriptions brutes et frames hebdomadaires déjà préparées.
type Input struct {
	Subscriptions []models.SubscriptionRecord `json:"subscriptions" validate:"dive"`
	AddChurn      models.AddChurnFrames       `json:"add_churn"`
}

// Detect calcule les deux analyses de drivers ; elle ne fait aucune I/O.
func Detect(in Input, cfg models.DetectionConfig) models.DriverReport {
	return models.DriverReport{
		Subscriptions: drivers.DetectSubscriptionDrivers(in.Subscriptions, cfg),
		AddChurn:      drivers.DetectAddChurnDrivers(in.AddChurn, cfg.Alignment),
	}
}

const stages = 5

// Run exécute load → forecast → detect → narrate → export.
func Run(ctx context.Context, deps Deps, cfg models.Config) (*Report, error) {
	if deps.Source == nil {
		return nil, errors.New("analysis: no data source")
	}
	if cfg.LookbackWeeks < 1 {
		return nil, fmt.Errorf("analysis: lookback_weeks must be positive, got %d", cfg.LookbackWeeks)
	}
	today := cfg.Today
	if today.IsZero() {
		today = time.Now().UTC()
	}

	var bar *progressbar.ProgressBar
	if cfg.Quiet {
		bar = progressbar.DefaultSilent(stages, "analysis")
	} else {
		bar = progressbar.Default(stages, "analysis")
	}
	defer func() { _ = bar.Finish() }()

	report := &Report{RunID: uuid.NewString(), GeneratedAt: time.Now().UTC()}
	log := slog.With("run_id", report.RunID)
	report.From, report.To = database.Range(today, cfg.LookbackWeeks, deps.WeekEnd)

	// LOAD
	start := time.Now()
	var in Input
	orders, err := deps.Source.LoadOrders(ctx, report.From, report.To)
	if err == nil {
		in.Subscriptions, err = deps.Source.LoadSubscriptions(ctx, report.From, report.To)
	}
	deps.Metrics.ObserveStage("load", start, err)
	if err != nil {
		return nil, fmt.Errorf("load %s..%s: %w", database.FormatWeek(report.From), database.FormatWeek(report.To), err)
	}
	in.AddChurn = database.PrepareAddChurnFrames(orders)
	_ = bar.Add(1)
	if cfg.Verbose {
		log.Info("data loaded", "orders", len(orders), "subscriptions", len(in.Subscriptions),
			"from", database.FormatWeek(report.From), "to", database.FormatWeek(report.To))
	}

	// FORECAST
	start = time.Now()
	err = runForecasts(deps, cfg.HorizonDays, today, &report.Forecast)
	deps.Metrics.ObserveStage("forecast", start, err)
	if err != nil {
		return nil, err
	}
	_ = bar.Add(1)

	// DETECT
	start = time.Now()
	report.Drivers = Detect(in, cfg.Detection)
	deps.Metrics.ObserveStage("detect", start, nil)
	deps.Metrics.ObserveReport(report.Drivers)
	_ = bar.Add(1)
	if cfg.Verbose {
		logDrivers(log, report.Drivers)
	}

	// NARRATE : un échec n'interrompt pas le run, le rapport reste exploitable sans texte.
	if deps.Narrator != nil {
		start = time.Now()
		n, err := narrate(ctx, deps.Narrator, report.Drivers)
		deps.Metrics.ObserveStage("narrate", start, err)
		if err != nil {
			log.Warn("narration failed", "err", err)
		}
		if n.Subscriptions != "" || n.AddChurn != "" {
			report.Narration = &n
		}
	}
	_ = bar.Add(1)

	// EXPORT
	if deps.Exporter != nil {
		start = time.Now()
		err := export(ctx, deps.Exporter, report)
		deps.Metrics.ObserveStage("export", start, err)
		if err != nil {
			return nil, err
		}
	}
	_ = bar.Add(1)

	return report, nil
}

func runForecasts(deps Deps, horizon int, today time.Time, out *Forecasts) error {
	var err error
	if deps.Subscriptions != nil {
		if out.Subscriptions, err = deps.Subscriptions.Run(horizon, today); err != nil {
			return fmt.Errorf("subscription forecast: %w", err)
		}
	}
	if deps.AddChurn != nil {
		if out.AddChurn, err = deps.AddChurn.Run(horizon, today); err != nil {
			return fmt.Errorf("add/churn forecast: %w", err)
		}
	}
	return nil
}

func narrate(ctx context.Context, n narration.Narrator, r models.DriverReport) (Narratives, error) {
	var out Narratives
	var errs []error
	text, err := n.NarrateSubscriptions(ctx, r.Subscriptions)
	if err != nil {
		errs = append(errs, fmt.Errorf("subscriptions: %w", err))
	}
	out.Subscriptions = text
	text, err = n.NarrateAddChurn(ctx, r.AddChurn)
	if err != nil {
		errs = append(errs, fmt.Errorf("add/churn: %w", err))
	}
	out.AddChurn = text
	return out, errors.Join(errs...)
}

func export(ctx context.Context, e Exporter, r *Report) error {
	n, err := e.WriteDrivers(ctx, r.RunID, r.GeneratedAt, r.Drivers)
	if err != nil {
		return fmt.Errorf("export drivers: %w", err)
	}
	written := n
	if n, err = e.WriteSubscriptionForecast(ctx, r.RunID, r.Forecast.Subscriptions); err != nil {
		return fmt.Errorf("export subscription forecast: %w", err)
	}
	written += n
	if n, err = e.WriteAddChurnForecast(ctx, r.RunID, r.Forecast.AddChurn); err != nil {
		return fmt.Errorf("export add/churn forecast: %w", err)
	}
	written += n
	slog.Debug("export done", "run_id", r.RunID, "points", written)
	return nil
}

func logDrivers(log *slog.Logger, r models.DriverReport) {
	line := func(segment, check string, res models.DriverResult) {
		attrs := []any{"segment", segment, "check", check, "driver", res.DriverName(),
			"detected", res.Detected(), "confidence", res.ConfidenceLevel()}
		if ne, ok := res.(models.NotEvaluated); ok {
			attrs = append(attrs, "reason", ne.Reason)
		}
		log.Info("driver", attrs...)
	}
	r.Subscriptions.Analysis.Each(line)
	r.AddChurn.Analysis.Each(line)
}
