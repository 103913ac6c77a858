// Package metrics expose les compteurs Prometheus des runs de détection.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"subscriber-drivers/pkg/models"
)

const namespace = "subscriber_drivers"

// Recorder regroupe les collecteurs enregistrés sur un registre donné.
type Recorder struct {
	Registry *prometheus.Registry

	detections *prometheus.CounterVec
	scores     *prometheus.HistogramVec
	runs       *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewRecorder enregistre les collecteurs sur un registre neuf.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		Registry: reg,
		// Labels: segment, driver, outcome (detected, not_detected, not_evaluated), confidence
		detections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detection",
			Name:      "results_total",
			Help:      "Driver check results by outcome",
		}, []string{"segment", "driver", "outcome", "confidence"}),
		scores: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "detection",
			Name:      "alignment_score",
			Help:      "Distribution of alignment scores",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.65, 0.7, 0.8, 0.9, 1.0},
		}, []string{"segment", "driver"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Analysis runs by stage and status",
		}, []string{"stage", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each analysis stage",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
}

// ObserveReport compte chaque résultat de driver du rapport. Un rapport partiel est accepté.
func (r *Recorder) ObserveReport(report models.DriverReport) {
	if r == nil {
		return
	}
	observe := func(segment, _ string, res models.DriverResult) {
		if res == nil {
			return
		}
		outcome := "not_detected"
		switch v := res.(type) {
		case models.NotEvaluated:
			outcome = "not_evaluated"
		case models.Evaluated:
			if v.Confirmed {
				outcome = "detected"
			}
			if s, ok := v.Metrics.Float("alignment_score"); ok {
				r.scores.WithLabelValues(segment, v.Name).Observe(s)
			}
		}
		r.detections.WithLabelValues(segment, res.DriverName(), outcome, string(res.ConfidenceLevel())).Inc()
	}
	report.Subscriptions.Analysis.Each(observe)
	report.AddChurn.Analysis.Each(observe)
}

// ObserveStage enregistre la durée et le statut d'une étape.
func (r *Recorder) ObserveStage(stage string, start time.Time, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.runs.WithLabelValues(stage, status).Inc()
	r.duration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
