package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"subscriber-drivers/pkg/models"
)

func report() models.DriverReport {
	aligned := models.Evaluated{
		Name: "retail_add_growth", Kind: models.KindAlignment, Confirmed: true, Confidence: models.ConfidenceHigh,
		Metrics: models.Metrics{"alignment_score": models.Some(0.91)},
	}
	stub := models.Evaluated{Name: "no_structural_driver_detected", Kind: models.KindAlignment, Confidence: models.ConfidenceLow, Metrics: models.Metrics{}}
	missing := models.NotEvaluated{Name: "premium_shift", Segment: "prepaid", Kind: models.KindRegimeShift, Reason: "No prepaid data"}
	flat := models.Evaluated{Name: "value_mix_shift", Segment: "postpaid", Kind: models.KindRegimeShift, Confidence: models.ConfidenceLow, Metrics: models.Metrics{}}

	var r models.DriverReport
	r.AddChurn.Analysis.Postpaid = models.SegmentChecks{Adds: aligned, Churn: stub}
	r.AddChurn.Analysis.Prepaid = models.SegmentChecks{Adds: stub, Churn: stub}
	r.Subscriptions.Analysis = models.SubscriptionAnalysis{Prepaid: missing, Postpaid: flat}
	return r
}

func TestObserveReport(t *testing.T) {
	rec := NewRecorder()
	rec.ObserveReport(report())

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.detections.WithLabelValues("postpaid", "retail_add_growth", "detected", "high")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.detections.WithLabelValues("prepaid", "no_structural_driver_detected", "not_detected", "low")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.detections.WithLabelValues("prepaid", "premium_shift", "not_evaluated", "low")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.detections.WithLabelValues("postpaid", "value_mix_shift", "not_detected", "low")))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.scores))
}

func TestObserveStage(t *testing.T) {
	rec := NewRecorder()
	rec.ObserveStage("detect", time.Now(), nil)
	rec.ObserveStage("detect", time.Now(), errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runs.WithLabelValues("detect", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runs.WithLabelValues("detect", "error")))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var rec *Recorder
	rec.ObserveReport(report())
	rec.ObserveStage("detect", time.Now(), nil)
}
