package drivers

import (
	"fmt"
	"sort"
	"time"

	"subscriber-drivers/pkg/models"
	"subscriber-drivers/pkg/stats"
)

// RegimePolicy partage les semaines lissées en régime antérieur et régime postérieur.
type RegimePolicy interface {
	// Split renvoie les indices de chaque régime, ou une raison non vide si la comparaison est impossible.
	Split(share []float64) (earlier, later []int, reason string)
	// Labels nomme les deux régimes dans les métriques ("pre"/"post", "previous"/"recent").
	Labels() (earlier, later string)
}

// ThresholdSplit définit les régimes par la part lissée elle-même :
// sous le seuil → antérieur, au-dessus ou égal → postérieur. Les deux peuvent s'entrelacer.
type ThresholdSplit struct {
	Threshold float64
	MinLater  int
	Regime    string // nom du régime postérieur, utilisé dans la raison
}

func (p ThresholdSplit) Split(share []float64) ([]int, []int, string) {
	var earlier, later []int
	for i, s := range share {
		if s < p.Threshold {
			earlier = append(earlier, i)
		} else {
			later = append(later, i)
		}
	}
	if len(later) < p.MinLater {
		return nil, nil, fmt.Sprintf("No %s regime", p.Regime)
	}
	return earlier, later, ""
}

func (ThresholdSplit) Labels() (string, string) { return "pre", "post" }

// TrailingWindows compare les Window dernières semaines aux Window semaines qui les précèdent.
type TrailingWindows struct {
	Window int
}

func (p TrailingWindows) Split(share []float64) ([]int, []int, string) {
	n := len(share)
	if p.Window < 1 || n < 2*p.Window {
		return nil, nil, models.ReasonInsufficientData
	}
	earlier := make([]int, 0, p.Window)
	later := make([]int, 0, p.Window)
	for i := n - 2*p.Window; i < n-p.Window; i++ {
		earlier = append(earlier, i)
	}
	for i := n - p.Window; i < n; i++ {
		later = append(later, i)
	}
	return earlier, later, ""
}

func (TrailingWindows) Labels() (string, string) { return "previous", "recent" }

// RegimeCheck décrit une détection de déplacement de régime sur un segment.
type RegimeCheck struct {
	Driver      string
	Segment     string
	ShareMetric string // préfixe des métriques de part ("high_share", "value_share")
	Classifier  TierClassifier
	Policy      RegimePolicy
	Config      models.RegimeConfig
}

// DetectRegimeShift filtre le segment, agrège par semaine, lisse, sépare les régimes et
// compare volumes et parts entre régimes.
func DetectRegimeShift(records []models.SubscriptionRecord, check RegimeCheck) models.DriverResult {
	notEvaluated := func(reason string) models.DriverResult {
		return models.NotEvaluated{
			Name:    check.Driver,
			Segment: check.Segment,
			Kind:    models.KindRegimeShift,
			Reason:  reason,
		}
	}

	segment := FilterSegment(records, check.Segment)
	if len(segment) == 0 {
		return notEvaluated(fmt.Sprintf("No %s data", check.Segment))
	}

	cfg := check.Config
	mix := WeeklyMixOf(segment, check.Classifier)
	totals := make([]float64, len(mix))
	shares := make([]float64, len(mix))
	for i, w := range mix {
		totals[i] = w.Total
		shares[i] = w.Tier / w.Total
	}
	addsSum := stats.RollingSum(totals, cfg.SmoothingWindow)
	shareMean := stats.RollingMean(shares, cfg.SmoothingWindow)

	var adds, share []float64
	for i := range mix {
		if !addsSum[i].Valid || !shareMean[i].Valid {
			continue
		}
		adds = append(adds, addsSum[i].Float64)
		share = append(share, shareMean[i].Float64)
	}
	if len(adds) < cfg.MinPoints || len(adds) == 0 {
		return notEvaluated(models.ReasonInsufficientData)
	}

	earlier, later, reason := check.Policy.Split(share)
	if reason != "" {
		return notEvaluated(reason)
	}

	addsEarlier := stats.MeanOf(pick(adds, earlier))
	addsLater := stats.MeanOf(pick(adds, later))
	shareEarlier := stats.MeanOf(pick(share, earlier))
	shareLater := stats.MeanOf(pick(share, later))

	addsRatio := 0.0
	if addsEarlier.Valid && addsEarlier.Float64 > 0 {
		addsRatio = addsLater.Or(0) / addsEarlier.Float64
	}
	shareDelta := models.Null()
	if shareEarlier.Valid && shareLater.Valid {
		shareDelta = models.Some(shareLater.Float64 - shareEarlier.Float64)
	}
	recentCorr := stats.Last(stats.RollingCorr(share, adds, cfg.CorrWindow))

	t := cfg.Thresholds
	detected := shareDelta.AtLeast(t.ShareDelta) &&
		addsRatio >= t.AddsRatio &&
		recentCorr.AtLeast(t.Corr)

	confidence := models.ConfidenceLow
	if detected {
		confidence = models.ConfidenceHigh
	}

	earlierLabel, laterLabel := check.Policy.Labels()
	metrics := models.Metrics{
		"adds_ratio":         models.Some(addsRatio),
		"share_delta":        shareDelta,
		"recent_correlation": recentCorr,
	}
	metrics["avg_adds_"+earlierLabel] = addsEarlier
	metrics["avg_adds_"+laterLabel] = addsLater
	metrics[check.ShareMetric+"_"+earlierLabel] = shareEarlier
	metrics[check.ShareMetric+"_"+laterLabel] = shareLater

	return models.Evaluated{
		Name:       check.Driver,
		Segment:    check.Segment,
		Kind:       models.KindRegimeShift,
		Confirmed:  detected,
		Confidence: confidence,
		Metrics:    metrics,
	}
}

// FilterSegment renvoie une copie des enregistrements du segment demandé.
func FilterSegment(records []models.SubscriptionRecord, segment string) []models.SubscriptionRecord {
	var out []models.SubscriptionRecord
	for _, r := range records {
		if r.Segment == segment {
			out = append(out, r)
		}
	}
	return out
}

// WeeklyMixOf compte par semaine les identifiants uniques, au total et pour le tier suivi.
// Seules les semaines présentes dans les données apparaissent ; un tier absent vaut 0.
func WeeklyMixOf(records []models.SubscriptionRecord, classify TierClassifier) []models.WeeklyMix {
	type bucket struct {
		week  time.Time
		total map[string]struct{}
		tier  map[string]struct{}
	}
	buckets := map[int64]*bucket{}
	for _, r := range records {
		key := r.Week.Unix()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{week: r.Week, total: map[string]struct{}{}, tier: map[string]struct{}{}}
			buckets[key] = b
		}
		b.total[r.RecordID] = struct{}{}
		if classify != nil && classify(r.ProductName) {
			b.tier[r.RecordID] = struct{}{}
		}
	}

	out := make([]models.WeeklyMix, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, models.WeeklyMix{
			Week:  b.week,
			Total: float64(len(b.total)),
			Tier:  float64(len(b.tier)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week.Before(out[j].Week) })
	return out
}

func pick(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
