package drivers

import (
	"subscriber-drivers/pkg/models"
	"subscriber-drivers/pkg/stats"
)

// DetectAlignment construit le spine puis classe la relation driver ~ cible.
func DetectAlignment(driver string, rows []models.WeeklyRow, cfg models.AlignmentConfig) models.DriverResult {
	spine, ok := BuildSpine(rows, cfg)
	if !ok {
		return models.NotEvaluated{
			Name:   driver,
			Kind:   models.KindAlignment,
			Reason: models.ReasonInsufficientData,
		}
	}
	return SummarizeAlignment(driver, spine, cfg)
}

// SummarizeAlignment résume un spine sur la fenêtre récente (CorrWindow dernières semaines).
func SummarizeAlignment(driver string, spine models.Spine, cfg models.AlignmentConfig) models.Evaluated {
	cols := columnsOf(spine)
	recent := cfg.CorrWindow

	corrLatest := stats.Last(cols.corr)
	corrRecent := stats.Mean(stats.Tail(cols.corr, recent))
	shareLatest := stats.Last(cols.share)
	shareRecent := stats.Mean(stats.Tail(cols.share, recent))
	targetLevel := stats.MeanOf(stats.Tail(cols.targetSum, recent))
	driverLevel := stats.MeanOf(stats.Tail(cols.driverSum, recent))

	score := AlignmentScore(corrRecent, shareRecent, cfg)

	// les trois portes sont exigées indépendamment
	aligned := corrRecent.AtLeast(cfg.CorrAligned) &&
		shareRecent.AtLeast(cfg.ShareMin) &&
		score >= cfg.ScoreAligned

	confidence := models.ConfidenceLow
	switch {
	case aligned && score >= cfg.ScoreHigh:
		confidence = models.ConfidenceHigh
	case aligned:
		confidence = models.ConfidenceMedium
	}

	return models.Evaluated{
		Name:       driver,
		Kind:       models.KindAlignment,
		Confirmed:  aligned,
		Confidence: confidence,
		Metrics: models.Metrics{
			"corr_latest":         corrLatest,
			"corr_recent_avg":     corrRecent,
			"share_latest":        shareLatest,
			"share_recent_avg":    shareRecent,
			"alignment_score":     models.Some(score),
			"target_level_recent": targetLevel,
			"driver_level_recent": driverLevel,
		},
	}
}

// AlignmentScore est un score borné dans [0, 1] :
// la corrélation est ramenée de [-1, 1] vers [0, 1], la part est plafonnée à 1.
// Une composante indéfinie vaut 0.
func AlignmentScore(corr, share models.NullFloat, cfg models.AlignmentConfig) float64 {
	corrComponent := 0.0
	if corr.Valid {
		corrComponent = stats.Clamp((corr.Float64+1)/2, 0, 1)
	}
	shareComponent := 0.0
	if share.Valid {
		shareComponent = stats.Clamp(share.Float64, 0, 1)
	}
	return cfg.CorrWeight*corrComponent + cfg.ShareWeight*shareComponent
}
