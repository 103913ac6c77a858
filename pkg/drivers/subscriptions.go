package drivers

import (
	"subscriber-drivers/pkg/models"
)

const (
	SegmentPrepaid  = "prepaid"
	SegmentPostpaid = "postpaid"
)

// PremiumShiftCheck : bascule du prepaid vers les offres premium (illimité ou > 50 GB),
// régimes définis par un seuil sur la part premium lissée.
func PremiumShiftCheck(cfg models.PremiumConfig) RegimeCheck {
	return RegimeCheck{
		Driver:      "premium_shift",
		Segment:     SegmentPrepaid,
		ShareMetric: "high_share",
		Classifier:  IsHighTier,
		Policy: ThresholdSplit{
			Threshold: cfg.RegimeThreshold,
			MinLater:  cfg.MinRegimeWeeks,
			Regime:    "premium",
		},
		Config: cfg.RegimeConfig,
	}
}

// ValueMixShiftCheck : glissement du postpaid vers les offres value,
// 8 semaines récentes comparées aux 8 précédentes.
func ValueMixShiftCheck(cfg models.ValueMixConfig) RegimeCheck {
	return RegimeCheck{
		Driver:      "value_mix_shift",
		Segment:     SegmentPostpaid,
		ShareMetric: "value_share",
		Classifier:  IsValueTier,
		Policy:      TrailingWindows{Window: cfg.Window},
		Config:      cfg.RegimeConfig,
	}
}

// DetectSubscriptionDrivers exécute les deux détections de mix sur la table maître.
func DetectSubscriptionDrivers(records []models.SubscriptionRecord, cfg models.DetectionConfig) models.SubscriptionReport {
	return models.SubscriptionReport{
		Analysis: models.SubscriptionAnalysis{
			Prepaid:  DetectRegimeShift(records, PremiumShiftCheck(cfg.Premium)),
			Postpaid: DetectRegimeShift(records, ValueMixShiftCheck(cfg.ValueMix)),
		},
	}
}
