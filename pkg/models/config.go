package models

import "time"

/*
CONFIG → paramètres de détection (fenêtres, planchers, seuils), surchargeables pour les tests.
*/

// AlignmentConfig paramètre le moteur d'alignement (retail, competitive, port-in).
type AlignmentConfig struct {
	SmoothingWindow int     `yaml:"smoothing_window" json:"smoothing_window" validate:"gte=1"`
	CorrWindow      int     `yaml:"corr_window" json:"corr_window" validate:"gte=2"`
	MinPoints       int     `yaml:"min_points" json:"min_points" validate:"gte=1"`
	CorrWeight      float64 `yaml:"corr_weight" json:"corr_weight" validate:"gte=0,lte=1"`
	ShareWeight     float64 `yaml:"share_weight" json:"share_weight" validate:"gte=0,lte=1"`
	CorrAligned     float64 `yaml:"corr_aligned" json:"corr_aligned" validate:"gte=-1,lte=1"`
	ShareMin        float64 `yaml:"share_min" json:"share_min" validate:"gte=0,lte=1"`
	ScoreAligned    float64 `yaml:"score_aligned" json:"score_aligned" validate:"gte=0,lte=1"`
	ScoreHigh       float64 `yaml:"score_high" json:"score_high" validate:"gte=0,lte=1"`
}

// RegimeThresholds : les trois seuils exigés simultanément pour confirmer un déplacement de régime.
type RegimeThresholds struct {
	ShareDelta float64 `yaml:"share_delta" json:"share_delta"`
	AddsRatio  float64 `yaml:"adds_ratio" json:"adds_ratio" validate:"gte=0"`
	Corr       float64 `yaml:"corr" json:"corr" validate:"gte=-1,lte=1"`
}

// RegimeConfig est commun aux deux variantes du moteur de régime.
type RegimeConfig struct {
	SmoothingWindow int              `yaml:"smoothing_window" json:"smoothing_window" validate:"gte=1"`
	CorrWindow      int              `yaml:"corr_window" json:"corr_window" validate:"gte=2"`
	MinPoints       int              `yaml:"min_points" json:"min_points" validate:"gte=1"`
	Thresholds      RegimeThresholds `yaml:"thresholds" json:"thresholds"`
}

// PremiumConfig : variante à seuil (prepaid, part premium).
type PremiumConfig struct {
	RegimeConfig    `yaml:",inline"`
	RegimeThreshold float64 `yaml:"regime_threshold" json:"regime_threshold" validate:"gte=0,lte=1"`
	MinRegimeWeeks  int     `yaml:"min_regime_weeks" json:"min_regime_weeks" validate:"gte=1"`
}

// ValueMixConfig : variante à fenêtres fixes (postpaid, mix value).
type ValueMixConfig struct {
	RegimeConfig `yaml:",inline"`
	Window       int `yaml:"window" json:"window" validate:"gte=1"`
}

// DetectionConfig regroupe la configuration des quatre checks d'alignement et des deux checks de régime.
type DetectionConfig struct {
	Alignment AlignmentConfig `yaml:"alignment" json:"alignment"`
	Premium   PremiumConfig   `yaml:"premium" json:"premium"`
	ValueMix  ValueMixConfig  `yaml:"value_mix" json:"value_mix"`
}

// DefaultDetectionConfig renvoie les seuils de production.
func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		Alignment: AlignmentConfig{
			SmoothingWindow: 4,
			CorrWindow:      8,
			MinPoints:       12,
			CorrWeight:      0.7,
			ShareWeight:     0.3,
			CorrAligned:     0.60,
			ShareMin:        0.10,
			ScoreAligned:    0.65,
			ScoreHigh:       0.80,
		},
		Premium: PremiumConfig{
			RegimeConfig: RegimeConfig{
				SmoothingWindow: 4,
				CorrWindow:      6,
				MinPoints:       8,
				Thresholds:      RegimeThresholds{ShareDelta: 0.10, AddsRatio: 1.2, Corr: 0.6},
			},
			RegimeThreshold: 0.15,
			MinRegimeWeeks:  4,
		},
		ValueMix: ValueMixConfig{
			RegimeConfig: RegimeConfig{
				SmoothingWindow: 4,
				CorrWindow:      6,
				MinPoints:       16,
				Thresholds:      RegimeThresholds{ShareDelta: 0.05, AddsRatio: 1.2, Corr: 0.5},
			},
			Window: 8,
		},
	}
}

// Config contient les paramètres passés à l'orchestration d'une analyse complète.
type Config struct {
	Detection     DetectionConfig
	HorizonDays   int       // horizon de prévision en jours
	Today         time.Time // date de référence pour combler l'écart depuis l'entraînement – en UTC
	LookbackWeeks int       // semaines complètes chargées avant la semaine de Today
	Verbose       bool
	Quiet         bool // pas de barre de progression
}
