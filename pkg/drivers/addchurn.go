package drivers

import (
	"subscriber-drivers/pkg/models"
)

// Column extrait une colonne numérique d'une frame hebdomadaire de commandes.
type Column func(models.WeeklyOrders) float64

func countColumn(w models.WeeklyOrders) float64       { return w.Count }
func retailColumn(w models.WeeklyOrders) float64      { return w.Retail }
func portInColumn(w models.WeeklyOrders) float64      { return w.PortIn }
func competitiveColumn(w models.WeeklyOrders) float64 { return w.Competitive }

// AlignmentCheck associe un nom de driver à un couple (cible, driver) de colonnes.
type AlignmentCheck struct {
	Driver string
	Target Column
	Signal Column
}

var (
	// RetailAddGrowth : adds postpaid ~ adds du canal Retail.
	RetailAddGrowth = AlignmentCheck{Driver: "retail_add_growth", Target: countColumn, Signal: retailColumn}
	// CompetitiveChurnSpike : churn postpaid ~ départs Port Out / offre concurrente.
	CompetitiveChurnSpike = AlignmentCheck{Driver: "competitive_churn_spike", Target: countColumn, Signal: competitiveColumn}
	// PortInAddGrowth : adds prepaid ~ adds en portabilité entrante.
	PortInAddGrowth = AlignmentCheck{Driver: "portin_add_growth", Target: countColumn, Signal: portInColumn}
)

// NoDriverName est le nom du résultat constant utilisé quand aucun driver candidat n'est défini.
const NoDriverName = "no_structural_driver_detected"

// Rows projette la frame sur les colonnes (cible, driver) du check.
func (c AlignmentCheck) Rows(frame []models.WeeklyOrders) []models.WeeklyRow {
	rows := make([]models.WeeklyRow, len(frame))
	for i, w := range frame {
		rows[i] = models.WeeklyRow{Week: w.Week, Target: c.Target(w), Driver: c.Signal(w)}
	}
	return rows
}

// Detect exécute le moteur d'alignement sur la frame.
func (c AlignmentCheck) Detect(frame []models.WeeklyOrders, cfg models.AlignmentConfig) models.DriverResult {
	return DetectAlignment(c.Driver, c.Rows(frame), cfg)
}

// NoStructuralDriver est le résultat constant du churn prepaid : aucun driver candidat n'est défini
// pour ce segment, aucun calcul n'est fait.
func NoStructuralDriver() models.DriverResult {
	return models.Evaluated{
		Name:       NoDriverName,
		Kind:       models.KindAlignment,
		Confirmed:  false,
		Confidence: models.ConfidenceLow,
		Metrics:    models.Metrics{},
	}
}

// DetectAddChurnDrivers exécute les quatre checks adds/churn et assemble le résultat composite.
func DetectAddChurnDrivers(frames models.AddChurnFrames, cfg models.AlignmentConfig) models.AddChurnReport {
	return BuildAddChurnReport(
		RetailAddGrowth.Detect(frames.PostpaidAdds, cfg),
		CompetitiveChurnSpike.Detect(frames.PostpaidChurn, cfg),
		PortInAddGrowth.Detect(frames.PrepaidAdds, cfg),
		NoStructuralDriver(),
	)
}

// BuildAddChurnReport place chaque résultat sous son segment et son type de check, sans le modifier.
func BuildAddChurnReport(postpaidAdds, postpaidChurn, prepaidAdds, prepaidChurn models.DriverResult) models.AddChurnReport {
	return models.AddChurnReport{
		Analysis: models.AddChurnAnalysis{
			Postpaid: models.SegmentChecks{Adds: postpaidAdds, Churn: postpaidChurn},
			Prepaid:  models.SegmentChecks{Adds: prepaidAdds, Churn: prepaidChurn},
		},
	}
}
