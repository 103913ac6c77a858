// Package drivers contient le moteur de détection des drivers structurels :
// construction du spine hebdomadaire, moteur d'alignement (adds/churn) et
// moteur de déplacement de régime (mix de souscriptions).
//
// Toutes les fonctions sont pures : elles ne modifient pas leurs entrées,
// ne font aucune I/O et ne renvoient jamais d'erreur. Les cas dégradés
// (données insuffisantes, segment vide) produisent un models.NotEvaluated.
package drivers

import (
	"sort"

	"subscriber-drivers/pkg/models"
	"subscriber-drivers/pkg/stats"
)

// BuildSpine trie une copie des lignes par semaine, calcule les sommes glissantes,
// écarte les semaines où la fenêtre n'est pas pleine, puis calcule la part du driver
// et la corrélation glissante. ok=false signale des données insuffisantes.
func BuildSpine(rows []models.WeeklyRow, cfg models.AlignmentConfig) (models.Spine, bool) {
	sorted := sortedRows(rows)

	targets := make([]float64, len(sorted))
	drivers := make([]float64, len(sorted))
	for i, r := range sorted {
		targets[i] = r.Target
		drivers[i] = r.Driver
	}
	targetSums := stats.RollingSum(targets, cfg.SmoothingWindow)
	driverSums := stats.RollingSum(drivers, cfg.SmoothingWindow)

	spine := make(models.Spine, 0, len(sorted))
	for i, r := range sorted {
		if !targetSums[i].Valid || !driverSums[i].Valid {
			continue
		}
		spine = append(spine, models.SpineRow{
			Week:      r.Week,
			Target:    r.Target,
			Driver:    r.Driver,
			TargetSum: targetSums[i].Float64,
			DriverSum: driverSums[i].Float64,
		})
	}
	if len(spine) < cfg.MinPoints || len(spine) == 0 {
		return nil, false
	}

	tSum := make([]float64, len(spine))
	dSum := make([]float64, len(spine))
	for i := range spine {
		spine[i].Share = stats.SafeDiv(spine[i].DriverSum, spine[i].TargetSum)
		tSum[i] = spine[i].TargetSum
		dSum[i] = spine[i].DriverSum
	}
	for i, c := range stats.RollingCorr(dSum, tSum, cfg.CorrWindow) {
		spine[i].Corr = c
	}
	return spine, true
}

func sortedRows(rows []models.WeeklyRow) []models.WeeklyRow {
	out := make([]models.WeeklyRow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Week.Before(out[j].Week) })
	return out
}

// spineColumns est la vue colonnes d'un spine.
type spineColumns struct {
	share     []models.NullFloat
	corr      []models.NullFloat
	targetSum []float64
	driverSum []float64
}

func columnsOf(s models.Spine) spineColumns {
	c := spineColumns{
		share:     make([]models.NullFloat, len(s)),
		corr:      make([]models.NullFloat, len(s)),
		targetSum: make([]float64, len(s)),
		driverSum: make([]float64, len(s)),
	}
	for i, r := range s {
		c.share[i] = r.Share
		c.corr[i] = r.Corr
		c.targetSum[i] = r.TargetSum
		c.driverSum[i] = r.DriverSum
	}
	return c
}
