package models

import (
	"encoding/json"
	"math"
)

// NullFloat est un float64 optionnel : Valid=false représente une valeur indéfinie
// (division par zéro, fenêtre incomplète, série constante). Sérialisé en JSON null.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Some construit une valeur définie. NaN et ±Inf sont ramenés à une valeur indéfinie.
func Some(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat{}
	}
	return NullFloat{Float64: v, Valid: true}
}

// Null renvoie une valeur indéfinie.
func Null() NullFloat {
	return NullFloat{}
}

// Or renvoie la valeur si elle est définie, sinon fallback.
func (n NullFloat) Or(fallback float64) float64 {
	if !n.Valid {
		return fallback
	}
	return n.Float64
}

// AtLeast est vrai seulement si la valeur est définie et >= threshold.
func (n NullFloat) AtLeast(threshold float64) bool {
	return n.Valid && n.Float64 >= threshold
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Some(v)
	return nil
}
