package models

import (
	"time"
)

/*
LOAD → types simples pour les tables hebdomadaires fournies par le loader.
*/

// WeeklyRow représente une semaine pré-agrégée : volume cible (adds/churn) et volume du driver candidat.
type WeeklyRow struct {
	Week   time.Time `json:"week_start" validate:"required"`
	Target float64   `json:"target" validate:"gte=0"`
	Driver float64   `json:"driver" validate:"gte=0"`
}

// SubscriptionRecord représente une souscription brute (une ligne par événement).
type SubscriptionRecord struct {
	Week        time.Time `json:"week_start" validate:"required"`
	RecordID    string    `json:"unique_subscription_id" validate:"required"`
	ProductName string    `json:"product_name"`
	Segment     string    `json:"segment" validate:"required"`
}

// OrderRecord représente une commande brute telle que lue en base, avant préparation des frames hebdo.
type OrderRecord struct {
	OrderKey              string // "orderid_ordernumber"
	ActivatedAt           time.Time
	Week                  time.Time
	CustomerSegment       string // B2C / B2B
	PaymentType           string // Postpaid / Prepaid
	Type                  string // Sales, Add, Disconnect...
	AccountClassification string
	Channel               string
	Reason                string
}

// WeeklyOrders est une semaine de commandes d'un segment : commandes uniques et ventilation par driver candidat.
type WeeklyOrders struct {
	Week        time.Time `json:"week_start" validate:"required"`
	Count       float64   `json:"count" validate:"gte=0"` // adds ou churn selon la frame
	Retail      float64   `json:"is_retail" validate:"gte=0"`
	PortIn      float64   `json:"is_portin" validate:"gte=0"`
	Competitive float64   `json:"is_competitive" validate:"gte=0"`
	Financial   float64   `json:"is_financial" validate:"gte=0"`
}

// AddChurnFrames regroupe les quatre frames hebdomadaires préparées par le loader.
type AddChurnFrames struct {
	PostpaidAdds  []WeeklyOrders `json:"postpaid_adds" validate:"dive"`
	PostpaidChurn []WeeklyOrders `json:"postpaid_churn" validate:"dive"`
	PrepaidAdds   []WeeklyOrders `json:"prepaid_adds" validate:"dive"`
	PrepaidChurn  []WeeklyOrders `json:"prepaid_churn" validate:"dive"`
}

/*
COMPUTE → séries lissées et agrégats hebdomadaires
*/

// WeeklyMix contient, pour une semaine, le nombre de souscriptions uniques et celles du tier suivi.
type WeeklyMix struct {
	Week  time.Time
	Total float64
	Tier  float64
}

// SpineRow est une ligne du spine : valeurs brutes, sommes glissantes, part du driver et corrélation glissante.
type SpineRow struct {
	Week      time.Time
	Target    float64
	Driver    float64
	TargetSum float64   // somme glissante de la cible, toujours définie
	DriverSum float64   // somme glissante du driver, toujours définie
	Share     NullFloat // DriverSum / TargetSum, nulle si TargetSum == 0
	Corr      NullFloat // corrélation glissante DriverSum ~ TargetSum
}

// Spine est la table hebdomadaire lissée, triée par semaine croissante.
type Spine []SpineRow

// Confidence est le niveau de confiance attaché à un résultat de driver.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Metrics associe un nom de métrique à une valeur éventuellement indéfinie.
type Metrics map[string]NullFloat

// Float renvoie la valeur d'une métrique et si elle est définie.
func (m Metrics) Float(name string) (float64, bool) {
	v, ok := m[name]
	if !ok || !v.Valid {
		return 0, false
	}
	return v.Float64, true
}
