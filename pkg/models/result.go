package models

import (
	"encoding/json"
)

/*
RESULT → résultat d'une détection de driver, sous forme de type somme fermé :
Evaluated (métriques calculées) | NotEvaluated (données insuffisantes / segment absent).
*/

// CheckKind détermine le nom du drapeau booléen dans la sortie JSON.
type CheckKind string

const (
	KindAlignment   CheckKind = "alignment"    // drapeau "aligned"
	KindRegimeShift CheckKind = "regime_shift" // drapeau "detected"
)

// ReasonInsufficientData est la raison renvoyée quand le spine lissé est trop court.
const ReasonInsufficientData = "Insufficient data"

// DriverResult est implémenté uniquement par Evaluated et NotEvaluated.
type DriverResult interface {
	DriverName() string
	Detected() bool
	ConfidenceLevel() Confidence
	isDriverResult()
}

// Evaluated est le résultat d'une détection dont les métriques ont pu être calculées.
type Evaluated struct {
	Name       string
	Segment    string // renseigné pour les détections de régime
	Kind       CheckKind
	Confirmed  bool
	Confidence Confidence
	Metrics    Metrics
}

// NotEvaluated est le résultat terminal d'une détection impossible, avec sa raison.
type NotEvaluated struct {
	Name    string
	Segment string
	Kind    CheckKind
	Reason  string
}

func (e Evaluated) DriverName() string          { return e.Name }
func (e Evaluated) Detected() bool              { return e.Confirmed }
func (e Evaluated) ConfidenceLevel() Confidence { return e.Confidence }
func (Evaluated) isDriverResult()               {}

func (n NotEvaluated) DriverName() string        { return n.Name }
func (NotEvaluated) Detected() bool              { return false }
func (NotEvaluated) ConfidenceLevel() Confidence { return ConfidenceLow }
func (NotEvaluated) isDriverResult()             {}

type resultWire struct {
	Segment    string     `json:"segment,omitempty"`
	Driver     string     `json:"driver,omitempty"`
	Aligned    *bool      `json:"aligned,omitempty"`
	Detected   *bool      `json:"detected,omitempty"`
	Confidence Confidence `json:"confidence"`
	Metrics    *Metrics   `json:"metrics,omitempty"`
	Reason     string     `json:"reason,omitempty"`
}

func newWire(kind CheckKind, segment, driver string, flag bool, c Confidence) resultWire {
	w := resultWire{Segment: segment, Driver: driver, Confidence: c}
	if kind == KindRegimeShift {
		w.Detected = &flag
	} else {
		w.Aligned = &flag
	}
	return w
}

func (e Evaluated) MarshalJSON() ([]byte, error) {
	w := newWire(e.Kind, e.Segment, e.Name, e.Confirmed, e.Confidence)
	m := e.Metrics
	if m == nil {
		m = Metrics{}
	}
	w.Metrics = &m
	return json.Marshal(w)
}

func (n NotEvaluated) MarshalJSON() ([]byte, error) {
	w := newWire(n.Kind, n.Segment, n.Name, false, ConfidenceLow)
	w.Reason = n.Reason
	return json.Marshal(w)
}

/*
COMPOSITE → sortie structurée consommée telle quelle par la narration.
*/

// SegmentChecks regroupe les détections adds/churn d'un segment.
type SegmentChecks struct {
	Adds  DriverResult `json:"adds"`
	Churn DriverResult `json:"churn"`
}

// AddChurnAnalysis : segment → type de check → résultat.
type AddChurnAnalysis struct {
	Postpaid SegmentChecks `json:"postpaid"`
	Prepaid  SegmentChecks `json:"prepaid"`
}

// AddChurnReport est l'enveloppe JSON de l'analyse adds/churn.
type AddChurnReport struct {
	Analysis AddChurnAnalysis `json:"add_churn_driver_analysis"`
}

// SubscriptionAnalysis : segment → résultat de déplacement de mix.
type SubscriptionAnalysis struct {
	Prepaid  DriverResult `json:"prepaid"`
	Postpaid DriverResult `json:"postpaid"`
}

// SubscriptionReport est l'enveloppe JSON de l'analyse des souscriptions.
type SubscriptionReport struct {
	Analysis SubscriptionAnalysis `json:"subscription_driver_analysis"`
}

// DriverReport regroupe les deux analyses.
type DriverReport struct {
	Subscriptions SubscriptionReport `json:"subscriptions"`
	AddChurn      AddChurnReport     `json:"add_churn"`
}

// Each parcourt les résultats dans un ordre stable (segment, check).
func (a AddChurnAnalysis) Each(fn func(segment, check string, r DriverResult)) {
	fn("postpaid", "adds", a.Postpaid.Adds)
	fn("postpaid", "churn", a.Postpaid.Churn)
	fn("prepaid", "adds", a.Prepaid.Adds)
	fn("prepaid", "churn", a.Prepaid.Churn)
}

// Each parcourt les résultats dans un ordre stable.
func (s SubscriptionAnalysis) Each(fn func(segment, check string, r DriverResult)) {
	fn("prepaid", "mix", s.Prepaid)
	fn("postpaid", "mix", s.Postpaid)
}
