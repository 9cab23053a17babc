package detection

import (
	"time"

	"github.com/google/uuid"
)

// Alert priorities. P0 is the most clinically urgent tier.
const (
	PriorityP0 = "P0"
	PriorityP1 = "P1"
	PriorityP2 = "P2"
)

// Alert types, one per detector.
const (
	AlertRenalDecline          = "renal_decline"
	AlertCardioRenalMetabolic  = "cardio_renal_metabolic"
	AlertOccultMalignancy      = "occult_malignancy"
	AlertMissedAnticoagulation = "missed_anticoagulation"
)

// Alert is one fired clinical pattern. Evidence is plain data and must
// survive a JSON round trip without loss; detectors only put structs of
// scalars and pointers in it.
type Alert struct {
	AlertType   string      `json:"alert_type"`
	Priority    string      `json:"priority"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Evidence    interface{} `json:"evidence"`
}

// RenalDeclineEvidence backs an AlertRenalDecline. Diuretic and NSAID
// flags are contextual annotations, not trigger conditions.
type RenalDeclineEvidence struct {
	BaselineEgfr float64   `json:"baseline_egfr"`
	BaselineDate time.Time `json:"baseline_date"`
	LatestEgfr   float64   `json:"latest_egfr"`
	LatestDate   time.Time `json:"latest_date"`
	DeclinePct   float64   `json:"decline_pct"`
	OnDiuretic   bool      `json:"on_diuretic"`
	OnNSAID      bool      `json:"on_nsaid"`
}

// CardioRenalEvidence records every intermediate conjunct of the
// AND-of-ORs rule plus the underlying value pairs.
type CardioRenalEvidence struct {
	HasHeartFailure       bool     `json:"has_heart_failure"`
	HasDiabetes           bool     `json:"has_diabetes"`
	HasCKDDiagnosis       bool     `json:"has_ckd_diagnosis"`
	EgfrDeclined          bool     `json:"egfr_declined"`
	RecentFurosemideStart bool     `json:"recent_furosemide_start"`
	A1cRose               bool     `json:"a1c_rose"`
	BaselineEgfr          *float64 `json:"baseline_egfr,omitempty"`
	LatestEgfr            *float64 `json:"latest_egfr,omitempty"`
	BaselineA1c           *float64 `json:"baseline_a1c,omitempty"`
	LatestA1c             *float64 `json:"latest_a1c,omitempty"`
}

// MalignancyEvidence records each triad signal and its raw inputs.
type MalignancyEvidence struct {
	WeightLoss       bool     `json:"weight_loss"`
	IDAPattern       bool     `json:"ida_pattern"`
	GIBleeding       bool     `json:"gi_bleeding"`
	SignalCount      int      `json:"signal_count"`
	WeightDropKg     *float64 `json:"weight_drop_kg,omitempty"`
	WeightLossSource string   `json:"weight_loss_source,omitempty"`
	Hemoglobin       *float64 `json:"hemoglobin,omitempty"`
	MCV              *float64 `json:"mcv,omitempty"`
	Ferritin         *float64 `json:"ferritin,omitempty"`
	BleedingSource   string   `json:"bleeding_source,omitempty"`
}

// AnticoagEvidence records the simplified stroke-risk score and its
// components. Age and sex are intentionally omitted from the score:
// birth-date data in the source system is unreliable, and inventing a
// default would change clinical semantics. Both anticoagulant flags are
// false by construction when this evidence is emitted.
type AnticoagEvidence struct {
	ChadsScore     int  `json:"chads_score"`
	HeartFailure   bool `json:"heart_failure"`
	Hypertension   bool `json:"hypertension"`
	Diabetes       bool `json:"diabetes"`
	Vascular       bool `json:"vascular_disease"`
	StrokeTIA      bool `json:"stroke_tia"`
	AnticoagActive bool `json:"anticoag_active"`
	AnticoagOnHold bool `json:"anticoag_on_hold"`
}

// PatternAlert is a persisted alert row (pattern_alert table). The engine
// recomputes alerts on demand; persistence exists so clinicians can
// acknowledge or dismiss what they have already reviewed.
type PatternAlert struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	AlertType   string     `db:"alert_type" json:"alert_type"`
	Priority    string     `db:"priority" json:"priority"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Evidence    []byte     `db:"evidence" json:"evidence"`
	Status      string     `db:"status" json:"status"`
	FiredAt     time.Time  `db:"fired_at" json:"fired_at"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
