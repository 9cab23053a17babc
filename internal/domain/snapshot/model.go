package snapshot

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Diagnosis type values.
const (
	DiagnosisConfirmed = "confirmed"
	DiagnosisSuspected = "suspected"
	DiagnosisRuledOut  = "ruled_out"
)

// Medication status values.
const (
	MedicationActive       = "active"
	MedicationOnHold       = "on_hold"
	MedicationDiscontinued = "discontinued"
)

// Diagnosis maps to the diagnosis table.
type Diagnosis struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Name      string    `db:"name" json:"name"`
	Type      string    `db:"type" json:"type"`
	ICDCode   *string   `db:"icd_code" json:"icd_code,omitempty"`
	Specialty string    `db:"specialty" json:"specialty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Medication maps to the medication table.
type Medication struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	PatientID  uuid.UUID  `db:"patient_id" json:"patient_id"`
	Drug       string     `db:"drug" json:"drug"`
	Dose       string     `db:"dose" json:"dose"`
	Frequency  string     `db:"frequency" json:"frequency"`
	Status     string     `db:"status" json:"status"`
	Indication *string    `db:"indication" json:"indication,omitempty"`
	Notes      *string    `db:"notes" json:"notes,omitempty"`
	StartedAt  *time.Time `db:"started_at" json:"started_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// LabResult maps to the lab_result table. Many rows may exist per Name,
// forming a time series keyed by CollectedAt.
type LabResult struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	Name        string    `db:"name" json:"name"`
	Value       float64   `db:"value" json:"value"`
	Unit        string    `db:"unit" json:"unit"`
	Abnormal    bool      `db:"abnormal" json:"abnormal"`
	CollectedAt time.Time `db:"collected_at" json:"collected_at"`
}

// VitalSigns maps to the vital_signs table. BP is stored as the raw
// "systolic/diastolic" string the way it was charted.
type VitalSigns struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PatientID    uuid.UUID `db:"patient_id" json:"patient_id"`
	BP           string    `db:"bp" json:"bp"`
	HeartRate    int       `db:"heart_rate" json:"heart_rate"`
	O2Saturation int       `db:"o2_saturation" json:"o2_saturation"`
	WeightKg     float64   `db:"weight_kg" json:"weight_kg"`
	RecordedAt   time.Time `db:"recorded_at" json:"recorded_at"`
}

// Symptom maps to the symptom table. Description is free text.
type Symptom struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	Description string     `db:"description" json:"description"`
	Severity    *string    `db:"severity" json:"severity,omitempty"`
	OnsetDate   *time.Time `db:"onset_date" json:"onset_date,omitempty"`
}

// Snapshot is the full structured clinical record for one patient at one
// point in time. It is assembled by a single consistent read and treated
// as read-only for the duration of any evaluation; neither the citation
// verifier nor the pattern detectors mutate it.
type Snapshot struct {
	PatientID     uuid.UUID    `json:"patient_id"`
	Diagnoses     []Diagnosis  `json:"diagnoses"`
	Medications   []Medication `json:"medications"`
	Labs          []LabResult  `json:"labs"`
	Vitals        *VitalSigns  `json:"vitals,omitempty"`
	VitalsHistory []VitalSigns `json:"vitals_history,omitempty"`
	Symptoms      []Symptom    `json:"symptoms"`
	AssembledAt   time.Time    `json:"assembled_at"`
}

// ActiveDiagnoses returns diagnoses that participate in pattern
// evaluation. Ruled-out entries are excluded.
func (s *Snapshot) ActiveDiagnoses() []Diagnosis {
	var out []Diagnosis
	for _, d := range s.Diagnoses {
		if d.Type != DiagnosisRuledOut {
			out = append(out, d)
		}
	}
	return out
}

// HasDiagnosisContaining reports whether any non-ruled-out diagnosis name
// contains the given substring (case-insensitive), or its ICD code starts
// with any of the given code prefixes.
func (s *Snapshot) HasDiagnosisContaining(nameSub string, icdPrefixes ...string) bool {
	for _, d := range s.ActiveDiagnoses() {
		if strings.Contains(strings.ToLower(d.Name), strings.ToLower(nameSub)) {
			return true
		}
		if d.ICDCode != nil {
			for _, p := range icdPrefixes {
				if strings.HasPrefix(strings.ToUpper(*d.ICDCode), strings.ToUpper(p)) {
					return true
				}
			}
		}
	}
	return false
}

// MedicationsMatching returns medications whose drug name contains any of
// the given tokens (case-insensitive). Duplicate drug entries are returned
// as-is; callers match on first/any.
func (s *Snapshot) MedicationsMatching(tokens ...string) []Medication {
	var out []Medication
	for _, m := range s.Medications {
		drug := strings.ToLower(m.Drug)
		for _, tok := range tokens {
			if strings.Contains(drug, strings.ToLower(tok)) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// MentionsAny reports whether any symptom description or diagnosis name
// contains one of the given phrases (case-insensitive). Used by detectors
// that key off free-text mentions such as "weight loss" or "melena".
func (s *Snapshot) MentionsAny(phrases ...string) (bool, string) {
	for _, sym := range s.Symptoms {
		desc := strings.ToLower(sym.Description)
		for _, p := range phrases {
			if strings.Contains(desc, strings.ToLower(p)) {
				return true, sym.Description
			}
		}
	}
	for _, d := range s.ActiveDiagnoses() {
		name := strings.ToLower(d.Name)
		for _, p := range phrases {
			if strings.Contains(name, strings.ToLower(p)) {
				return true, d.Name
			}
		}
	}
	return false, ""
}
