package detection

import (
	"fmt"
	"strings"

	"github.com/chartguard/chartguard/internal/domain/snapshot"
)

// hasDiagnosisToken matches a whole word in diagnosis names. "TIA" as a
// bare substring would fire inside unrelated names like "dementia".
func hasDiagnosisToken(snap *snapshot.Snapshot, word string) bool {
	for _, d := range snap.ActiveDiagnoses() {
		for _, f := range strings.Fields(strings.ToLower(d.Name)) {
			if strings.Trim(f, ",;()") == word {
				return true
			}
		}
	}
	return false
}

const chadsScoreThreshold = 2

// DetectMissedAnticoagulation fires for an atrial-fibrillation patient
// with stroke risk but no anticoagulant on board. Active or explicitly
// held anticoagulation suppresses the alert — a held drug is a reviewed
// clinical decision, not a gap.
//
// The score approximates CHA2DS2-VASc without the age and sex components;
// birth-date data in the source system is unreliable and a guessed default
// would silently change clinical meaning.
func DetectMissedAnticoagulation(snap *snapshot.Snapshot) *Alert {
	if !snap.HasDiagnosisContaining("atrial fib", "I48") {
		return nil
	}
	if AnticoagulationAddressed(snap) {
		return nil
	}

	ev := AnticoagEvidence{
		HeartFailure: snap.HasDiagnosisContaining("heart failure", "I50"),
		Hypertension: snap.HasDiagnosisContaining("hypertension", "I10"),
		Diabetes:     snap.HasDiagnosisContaining("diabetes", "E10", "E11"),
		Vascular: snap.HasDiagnosisContaining("vascular disease") ||
			snap.HasDiagnosisContaining("peripheral arterial", "I73") ||
			snap.HasDiagnosisContaining("coronary artery", "I25"),
		StrokeTIA: snap.HasDiagnosisContaining("stroke", "I63") ||
			snap.HasDiagnosisContaining("transient ischemic", "G45") ||
			hasDiagnosisToken(snap, "tia"),
	}

	for _, on := range []bool{ev.HeartFailure, ev.Hypertension, ev.Diabetes, ev.Vascular} {
		if on {
			ev.ChadsScore++
		}
	}
	if ev.StrokeTIA {
		ev.ChadsScore += 2
	}

	if ev.ChadsScore < chadsScoreThreshold {
		return nil
	}

	return &Alert{
		AlertType: AlertMissedAnticoagulation,
		Priority:  PriorityP0,
		Title:     "Atrial fibrillation without anticoagulation",
		Description: fmt.Sprintf(
			"Stroke risk score %d (threshold %d) with no anticoagulant active or held. "+
				"Score omits age/sex components.", ev.ChadsScore, chadsScoreThreshold),
		Evidence: ev,
	}
}
