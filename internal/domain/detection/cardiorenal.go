package detection

import (
	"time"

	"github.com/chartguard/chartguard/internal/domain/snapshot"
)

const (
	cardioRenalEgfrCutoff      = 30 * 24 * time.Hour
	cardioRenalFurosemideStart = 60 * 24 * time.Hour
	cardioRenalA1cCutoff       = 90 * 24 * time.Hour
	a1cRiseThreshold           = 1.0
)

// DetectCardioRenalMetabolic fires on the combined deterioration pattern:
// heart failure AND diabetes AND (CKD diagnosis OR >20% eGFR decline vs a
// reading older than 30 days) AND (furosemide started within 60 days OR
// A1c up >=1.0 points vs a reading older than 90 days). All four top-level
// conjuncts must hold; this is an AND of ORs, not a weighted score.
func DetectCardioRenalMetabolic(snap *snapshot.Snapshot) *Alert {
	ref := referenceTime(snap)

	ev := CardioRenalEvidence{
		HasHeartFailure: snap.HasDiagnosisContaining("heart failure", "I50"),
		HasDiabetes:     snap.HasDiagnosisContaining("diabetes", "E10", "E11"),
		HasCKDDiagnosis: snap.HasDiagnosisContaining("chronic kidney", "N18") || snap.HasDiagnosisContaining("ckd"),
	}

	latestEgfr := snapshot.LatestLab(snap.Labs, "egfr")
	baselineEgfr := snapshot.LabBefore(snap.Labs, "egfr", ref.Add(-cardioRenalEgfrCutoff))
	if latestEgfr != nil && baselineEgfr != nil && baselineEgfr.Value > 0 {
		ev.BaselineEgfr = &baselineEgfr.Value
		ev.LatestEgfr = &latestEgfr.Value
		decline := (baselineEgfr.Value - latestEgfr.Value) / baselineEgfr.Value * 100
		ev.EgfrDeclined = decline > egfrDeclineThresholdPct
	}

	// Specifically a loop-diuretic start; thiazides do not signal volume
	// overload escalation.
	for _, m := range snap.MedicationsMatching("furosemide", "lasix") {
		if m.StartedAt != nil && m.StartedAt.After(ref.Add(-cardioRenalFurosemideStart)) {
			ev.RecentFurosemideStart = true
			break
		}
	}

	latestA1c := snapshot.LatestLab(snap.Labs, "a1c")
	baselineA1c := snapshot.LabBefore(snap.Labs, "a1c", ref.Add(-cardioRenalA1cCutoff))
	if latestA1c != nil && baselineA1c != nil {
		ev.BaselineA1c = &baselineA1c.Value
		ev.LatestA1c = &latestA1c.Value
		ev.A1cRose = latestA1c.Value-baselineA1c.Value >= a1cRiseThreshold
	}

	renalConjunct := ev.HasCKDDiagnosis || ev.EgfrDeclined
	escalationConjunct := ev.RecentFurosemideStart || ev.A1cRose
	if !(ev.HasHeartFailure && ev.HasDiabetes && renalConjunct && escalationConjunct) {
		return nil
	}

	return &Alert{
		AlertType: AlertCardioRenalMetabolic,
		Priority:  PriorityP0,
		Title:     "Cardio-renal-metabolic spiral",
		Description: "Heart failure and diabetes with declining renal function and " +
			"escalating therapy or glycemic control loss. Multi-system review indicated.",
		Evidence: ev,
	}
}
