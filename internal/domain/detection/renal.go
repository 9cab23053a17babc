package detection

import (
	"fmt"
	"math"
	"time"

	"github.com/chartguard/chartguard/internal/domain/snapshot"
)

const (
	egfrDeclineThresholdPct = 20.0
	egfrBaselineWindow      = 365 * 24 * time.Hour
)

// DetectRenalDecline fires when eGFR dropped at least 20% between the
// earliest reading inside the trailing 12 months and the most recent one.
// A single reading cannot establish a trend, so one data point never
// alerts. Diuretic and NSAID use are reported as context only.
func DetectRenalDecline(snap *snapshot.Snapshot) *Alert {
	ref := referenceTime(snap)

	latest := snapshot.LatestLab(snap.Labs, "egfr")
	if latest == nil {
		return nil
	}
	baseline := snapshot.EarliestLabWithin(snap.Labs, "egfr", egfrBaselineWindow, ref)
	if baseline == nil || baseline.CollectedAt.Equal(latest.CollectedAt) {
		return nil
	}
	if baseline.Value <= 0 {
		return nil
	}

	declinePct := (baseline.Value - latest.Value) / baseline.Value * 100
	if declinePct < egfrDeclineThresholdPct {
		return nil
	}
	declinePct = math.Round(declinePct*10) / 10

	evidence := RenalDeclineEvidence{
		BaselineEgfr: baseline.Value,
		BaselineDate: baseline.CollectedAt,
		LatestEgfr:   latest.Value,
		LatestDate:   latest.CollectedAt,
		DeclinePct:   declinePct,
		OnDiuretic:   onActiveFamilyMember(snap, FamilyDiuretic),
		OnNSAID:      onActiveFamilyMember(snap, FamilyNSAID),
	}

	return &Alert{
		AlertType: AlertRenalDecline,
		Priority:  PriorityP0,
		Title:     "Significant renal function decline",
		Description: fmt.Sprintf(
			"eGFR fell %.1f%% from %s (%s) to %s (%s).",
			declinePct,
			formatEgfr(baseline.Value), baseline.CollectedAt.Format("Jan 2, 2006"),
			formatEgfr(latest.Value), latest.CollectedAt.Format("Jan 2, 2006")),
		Evidence: evidence,
	}
}

func formatEgfr(v float64) string {
	return fmt.Sprintf("%g mL/min", v)
}

// referenceTime anchors trailing windows. Evaluation is relative to when
// the snapshot was assembled so identical snapshots always yield identical
// alerts.
func referenceTime(snap *snapshot.Snapshot) time.Time {
	if !snap.AssembledAt.IsZero() {
		return snap.AssembledAt
	}
	return time.Now().UTC()
}
