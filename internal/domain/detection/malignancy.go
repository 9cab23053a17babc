package detection

import (
	"fmt"

	"github.com/chartguard/chartguard/internal/domain/snapshot"
)

const (
	weightDropThresholdKg = 3.0
	hemoglobinLow         = 12.0
	mcvLow                = 80.0
	ferritinLow           = 15.0
	malignancySignalsMin  = 2
)

var bleedingPhrases = []string{
	"bleeding", "hematochezia", "melena", "gi bleed", "rectal bleeding",
}

// DetectOccultMalignancy fires when at least two of three signals are
// present: unexplained weight loss, an iron-deficiency-anemia lab pattern,
// and GI bleeding mentions. A patient on an active GLP-1 agonist is
// suppressed outright — their weight loss is the treatment working.
func DetectOccultMalignancy(snap *snapshot.Snapshot) *Alert {
	if OnGLP1Agonist(snap) {
		return nil
	}

	var ev MalignancyEvidence

	// Signal 1: weight loss, measured or mentioned.
	earliest := snapshot.EarliestVitals(snap.VitalsHistory)
	latest := snapshot.LatestVitals(snap.VitalsHistory)
	if earliest != nil && latest != nil && earliest.WeightKg > 0 && latest.WeightKg > 0 {
		drop := earliest.WeightKg - latest.WeightKg
		if drop >= weightDropThresholdKg {
			ev.WeightLoss = true
			ev.WeightDropKg = &drop
			ev.WeightLossSource = fmt.Sprintf("weight %0.1f kg -> %0.1f kg", earliest.WeightKg, latest.WeightKg)
		}
	}
	if !ev.WeightLoss {
		if ok, src := snap.MentionsAny("weight loss"); ok {
			ev.WeightLoss = true
			ev.WeightLossSource = src
		}
	}

	// Signal 2: iron-deficiency-anemia pattern.
	hgb := snapshot.LatestLab(snap.Labs, "hemoglobin")
	mcv := snapshot.LatestLab(snap.Labs, "mcv")
	ferritin := snapshot.LatestLab(snap.Labs, "ferritin")
	if hgb != nil {
		ev.Hemoglobin = &hgb.Value
	}
	if mcv != nil {
		ev.MCV = &mcv.Value
	}
	if ferritin != nil {
		ev.Ferritin = &ferritin.Value
	}
	if hgb != nil && mcv != nil && hgb.Value < hemoglobinLow && mcv.Value < mcvLow {
		ev.IDAPattern = true
	}
	if ferritin != nil && ferritin.Value < ferritinLow {
		ev.IDAPattern = true
	}

	// Signal 3: GI bleeding mentions.
	if ok, src := snap.MentionsAny(bleedingPhrases...); ok {
		ev.GIBleeding = true
		ev.BleedingSource = src
	}

	for _, on := range []bool{ev.WeightLoss, ev.IDAPattern, ev.GIBleeding} {
		if on {
			ev.SignalCount++
		}
	}
	if ev.SignalCount < malignancySignalsMin {
		return nil
	}

	return &Alert{
		AlertType: AlertOccultMalignancy,
		Priority:  PriorityP0,
		Title:     "Occult malignancy triad",
		Description: fmt.Sprintf(
			"%d of 3 red-flag signals present (weight loss, iron-deficiency anemia, GI bleeding). "+
				"Consider malignancy workup.", ev.SignalCount),
		Evidence: ev,
	}
}
