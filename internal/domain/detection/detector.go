package detection

import "github.com/chartguard/chartguard/internal/domain/snapshot"

// Detector is one independent rule over the snapshot. A nil return means
// no emission; detectors never error and never mutate the snapshot.
type Detector func(*snapshot.Snapshot) *Alert

// detectors run in a fixed order so output is stable for identical
// snapshots. The order carries no clinical meaning.
var detectors = []Detector{
	DetectRenalDecline,
	DetectCardioRenalMetabolic,
	DetectOccultMalignancy,
	DetectMissedAnticoagulation,
}

// DetectAll runs every detector and concatenates the fired alerts. Missing
// data inside any detector is absorbed as a non-emission; an empty
// snapshot yields an empty slice.
func DetectAll(snap *snapshot.Snapshot) []Alert {
	if snap == nil {
		// Caller bug: a patient with no data is an empty snapshot, never nil.
		panic("detection: nil snapshot")
	}
	alerts := make([]Alert, 0, len(detectors))
	for _, detect := range detectors {
		if a := detect(snap); a != nil {
			alerts = append(alerts, *a)
		}
	}
	return alerts
}
