package snapshot

import (
	"strings"
	"time"
)

// Lab name matching is case-insensitive on canonical names. "a1c" and
// "hba1c" chart as different names for the same analyte, so the lookup
// accepts either direction as a substring.
func labNameMatches(labName, query string) bool {
	ln := strings.ToLower(strings.TrimSpace(labName))
	q := strings.ToLower(strings.TrimSpace(query))
	return ln == q || strings.Contains(ln, q) || strings.Contains(q, ln)
}

// LatestLab returns the most recent lab result with the given name, or nil
// if the patient has none. Latest means max CollectedAt.
func LatestLab(labs []LabResult, name string) *LabResult {
	var latest *LabResult
	for i := range labs {
		if !labNameMatches(labs[i].Name, name) {
			continue
		}
		if latest == nil || labs[i].CollectedAt.After(latest.CollectedAt) {
			latest = &labs[i]
		}
	}
	return latest
}

// EarliestLabWithin returns the oldest lab result with the given name whose
// CollectedAt falls inside the trailing window ending at ref, or nil.
func EarliestLabWithin(labs []LabResult, name string, window time.Duration, ref time.Time) *LabResult {
	cutoff := ref.Add(-window)
	var earliest *LabResult
	for i := range labs {
		if !labNameMatches(labs[i].Name, name) {
			continue
		}
		if labs[i].CollectedAt.Before(cutoff) || labs[i].CollectedAt.After(ref) {
			continue
		}
		if earliest == nil || labs[i].CollectedAt.Before(earliest.CollectedAt) {
			earliest = &labs[i]
		}
	}
	return earliest
}

// LabBefore returns the most recent lab result with the given name collected
// strictly before cutoff, or nil. Detectors use it to pick a baseline
// reading guaranteed to be older than N days.
func LabBefore(labs []LabResult, name string, cutoff time.Time) *LabResult {
	var best *LabResult
	for i := range labs {
		if !labNameMatches(labs[i].Name, name) {
			continue
		}
		if !labs[i].CollectedAt.Before(cutoff) {
			continue
		}
		if best == nil || labs[i].CollectedAt.After(best.CollectedAt) {
			best = &labs[i]
		}
	}
	return best
}

// EarliestVitals and LatestVitals bracket the recorded vitals history for
// weight-trend checks. Both return nil on an empty history.
func EarliestVitals(history []VitalSigns) *VitalSigns {
	var earliest *VitalSigns
	for i := range history {
		if earliest == nil || history[i].RecordedAt.Before(earliest.RecordedAt) {
			earliest = &history[i]
		}
	}
	return earliest
}

func LatestVitals(history []VitalSigns) *VitalSigns {
	var latest *VitalSigns
	for i := range history {
		if latest == nil || history[i].RecordedAt.After(latest.RecordedAt) {
			latest = &history[i]
		}
	}
	return latest
}
