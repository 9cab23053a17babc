package verification

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chartguard/chartguard/internal/domain/snapshot"
)

// CitationCheck is the verdict for one extracted citation occurrence.
type CitationCheck struct {
	Citation      string `json:"citation"`
	Verified      bool   `json:"verified"`
	MatchedSource string `json:"matched_source,omitempty"`
}

// ValidationResult is the outcome of checking one insight's citations.
type ValidationResult struct {
	Original    string          `json:"original"`
	Validated   string          `json:"validated"`
	Citations   []CitationCheck `json:"citations"`
	AllVerified bool            `json:"all_verified"`
}

// ValidationSummary aggregates citation counts across a batch of insights.
type ValidationSummary struct {
	Total      int                `json:"total"`
	Verified   int                `json:"verified"`
	Unverified int                `json:"unverified"`
	Details    []ValidationResult `json:"details"`
}

// Insight handling modes for ValidateClinicalInsights.
const (
	ModeFilter = "filter" // drop insights with any unverified citation
	ModeMark   = "mark"   // keep every insight, annotate failed citations
)

// UnverifiedSuffix is appended immediately after a citation whose check
// failed.
const UnverifiedSuffix = " [unverified]"

func mustSnapshot(snap *snapshot.Snapshot) {
	if snap == nil {
		// A nil snapshot is a caller bug, not a clinical data gap. A patient
		// with no data arrives as a snapshot with empty slices.
		panic("verification: nil snapshot")
	}
}

// VerifyCitation checks one citation against labs, then medications, then
// diagnoses, then vitals, returning on the first match. Labs carry the most
// specific signal; vitals come last because bare vitals numbers collide
// easily with other numeric mentions.
func VerifyCitation(citation string, snap *snapshot.Snapshot) CitationCheck {
	mustSnapshot(snap)
	lower := strings.ToLower(citation)

	if src, ok := matchLab(lower, snap.Labs); ok {
		return CitationCheck{Citation: citation, Verified: true, MatchedSource: src}
	}
	if src, ok := matchMedication(lower, snap.Medications); ok {
		return CitationCheck{Citation: citation, Verified: true, MatchedSource: src}
	}
	if src, ok := matchDiagnosis(lower, snap.ActiveDiagnoses()); ok {
		return CitationCheck{Citation: citation, Verified: true, MatchedSource: src}
	}
	if src, ok := matchVitals(lower, snap.Vitals); ok {
		return CitationCheck{Citation: citation, Verified: true, MatchedSource: src}
	}
	return CitationCheck{Citation: citation, Verified: false}
}

func matchLab(lower string, labs []snapshot.LabResult) (string, bool) {
	for _, lab := range labs {
		name := strings.ToLower(lab.Name)
		prefix := name
		if len(prefix) > 4 {
			prefix = prefix[:4]
		}
		if strings.Contains(lower, prefix) && containsDateToken(lower, lab.CollectedAt) {
			return fmt.Sprintf("Lab: %s %s %s on %s",
				lab.Name, formatValue(lab.Value), lab.Unit,
				lab.CollectedAt.Format("Jan 2, 2006")), true
		}
		// A bare value match is accepted as partial verification.
		if strings.Contains(lower, formatValue(lab.Value)) {
			return fmt.Sprintf("Lab: %s %s %s (value match)",
				lab.Name, formatValue(lab.Value), lab.Unit), true
		}
	}
	return "", false
}

func matchMedication(lower string, meds []snapshot.Medication) (string, bool) {
	for _, m := range meds {
		drug := strings.ToLower(drugToken(m.Drug))
		if drug == "" || !strings.Contains(lower, drug) {
			continue
		}
		// Matching the recorded status raises fidelity of the description;
		// a drug-name-only match still verifies.
		if containsToken(lower, m.Status) {
			return fmt.Sprintf("Medication: %s (%s)", m.Drug, m.Status), true
		}
		return fmt.Sprintf("Medication: %s", m.Drug), true
	}
	return "", false
}

func matchDiagnosis(lower string, diagnoses []snapshot.Diagnosis) (string, bool) {
	for _, d := range diagnoses {
		if !diagnosisNameMatches(lower, d.Name) {
			continue
		}
		if containsToken(lower, d.Specialty) || strings.Contains(lower, "dx:") {
			return fmt.Sprintf("Diagnosis: %s (%s)", d.Name, d.Specialty), true
		}
		return fmt.Sprintf("Diagnosis: %s", d.Name), true
	}
	return "", false
}

func diagnosisNameMatches(lower, diagnosisName string) bool {
	name := strings.ToLower(diagnosisName)
	prefix := name
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	if strings.Contains(lower, prefix) {
		return true
	}
	for _, syn := range synonymsFor(diagnosisName) {
		if containsToken(lower, syn) {
			return true
		}
	}
	return false
}

func matchVitals(lower string, v *snapshot.VitalSigns) (string, bool) {
	if v == nil {
		return "", false
	}
	if v.BP != "" && strings.Contains(lower, v.BP) {
		return fmt.Sprintf("Vitals: BP %s on %s", v.BP, v.RecordedAt.Format("Jan 2, 2006")), true
	}
	if v.HeartRate > 0 && strings.Contains(lower, strconv.Itoa(v.HeartRate)) {
		return fmt.Sprintf("Vitals: HR %d on %s", v.HeartRate, v.RecordedAt.Format("Jan 2, 2006")), true
	}
	if v.O2Saturation > 0 && strings.Contains(lower, strconv.Itoa(v.O2Saturation)) {
		return fmt.Sprintf("Vitals: O2 sat %d%% on %s", v.O2Saturation, v.RecordedAt.Format("Jan 2, 2006")), true
	}
	return "", false
}

// containsDateToken reports whether the citation carries a month/day token
// for the given date, with or without a zero-padded day.
func containsDateToken(lower string, t time.Time) bool {
	return strings.Contains(lower, strings.ToLower(t.Format("Jan 2"))) ||
		strings.Contains(lower, strings.ToLower(t.Format("Jan 02")))
}

// formatValue renders a lab value the way it is charted: no trailing zeros,
// no exponent.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// drugToken returns the drug proper from a recorded medication string,
// stripping dose suffixes ("Furosemide 40mg" -> "Furosemide").
func drugToken(drug string) string {
	fields := strings.Fields(drug)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ValidateInsightCitations extracts every citation in the insight, verifies
// each occurrence, and rebuilds the text with UnverifiedSuffix appended
// after any citation that failed. AllVerified is true when every citation
// verified, or when the text carried no citations at all — an insight that
// makes no citations makes no false ones.
func ValidateInsightCitations(insight string, snap *snapshot.Snapshot) ValidationResult {
	mustSnapshot(snap)

	locs := markerLocations(insight)
	result := ValidationResult{Original: insight, AllVerified: true}
	if len(locs) == 0 {
		result.Validated = insight
		return result
	}

	var b strings.Builder
	prev := 0
	for _, loc := range locs {
		check := VerifyCitation(insight[loc[0]:loc[1]], snap)
		result.Citations = append(result.Citations, check)

		b.WriteString(insight[prev:loc[1]])
		if !check.Verified {
			b.WriteString(UnverifiedSuffix)
			result.AllVerified = false
		}
		prev = loc[1]
	}
	b.WriteString(insight[prev:])
	result.Validated = b.String()
	return result
}

// ValidateClinicalInsights applies citation validation to a batch of
// insights. In filter mode only fully-verified insights survive, unchanged.
// In mark mode every insight survives with failed citations annotated.
func ValidateClinicalInsights(insights []string, snap *snapshot.Snapshot, mode string) []string {
	mustSnapshot(snap)

	out := make([]string, 0, len(insights))
	for _, insight := range insights {
		res := ValidateInsightCitations(insight, snap)
		switch mode {
		case ModeFilter:
			if res.AllVerified {
				out = append(out, res.Original)
			}
		default: // ModeMark
			out = append(out, res.Validated)
		}
	}
	return out
}

// Summarize aggregates per-citation verdicts across all insights for
// observability.
func Summarize(insights []string, snap *snapshot.Snapshot) ValidationSummary {
	mustSnapshot(snap)

	var sum ValidationSummary
	for _, insight := range insights {
		res := ValidateInsightCitations(insight, snap)
		sum.Details = append(sum.Details, res)
		for _, c := range res.Citations {
			sum.Total++
			if c.Verified {
				sum.Verified++
			} else {
				sum.Unverified++
			}
		}
	}
	return sum
}
