package verification

import (
	"strings"
	"testing"
	"time"

	"github.com/chartguard/chartguard/internal/domain/snapshot"
)

func strPtr(s string) *string { return &s }

func testSnapshot() *snapshot.Snapshot {
	feb12 := time.Date(2026, 2, 12, 9, 30, 0, 0, time.UTC)
	return &snapshot.Snapshot{
		Labs: []snapshot.LabResult{
			{Name: "eGFR", Value: 42, Unit: "mL/min", Abnormal: true, CollectedAt: feb12},
			{Name: "Hemoglobin", Value: 10.8, Unit: "g/dL", Abnormal: true, CollectedAt: feb12},
		},
		Medications: []snapshot.Medication{
			{Drug: "Warfarin 5mg", Status: snapshot.MedicationOnHold},
			{Drug: "Furosemide 40mg", Status: snapshot.MedicationActive},
		},
		Diagnoses: []snapshot.Diagnosis{
			{Name: "Atrial fibrillation", Type: snapshot.DiagnosisConfirmed, Specialty: "cardiology"},
			{Name: "Hypertension", Type: snapshot.DiagnosisConfirmed, Specialty: "pcp"},
			{Name: "Lung cancer", Type: snapshot.DiagnosisRuledOut, Specialty: "oncology"},
		},
		Vitals: &snapshot.VitalSigns{
			BP: "152/94", HeartRate: 88, O2Saturation: 95,
			RecordedAt: feb12,
		},
	}
}

func TestVerifyCitation_LabMatches(t *testing.T) {
	snap := testSnapshot()

	tests := []struct {
		name       string
		citation   string
		verified   bool
		sourceFrag string
	}{
		{"name prefix plus date", "(eGFR 42, Feb 12)", true, "Lab: eGFR"},
		{"value-only partial match", "(filtration down to 42 this month)", true, "value match"},
		{"decimal value", "(hgb 10.8, anemia workup)", true, "Lab: Hemoglobin"},
		{"nothing matches", "(totally unrelated claim, Jan 3)", false, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			check := VerifyCitation(tc.citation, snap)
			if check.Verified != tc.verified {
				t.Fatalf("verified = %v, want %v (source %q)", check.Verified, tc.verified, check.MatchedSource)
			}
			if tc.sourceFrag != "" && !strings.Contains(check.MatchedSource, tc.sourceFrag) {
				t.Errorf("MatchedSource = %q, want fragment %q", check.MatchedSource, tc.sourceFrag)
			}
			if !tc.verified && check.MatchedSource != "" {
				t.Errorf("unverified check carries MatchedSource %q", check.MatchedSource)
			}
		})
	}
}

func TestVerifyCitation_MedicationStatusFidelity(t *testing.T) {
	snap := testSnapshot()

	withStatus := VerifyCitation("(warfarin, on_hold)", snap)
	if !withStatus.Verified || !strings.Contains(withStatus.MatchedSource, "on_hold") {
		t.Errorf("status-qualified match = %+v, want on_hold in source", withStatus)
	}

	nameOnly := VerifyCitation("(warfarin, active)", snap)
	if !nameOnly.Verified {
		t.Fatal("drug-name match should verify regardless of status fidelity")
	}
	if strings.Contains(nameOnly.MatchedSource, "on_hold") {
		t.Errorf("citation did not mention on_hold, source = %q", nameOnly.MatchedSource)
	}
}

func TestVerifyCitation_DiagnosisSynonyms(t *testing.T) {
	snap := testSnapshot()

	tests := []struct {
		citation string
		verified bool
	}{
		{"(afib, cardiology)", true},
		{"(a-fib noted, dx: arrhythmia)", true},
		{"(htn, pcp)", true},
		{"(atrial flutter, Feb 12)", true}, // 6-char prefix "atrial" matches
		{"(copd exacerbation, pulm)", false},
	}
	for _, tc := range tests {
		check := VerifyCitation(tc.citation, snap)
		if check.Verified != tc.verified {
			t.Errorf("VerifyCitation(%q).Verified = %v, want %v", tc.citation, check.Verified, tc.verified)
		}
	}
}

func TestVerifyCitation_RuledOutDiagnosisNeverMatches(t *testing.T) {
	snap := testSnapshot()
	check := VerifyCitation("(lung cancer, oncology)", snap)
	if check.Verified {
		t.Errorf("ruled_out diagnosis verified a citation: %+v", check)
	}
}

func TestVerifyCitation_Vitals(t *testing.T) {
	snap := testSnapshot()

	bp := VerifyCitation("(BP 152/94, cardiology)", snap)
	if !bp.Verified || !strings.Contains(bp.MatchedSource, "152/94") {
		t.Errorf("bp match = %+v", bp)
	}

	// lab priority wins over vitals when both could match
	lab := VerifyCitation("(eGFR 42, Feb 12)", snap)
	if !strings.HasPrefix(lab.MatchedSource, "Lab:") {
		t.Errorf("expected lab-sourced match, got %q", lab.MatchedSource)
	}
}

func TestVerifyCitation_NilSnapshotPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on nil snapshot")
		}
	}()
	VerifyCitation("(eGFR 42, Feb 12)", nil)
}

func TestValidateInsightCitations_NoCitations(t *testing.T) {
	snap := testSnapshot()
	insight := "Patient remains clinically stable without new complaints."

	res := ValidateInsightCitations(insight, snap)
	if !res.AllVerified {
		t.Error("absence of citations is not a failure")
	}
	if res.Validated != insight {
		t.Errorf("text without citations must be untouched: %q", res.Validated)
	}
	if len(res.Citations) != 0 {
		t.Errorf("expected no citation checks, got %d", len(res.Citations))
	}
}

func TestValidateInsightCitations_MarksFailures(t *testing.T) {
	snap := testSnapshot()
	insight := "Renal decline noted (eGFR 42, Feb 12) but also (troponin elevated, Jan 3)."

	res := ValidateInsightCitations(insight, snap)
	if res.AllVerified {
		t.Fatal("expected a failed citation")
	}
	want := "Renal decline noted (eGFR 42, Feb 12) but also (troponin elevated, Jan 3) [unverified]."
	if res.Validated != want {
		t.Errorf("Validated = %q, want %q", res.Validated, want)
	}
	if len(res.Citations) != 2 || !res.Citations[0].Verified || res.Citations[1].Verified {
		t.Errorf("per-citation verdicts wrong: %+v", res.Citations)
	}
}

func TestValidateInsightCitations_DuplicateOccurrences(t *testing.T) {
	snap := testSnapshot()
	insight := "(troponin 9, Jan 3) then again (troponin 9, Jan 3)."

	res := ValidateInsightCitations(insight, snap)
	if len(res.Citations) != 2 {
		t.Fatalf("expected 2 occurrence checks, got %d", len(res.Citations))
	}
	if got := strings.Count(res.Validated, UnverifiedSuffix); got != 2 {
		t.Errorf("each occurrence annotates independently, got %d suffixes", got)
	}
}

func TestValidateInsightCitations_NestedMarkers(t *testing.T) {
	snap := testSnapshot()
	insight := "Renal labs reviewed (eGFR 42, Feb 12 [CBC p.2]) with no change."

	res := ValidateInsightCitations(insight, snap)
	if len(res.Citations) != 1 {
		t.Fatalf("nested bracket must not produce a second check, got %d", len(res.Citations))
	}
	if got := res.Citations[0].Citation; got != "(eGFR 42, Feb 12 [CBC p.2])" {
		t.Errorf("citation = %q, want the outer marker", got)
	}
	if !res.Citations[0].Verified {
		t.Errorf("outer marker should verify against the eGFR lab: %+v", res.Citations[0])
	}
	if res.Validated != insight {
		t.Errorf("Validated = %q, want untouched input", res.Validated)
	}

	// Reverse nesting keeps the bracket as the outer marker.
	rev := ValidateInsightCitations("Per chart [Progress Note (Feb 12) p.3].", &snapshot.Snapshot{})
	if len(rev.Citations) != 1 {
		t.Fatalf("expected 1 check for parenthetical inside bracket, got %d", len(rev.Citations))
	}
	if got := rev.Citations[0].Citation; got != "[Progress Note (Feb 12) p.3]" {
		t.Errorf("citation = %q, want the bracket marker", got)
	}
}

func TestValidateClinicalInsights_Modes(t *testing.T) {
	snap := testSnapshot()
	insights := []string{
		"Anticoagulation held (warfarin, on_hold).",
		"Cardiac enzymes rising (troponin 9, Jan 3).",
		"No citations here.",
	}

	filtered := ValidateClinicalInsights(insights, snap, ModeFilter)
	if len(filtered) != 2 {
		t.Fatalf("filter mode kept %d insights, want 2", len(filtered))
	}
	for _, f := range filtered {
		if strings.Contains(f, UnverifiedSuffix) {
			t.Errorf("filter mode must return originals unchanged: %q", f)
		}
	}

	marked := ValidateClinicalInsights(insights, snap, ModeMark)
	if len(marked) != 3 {
		t.Fatalf("mark mode dropped insights: got %d", len(marked))
	}

	// filter output is a subset of mark mode's fully-verified entries
	verifiedMarked := make(map[string]bool)
	for i, m := range marked {
		if !strings.Contains(m, UnverifiedSuffix) {
			verifiedMarked[insights[i]] = true
		}
	}
	for _, f := range filtered {
		if !verifiedMarked[f] {
			t.Errorf("filter kept %q which mark mode flagged", f)
		}
	}
}

func TestSummarize(t *testing.T) {
	snap := testSnapshot()
	insights := []string{
		"Held anticoagulation (warfarin, on_hold) given afib history (afib, cardiology).",
		"Unsupported claim (troponin 9, Jan 3).",
	}

	sum := Summarize(insights, snap)
	if sum.Total != 3 || sum.Verified != 2 || sum.Unverified != 1 {
		t.Errorf("summary = %+v, want total 3 verified 2 unverified 1", sum)
	}
	if len(sum.Details) != 2 {
		t.Errorf("expected per-insight details, got %d", len(sum.Details))
	}
}

func TestVerifyCitation_Deterministic(t *testing.T) {
	snap := testSnapshot()
	citation := "(eGFR 42, Feb 12)"
	first := VerifyCitation(citation, snap)
	for i := 0; i < 5; i++ {
		if got := VerifyCitation(citation, snap); got != first {
			t.Fatalf("non-deterministic result on run %d: %+v vs %+v", i, got, first)
		}
	}
}
