package verification

import (
	"reflect"
	"testing"
)

func TestExtractCitations(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "month-day parenthetical",
			text: "Creatinine is trending up (eGFR 42, Feb 12).",
			want: []string{"(eGFR 42, Feb 12)"},
		},
		{
			name: "specialty token",
			text: "Follow-up was advised (cardiology).",
			want: []string{"(cardiology)"},
		},
		{
			name: "dx marker",
			text: "Known arrhythmia (dx: atrial fibrillation).",
			want: []string{"(dx: atrial fibrillation)"},
		},
		{
			name: "medication status token",
			text: "Diuresis continues (furosemide, active).",
			want: []string{"(furosemide, active)"},
		},
		{
			name: "bracket form",
			text: "Documented previously [Discharge Summary p.3].",
			want: []string{"[Discharge Summary p.3]"},
		},
		{
			name: "plain parenthetical ignored",
			text: "The patient (a retired teacher) feels well.",
			want: nil,
		},
		{
			name: "short token needs word boundary",
			text: "No regression at the margin (per imaging).",
			want: nil,
		},
		{
			name: "duplicates preserved in order",
			text: "(eGFR 42, Feb 12) repeated later (eGFR 42, Feb 12).",
			want: []string{"(eGFR 42, Feb 12)", "(eGFR 42, Feb 12)"},
		},
		{
			name: "mixed forms keep document order",
			text: "[Note p.1] and then (htn, dx: hypertension) close out.",
			want: []string{"[Note p.1]", "(htn, dx: hypertension)"},
		},
		{
			name: "bracket nested in qualifying parenthetical keeps outer marker",
			text: "Renal labs reviewed (eGFR 42, Feb 12 [CBC p.2]) with no change.",
			want: []string{"(eGFR 42, Feb 12 [CBC p.2])"},
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractCitations(tc.text)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ExtractCitations(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestExtractCitations_Idempotent(t *testing.T) {
	text := "Renal function declined (eGFR 42, Feb 12); anticoagulation held (warfarin, on_hold)."
	first := ExtractCitations(text)
	second := ExtractCitations(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-extraction differs: %v vs %v", first, second)
	}
}

func TestContainsToken(t *testing.T) {
	if !containsToken("seen by gi service", "gi") {
		t.Error("expected whole-token match")
	}
	if containsToken("surgical margin clear", "gi") {
		t.Error("substring inside a word must not match")
	}
	if !containsToken("warfarin on_hold since admission", "on_hold") {
		t.Error("underscore tokens should survive splitting")
	}
}
