package verification

import (
	"regexp"
	"strings"
)

// Citation marker forms recognized by the extractor:
//
//	(<term>, <date-or-specialty-or-status-token>)  e.g. "(eGFR 42, Feb 12)"
//	[DocName p.X]                                  e.g. "[Discharge Summary p.3]"
//
// A parenthetical qualifies only if it carries at least one signal that it
// is a clinical reference rather than ordinary prose in parentheses.
var (
	parentheticalRe = regexp.MustCompile(`\([^()]*\)`)
	bracketRe       = regexp.MustCompile(`\[[^\[\]]+ p\.\d+\]`)
	monthDayRe      = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2}\b`)
)

// specialtyTokens are the clinical specialty markers that qualify a
// parenthetical as a citation.
var specialtyTokens = []string{
	"cardiology", "pcp", "gi", "neuro", "pulm", "endo", "rheum", "oncology",
}

// statusTokens are medication-status markers that qualify a parenthetical.
var statusTokens = []string{"on_hold", "active"}

// ExtractCitations scans free text for citation markers and returns them in
// order of occurrence. Duplicates are preserved; verification is
// per-occurrence, not per-unique-citation. Text with no markers yields an
// empty slice, never an error.
func ExtractCitations(text string) []string {
	var out []string
	for _, loc := range markerLocations(text) {
		out = append(out, text[loc[0]:loc[1]])
	}
	return out
}

// markerLocations returns the [start, end) offsets of every citation marker
// in text, in order. ValidateInsightCitations uses offsets directly so that
// duplicate markers annotate independently.
func markerLocations(text string) [][2]int {
	var locs [][2]int
	for _, m := range parentheticalRe.FindAllStringIndex(text, -1) {
		if qualifiesAsCitation(text[m[0]:m[1]]) {
			locs = append(locs, [2]int{m[0], m[1]})
		}
	}
	for _, m := range bracketRe.FindAllStringIndex(text, -1) {
		locs = append(locs, [2]int{m[0], m[1]})
	}
	// restore document order after merging the two forms
	for i := 1; i < len(locs); i++ {
		for j := i; j > 0 && locs[j][0] < locs[j-1][0]; j-- {
			locs[j], locs[j-1] = locs[j-1], locs[j]
		}
	}
	// A bracket marker can nest inside a qualifying parenthetical (or the
	// reverse). Keep the outermost marker; overlapping spans would make the
	// offsets unusable for slicing.
	out := locs[:0]
	end := 0
	for _, loc := range locs {
		if loc[0] < end {
			continue
		}
		out = append(out, loc)
		end = loc[1]
	}
	return out
}

func qualifiesAsCitation(s string) bool {
	lower := strings.ToLower(s)
	if monthDayRe.MatchString(lower) {
		return true
	}
	if strings.Contains(lower, "dx:") {
		return true
	}
	for _, tok := range statusTokens {
		if containsToken(lower, tok) {
			return true
		}
	}
	for _, tok := range specialtyTokens {
		if containsToken(lower, tok) {
			return true
		}
	}
	return false
}

// containsToken reports whether s contains word as a whole token. Plain
// substring matching would let short tokens like "gi" fire inside ordinary
// words ("margin", "region"). Hyphens and underscores are token characters
// so "a-fib" and "on_hold" survive splitting.
func containsToken(s, word string) bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9' || r == '_' || r == '-')
	})
	for _, f := range fields {
		if strings.EqualFold(f, word) {
			return true
		}
	}
	return false
}
