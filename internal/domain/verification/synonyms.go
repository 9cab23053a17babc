package verification

import "strings"

// DiagnosisSynonyms maps a canonical diagnosis term to the shorthand a
// clinician might use in a citation. Keys are matched as substrings of the
// recorded diagnosis name; synonyms are matched as whole tokens of the
// citation text. Extend the map to teach the verifier new shorthand; no
// control flow changes are needed.
var DiagnosisSynonyms = map[string][]string{
	"atrial fibrillation":     {"afib", "a-fib", "af"},
	"diabetes":                {"dm", "dm2", "t2dm"},
	"hypertension":            {"htn"},
	"coronary artery disease": {"cad", "coronary"},
	"heart failure":           {"chf", "hf", "hfref", "hfpef"},
	"chronic kidney disease":  {"ckd"},
	"gastroesophageal reflux": {"gerd"},
	"hyperlipidemia":          {"hld"},
	"chronic obstructive pulmonary disease": {"copd"},
}

// synonymsFor returns the shorthand tokens for a recorded diagnosis name,
// or nil when no canonical term matches.
func synonymsFor(diagnosisName string) []string {
	lower := strings.ToLower(diagnosisName)
	var out []string
	for canonical, syns := range DiagnosisSynonyms {
		if strings.Contains(lower, canonical) {
			out = append(out, syns...)
		}
	}
	return out
}
