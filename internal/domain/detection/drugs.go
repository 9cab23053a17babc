package detection

import (
	"strings"

	"github.com/chartguard/chartguard/internal/domain/snapshot"
)

// Drug family names used by the detectors.
const (
	FamilyDiuretic      = "diuretic"
	FamilyNSAID         = "nsaid"
	FamilyGLP1          = "glp1_agonist"
	FamilyAnticoagulant = "anticoagulant"
)

// DrugFamilies maps a family to the name fragments that identify its
// members. Matching is a case-insensitive substring test against the
// recorded drug string, so "Furosemide 40mg" and "furosemide" both hit.
// Add fragments here to teach detectors new brand or generic names.
var DrugFamilies = map[string][]string{
	FamilyDiuretic:      {"furosemide", "lasix", "hydrochlorothiazide", "hctz"},
	FamilyNSAID:         {"ibuprofen", "naproxen", "meloxicam", "nsaid"},
	FamilyGLP1:          {"semaglutide", "ozempic", "wegovy", "mounjaro", "tirzepatide"},
	FamilyAnticoagulant: {"warfarin", "coumadin", "apixaban", "eliquis", "rivaroxaban", "xarelto", "dabigatran", "pradaxa"},
}

// InFamily reports whether a recorded drug string belongs to the family.
func InFamily(drug, family string) bool {
	lower := strings.ToLower(drug)
	for _, frag := range DrugFamilies[family] {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// familyMedications returns the patient's medications belonging to the
// family, any status.
func familyMedications(snap *snapshot.Snapshot, family string) []snapshot.Medication {
	var out []snapshot.Medication
	for _, m := range snap.Medications {
		if InFamily(m.Drug, family) {
			out = append(out, m)
		}
	}
	return out
}

// onActiveFamilyMember reports whether any medication in the family has
// status active.
func onActiveFamilyMember(snap *snapshot.Snapshot, family string) bool {
	for _, m := range familyMedications(snap, family) {
		if m.Status == snapshot.MedicationActive {
			return true
		}
	}
	return false
}
