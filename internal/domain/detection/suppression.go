package detection

import "github.com/chartguard/chartguard/internal/domain/snapshot"

// Suppression predicates are deliberate business rules, kept as named
// checks so they can be asserted independently of the trigger logic they
// gate.

// OnGLP1Agonist suppresses the occult-malignancy detector: weight loss on
// an active GLP-1 agonist is expected and intentional.
func OnGLP1Agonist(snap *snapshot.Snapshot) bool {
	return onActiveFamilyMember(snap, FamilyGLP1)
}

// AnticoagulationAddressed suppresses the missed-anticoagulation detector.
// An active anticoagulant means no gap; an explicitly held one means a
// clinician already made the call, and re-alerting on reviewed cases only
// breeds alert fatigue.
func AnticoagulationAddressed(snap *snapshot.Snapshot) bool {
	for _, m := range familyMedications(snap, FamilyAnticoagulant) {
		if m.Status == snapshot.MedicationActive || m.Status == snapshot.MedicationOnHold {
			return true
		}
	}
	return false
}
