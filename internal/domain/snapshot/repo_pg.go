package snapshot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG returns a Repository backed by PostgreSQL.
func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const diagnosisCols = `id, patient_id, name, type, icd_code, specialty, created_at`
const medicationCols = `id, patient_id, drug, dose, frequency, status, indication, notes, started_at, created_at`
const labCols = `id, patient_id, name, value, unit, abnormal, collected_at`
const vitalsCols = `id, patient_id, bp, heart_rate, o2_saturation, weight_kg, recorded_at`
const symptomCols = `id, patient_id, description, severity, onset_date`

// GetByPatient assembles the full snapshot inside a single repeatable-read
// transaction so labs, medications and diagnoses reflect one point in time.
func (r *repoPG) GetByPatient(ctx context.Context, patientID uuid.UUID) (*Snapshot, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	snap := &Snapshot{PatientID: patientID, AssembledAt: time.Now().UTC()}

	if snap.Diagnoses, err = r.diagnoses(ctx, tx, patientID); err != nil {
		return nil, err
	}
	if snap.Medications, err = r.medications(ctx, tx, patientID); err != nil {
		return nil, err
	}
	if snap.Labs, err = r.labs(ctx, tx, patientID); err != nil {
		return nil, err
	}
	if snap.VitalsHistory, err = r.vitalsHistory(ctx, tx, patientID); err != nil {
		return nil, err
	}
	if len(snap.VitalsHistory) > 0 {
		snap.Vitals = LatestVitals(snap.VitalsHistory)
	}
	if snap.Symptoms, err = r.symptoms(ctx, tx, patientID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *repoPG) diagnoses(ctx context.Context, tx pgx.Tx, patientID uuid.UUID) ([]Diagnosis, error) {
	rows, err := tx.Query(ctx, `SELECT `+diagnosisCols+` FROM diagnosis WHERE patient_id = $1 ORDER BY created_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Diagnosis
	for rows.Next() {
		var d Diagnosis
		if err := rows.Scan(&d.ID, &d.PatientID, &d.Name, &d.Type, &d.ICDCode, &d.Specialty, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repoPG) medications(ctx context.Context, tx pgx.Tx, patientID uuid.UUID) ([]Medication, error) {
	rows, err := tx.Query(ctx, `SELECT `+medicationCols+` FROM medication WHERE patient_id = $1 ORDER BY created_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Medication
	for rows.Next() {
		var m Medication
		if err := rows.Scan(&m.ID, &m.PatientID, &m.Drug, &m.Dose, &m.Frequency, &m.Status, &m.Indication, &m.Notes, &m.StartedAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repoPG) labs(ctx context.Context, tx pgx.Tx, patientID uuid.UUID) ([]LabResult, error) {
	rows, err := tx.Query(ctx, `SELECT `+labCols+` FROM lab_result WHERE patient_id = $1 ORDER BY collected_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LabResult
	for rows.Next() {
		var l LabResult
		if err := rows.Scan(&l.ID, &l.PatientID, &l.Name, &l.Value, &l.Unit, &l.Abnormal, &l.CollectedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repoPG) vitalsHistory(ctx context.Context, tx pgx.Tx, patientID uuid.UUID) ([]VitalSigns, error) {
	rows, err := tx.Query(ctx, `SELECT `+vitalsCols+` FROM vital_signs WHERE patient_id = $1 ORDER BY recorded_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VitalSigns
	for rows.Next() {
		var v VitalSigns
		if err := rows.Scan(&v.ID, &v.PatientID, &v.BP, &v.HeartRate, &v.O2Saturation, &v.WeightKg, &v.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *repoPG) symptoms(ctx context.Context, tx pgx.Tx, patientID uuid.UUID) ([]Symptom, error) {
	rows, err := tx.Query(ctx, `SELECT `+symptomCols+` FROM symptom WHERE patient_id = $1 ORDER BY onset_date NULLS LAST`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Symptom
	for rows.Next() {
		var s Symptom
		if err := rows.Scan(&s.ID, &s.PatientID, &s.Description, &s.Severity, &s.OnsetDate); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
