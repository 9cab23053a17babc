package detection

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type alertRepoPG struct{ pool *pgxpool.Pool }

// NewPatternAlertRepoPG returns a PatternAlertRepository backed by
// PostgreSQL.
func NewPatternAlertRepoPG(pool *pgxpool.Pool) PatternAlertRepository {
	return &alertRepoPG{pool: pool}
}

const alertCols = `id, patient_id, alert_type, priority, title, description,
	evidence, status, fired_at, resolved_at, created_at, updated_at`

func (r *alertRepoPG) Create(ctx context.Context, a *PatternAlert) error {
	a.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pattern_alert (id, patient_id, alert_type, priority, title,
			description, evidence, status, fired_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.PatientID, a.AlertType, a.Priority, a.Title,
		a.Description, a.Evidence, a.Status, a.FiredAt)
	return err
}

func (r *alertRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*PatternAlert, error) {
	var a PatternAlert
	err := r.pool.QueryRow(ctx, `SELECT `+alertCols+` FROM pattern_alert WHERE id = $1`, id).
		Scan(&a.ID, &a.PatientID, &a.AlertType, &a.Priority, &a.Title, &a.Description,
			&a.Evidence, &a.Status, &a.FiredAt, &a.ResolvedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *alertRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE pattern_alert
		SET status = $2,
		    resolved_at = CASE WHEN $2 IN ('acknowledged','dismissed') THEN NOW() ELSE resolved_at END,
		    updated_at = NOW()
		WHERE id = $1`, id, status)
	return err
}

func (r *alertRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PatternAlert, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pattern_alert WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+alertCols+` FROM pattern_alert
		WHERE patient_id = $1 ORDER BY fired_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*PatternAlert
	for rows.Next() {
		var a PatternAlert
		if err := rows.Scan(&a.ID, &a.PatientID, &a.AlertType, &a.Priority, &a.Title, &a.Description,
			&a.Evidence, &a.Status, &a.FiredAt, &a.ResolvedAt, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &a)
	}
	return out, total, rows.Err()
}
