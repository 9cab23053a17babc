package detection

import (
	"context"

	"github.com/google/uuid"
)

// PatternAlertRepository stores fired alerts for clinician review.
type PatternAlertRepository interface {
	Create(ctx context.Context, a *PatternAlert) error
	GetByID(ctx context.Context, id uuid.UUID) (*PatternAlert, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PatternAlert, int, error)
}
