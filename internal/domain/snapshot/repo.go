package snapshot

import (
	"context"

	"github.com/google/uuid"
)

// Repository assembles a patient's structured clinical snapshot from the
// relational store. Implementations must return a consistent read; the
// engine treats the result as immutable.
type Repository interface {
	GetByPatient(ctx context.Context, patientID uuid.UUID) (*Snapshot, error)
}
