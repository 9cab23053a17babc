package detection

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chartguard/chartguard/internal/domain/snapshot"
	"github.com/chartguard/chartguard/internal/platform/telemetry"
)

// Alert review statuses.
var validAlertStatuses = map[string]bool{
	"fired": true, "acknowledged": true, "dismissed": true,
}

// Service runs the detector battery against stored snapshots and persists
// what fires. The detectors themselves stay pure; all I/O lives here.
type Service struct {
	snapshots snapshot.Repository
	alerts    PatternAlertRepository
	metrics   *telemetry.Provider
}

func NewService(snapshots snapshot.Repository, alerts PatternAlertRepository) *Service {
	return &Service{snapshots: snapshots, alerts: alerts}
}

// SetMetrics attaches a telemetry provider. A nil provider is a no-op.
func (s *Service) SetMetrics(m *telemetry.Provider) { s.metrics = m }

// RunForPatient assembles the patient's snapshot, evaluates every
// detector, persists fired alerts, and returns them. Alerts are always
// recomputed from the current snapshot; stored rows exist only for the
// review workflow.
func (s *Service) RunForPatient(ctx context.Context, patientID uuid.UUID) ([]Alert, error) {
	snap, err := s.snapshots.GetByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	alerts := DetectAll(snap)
	for _, a := range alerts {
		evidence, err := json.Marshal(a.Evidence)
		if err != nil {
			return nil, fmt.Errorf("marshal evidence for %s: %w", a.AlertType, err)
		}
		row := &PatternAlert{
			PatientID:   patientID,
			AlertType:   a.AlertType,
			Priority:    a.Priority,
			Title:       a.Title,
			Description: a.Description,
			Evidence:    evidence,
			Status:      "fired",
			FiredAt:     time.Now().UTC(),
		}
		if err := s.alerts.Create(ctx, row); err != nil {
			return nil, fmt.Errorf("persist alert %s: %w", a.AlertType, err)
		}
		s.metrics.AlertFired(a.AlertType)
	}
	return alerts, nil
}

// Evaluate runs the detectors without persisting anything.
func (s *Service) Evaluate(ctx context.Context, patientID uuid.UUID) ([]Alert, error) {
	snap, err := s.snapshots.GetByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return DetectAll(snap), nil
}

func (s *Service) GetAlert(ctx context.Context, id uuid.UUID) (*PatternAlert, error) {
	return s.alerts.GetByID(ctx, id)
}

func (s *Service) ListAlertsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PatternAlert, int, error) {
	return s.alerts.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) UpdateAlertStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !validAlertStatuses[status] {
		return fmt.Errorf("invalid status: %s", status)
	}
	return s.alerts.UpdateStatus(ctx, id, status)
}
