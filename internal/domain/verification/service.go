package verification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/chartguard/chartguard/internal/domain/snapshot"
	"github.com/chartguard/chartguard/internal/platform/telemetry"
)

// Service runs the citation verifier against snapshots assembled from the
// store. The engine itself is pure; the service owns the one I/O step of
// fetching the snapshot.
type Service struct {
	snapshots snapshot.Repository
	metrics   *telemetry.Provider
}

func NewService(snapshots snapshot.Repository) *Service {
	return &Service{snapshots: snapshots}
}

// SetMetrics attaches a telemetry provider. A nil provider is a no-op.
func (s *Service) SetMetrics(m *telemetry.Provider) { s.metrics = m }

var validModes = map[string]bool{
	ModeFilter: true, ModeMark: true,
}

func (s *Service) ValidateForPatient(ctx context.Context, patientID uuid.UUID, insights []string, mode string) ([]string, error) {
	if mode == "" {
		mode = ModeMark
	}
	if !validModes[mode] {
		return nil, fmt.Errorf("invalid mode: %s", mode)
	}
	snap, err := s.snapshots.GetByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	out := ValidateClinicalInsights(insights, snap, mode)
	sum := Summarize(insights, snap)
	s.metrics.CitationChecks(sum.Verified, sum.Unverified)
	return out, nil
}

func (s *Service) ValidateInsight(ctx context.Context, patientID uuid.UUID, insight string) (*ValidationResult, error) {
	snap, err := s.snapshots.GetByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	res := ValidateInsightCitations(insight, snap)
	verified, unverified := 0, 0
	for _, cc := range res.Citations {
		if cc.Verified {
			verified++
		} else {
			unverified++
		}
	}
	s.metrics.CitationChecks(verified, unverified)
	return &res, nil
}

func (s *Service) SummaryForPatient(ctx context.Context, patientID uuid.UUID, insights []string) (*ValidationSummary, error) {
	snap, err := s.snapshots.GetByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	sum := Summarize(insights, snap)
	s.metrics.CitationChecks(sum.Verified, sum.Unverified)
	return &sum, nil
}
