package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/lead-lens/internal/domain"
	"github.com/spec-kit/lead-lens/internal/events"
	"github.com/spec-kit/lead-lens/internal/observability"
	"github.com/spec-kit/lead-lens/internal/repository"
)

// AuditRecorder appends an audit entry for every successful Salesforce write. Failures are
// reported but never undo the write.
type AuditRecorder struct {
	repo    repository.AuditRepository
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAuditRecorder creates the recorder.
func NewAuditRecorder(repo repository.AuditRepository, metrics *observability.Metrics, logger *zap.Logger) *AuditRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditRecorder{repo: repo, metrics: metrics, logger: logger}
}

// RegisterHandlers subscribes to events.
func (r *AuditRecorder) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventContactUpdated, r.handleContactUpdated)
}

// Record appends one entry.
func (r *AuditRecorder) Record(ctx context.Context, entry *domain.AuditEntry) error {
	if err := r.repo.Create(ctx, entry); err != nil {
		r.metrics.RecordAuditFailure()
		return fmt.Errorf("write audit entry for %s: %w", entry.SFRecordID, err)
	}
	return nil
}

func (r *AuditRecorder) handleContactUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ContactUpdatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}

	entry := &domain.AuditEntry{
		SFRecordID: event.RecordID,
		Action:     domain.AuditActionUpdate,
		Before:     payload.Before,
		After:      payload.After,
		IP:         event.Actor.IP,
		UserAgent:  event.Actor.UserAgent,
	}
	if event.Actor.PrincipalID != "" {
		id := event.Actor.PrincipalID
		entry.UserID = &id
	}

	if err := r.Record(ctx, entry); err != nil {
		return err
	}
	r.logger.Debug("audit entry recorded", zap.String("record_id", entry.SFRecordID), zap.String("audit_id", entry.ID))
	return nil
}
