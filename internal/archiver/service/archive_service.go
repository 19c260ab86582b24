// Package service implements the audit archiver's event processing: the base
// service writes one event into the Mongo archive, and the worker pool
// wrapper fans archiving out across a bounded pool.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cosmetic-storefront/internal/domain/audit"
	"github.com/cosmetic-storefront/internal/domain/shared"
)

// AuditArchiveService archives settlement events into the audit repository
type AuditArchiveService struct {
	auditRepo audit.Repository
	logger    *slog.Logger
}

// NewAuditArchiveService creates the base archive service
func NewAuditArchiveService(auditRepo audit.Repository, logger *slog.Logger) *AuditArchiveService {
	return &AuditArchiveService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// ArchiveEvent writes one settlement event into the archive. The repository
// upserts on event ID, so redelivered events archive at most once.
func (s *AuditArchiveService) ArchiveEvent(ctx context.Context, event *shared.SettlementEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	if err := s.auditRepo.Archive(ctx, audit.FromEvent(event)); err != nil {
		logger.Error("Failed to archive settlement event",
			"event_id", event.EventID.String(),
			"user_id", event.UserID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to archive settlement event %s: %w", event.EventID.String(), err)
	}

	logger.Info("Archived settlement event",
		"event_id", event.EventID.String(),
		"user_id", event.UserID.String(),
		"kind", event.Kind,
	)
	return nil
}
