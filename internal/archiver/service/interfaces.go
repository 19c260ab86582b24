package service

import (
	"context"

	"github.com/cosmetic-storefront/internal/domain/shared"
)

// ArchiveService writes consumed settlement events into the audit archive
type ArchiveService interface {
	ArchiveEvent(ctx context.Context, event *shared.SettlementEvent) error
}
