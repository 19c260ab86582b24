package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the operations for the settlement audit archive.
// Archive must be idempotent on event ID so a redelivered event archives
// exactly once.
type Repository interface {
	Archive(ctx context.Context, rec *Record) error
	GetByEventID(ctx context.Context, eventID uuid.UUID) (*Record, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Record, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	ListByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*Record, error)
}
