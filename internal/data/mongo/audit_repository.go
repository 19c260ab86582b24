// Package mongo provides MongoDB implementations of the archive
// repositories used by the audit pipeline.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cosmetic-storefront/internal/domain/audit"
)

const (
	// AuditCollectionName is the name of the settlement audit collection
	AuditCollectionName = "settlement_audit"
)

// AuditRepository implements the audit.Repository interface for MongoDB
type AuditRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAuditRepository creates a new MongoDB audit repository
func NewAuditRepository(logger *slog.Logger, db *mongo.Database) audit.Repository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureIndexes creates the unique event_id index backing idempotent
// archiving. Called once at startup.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(AuditCollectionName)

	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"event_id": 1},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		r.logger.Error("Failed to create audit indexes", "error", err)
		return fmt.Errorf("failed to create audit indexes: %w", err)
	}

	return nil
}

// Archive stores a settlement record. Redelivered events are absorbed: an
// upsert keyed on event_id writes the document at most once.
func (r *AuditRepository) Archive(ctx context.Context, rec *audit.Record) error {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"event_id": rec.EventID}
	update := bson.M{"$setOnInsert": rec}
	opts := options.Update().SetUpsert(true)

	_, err := collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		r.logger.Error("Failed to archive settlement record",
			"event_id", rec.EventID.String(),
			"error", err)
		return fmt.Errorf("failed to archive settlement record: %w", err)
	}

	return nil
}

// GetByEventID retrieves an archived record by its event ID.
// Returns ErrRecordNotFound if no record exists for the event.
func (r *AuditRepository) GetByEventID(ctx context.Context, eventID uuid.UUID) (*audit.Record, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"event_id": eventID}
	var rec audit.Record
	err := collection.FindOne(ctx, filter).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, audit.ErrRecordNotFound{EventID: eventID}
		}
		r.logger.Error("Failed to get audit record",
			"event_id", eventID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get audit record: %w", err)
	}

	return &rec, nil
}

// ListByUser retrieves paginated archive records for a user, newest first
func (r *AuditRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*audit.Record, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{"user_id": userID}
	opts := options.Find().
		SetSort(bson.M{"occurred_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list audit records",
			"user_id", userID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*audit.Record
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode audit records",
			"user_id", userID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to decode audit records: %w", err)
	}

	return records, nil
}

// CountByUser counts the archive records for a user
func (r *AuditRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	collection := r.db.Collection(AuditCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		r.logger.Error("Failed to count audit records",
			"user_id", userID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count audit records: %w", err)
	}

	return count, nil
}

// ListByTimeRange retrieves paginated archive records within the window,
// newest first
func (r *AuditRepository) ListByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*audit.Record, error) {
	collection := r.db.Collection(AuditCollectionName)

	filter := bson.M{
		"occurred_at": bson.M{
			"$gte": startTime,
			"$lte": endTime,
		},
	}
	opts := options.Find().
		SetSort(bson.M{"occurred_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list audit records by time range",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to list audit records by time range: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*audit.Record
	if err := cursor.All(ctx, &records); err != nil {
		r.logger.Error("Failed to decode audit records",
			"start_time", startTime,
			"end_time", endTime,
			"error", err)
		return nil, fmt.Errorf("failed to decode audit records: %w", err)
	}

	return records, nil
}
