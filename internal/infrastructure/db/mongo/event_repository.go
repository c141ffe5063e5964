package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/order-tracking/internal/core/domain"
)

const collectionOrderEvents = "order_status_events"

// EventRepository implements ports.OrderEventLog using MongoDB.
type EventRepository struct {
	col *mongo.Collection
	now func() time.Time
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(collectionOrderEvents), now: time.Now}
}

// InsertEvent appends one status change to the audit collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.OrderEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"order_id":        event.OrderID,
		"tracking_number": event.TrackingNumber,
		"user_id":         event.UserID,
		"status":          string(event.Status),
		"occurred_at":     event.OccurredAt.UTC(),
		"recorded_at":     r.now().UTC(),
	}
	if event.Notes != "" {
		doc["notes"] = event.Notes
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// EnsureIndexes creates the lookup indexes on the audit collection.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "tracking_number", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
