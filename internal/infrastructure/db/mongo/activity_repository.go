package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
)

const collectionActivity = "activity_logs"

// ActivityMirror copies audit records into MongoDB for offline reporting.
// The backend table stays the source of truth.
type ActivityMirror struct {
	col *mongo.Collection
}

func NewActivityMirror(db *mongo.Database) *ActivityMirror {
	return &ActivityMirror{col: db.Collection(collectionActivity)}
}

type activityDoc struct {
	Action     string         `bson:"action"`
	EntityType string         `bson:"entity_type"`
	EntityID   string         `bson:"entity_id,omitempty"`
	EntityName string         `bson:"entity_name,omitempty"`
	Details    map[string]any `bson:"details,omitempty"`
	UserID     string         `bson:"user_id"`
	CreatedAt  time.Time      `bson:"created_at"`
	MirroredAt time.Time      `bson:"mirrored_at"`
}

// Insert writes one record.
func (r *ActivityMirror) Insert(ctx context.Context, rec domain.ActivityRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := rec.CreatedAt.Time
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.col.InsertOne(ctx, activityDoc{
		Action:     string(rec.Action),
		EntityType: string(rec.EntityType),
		EntityID:   rec.EntityID,
		EntityName: rec.EntityName,
		Details:    rec.Details,
		UserID:     rec.ActorID,
		CreatedAt:  created.UTC(),
		MirroredAt: time.Now().UTC(),
	})
	return err
}

// EnsureIndexes creates the lookup indexes on the mirror collection.
func (r *ActivityMirror) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

var _ ports.ActivitySink = (*ActivityMirror)(nil)
