package ports

import (
	"context"
	"time"

	"github.com/kikipackaging/backoffice/internal/core/domain"
)

// ActivityRecorder accepts an audit record after a mutation is durable. It
// never blocks the caller and never reports failure back to it.
type ActivityRecorder interface {
	Record(ctx context.Context, rec domain.ActivityRecord)
}

// ActivitySink persists a single record. Used behind the recorder.
type ActivitySink interface {
	Insert(ctx context.Context, rec domain.ActivityRecord) error
}

// ActivityFilter carries the list query parameters.
type ActivityFilter struct {
	Action     string
	EntityType string
	EntityID   string
	UserID     string
	DateFrom   time.Time
	DateTo     time.Time
	Limit      int
	Offset     int
}

// ActivityRepository reads and appends audit records.
type ActivityRepository interface {
	ActivitySink
	List(ctx context.Context, filter ActivityFilter) ([]domain.ActivityRecord, int64, error)
}

// ActivityService exposes the audit trail to operators.
type ActivityService interface {
	List(ctx context.Context, filter ActivityFilter) ([]domain.ActivityRecord, int64, error)
	Mine(ctx context.Context, limit, offset int) ([]domain.ActivityRecord, error)
	ForEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]domain.ActivityRecord, error)
}
