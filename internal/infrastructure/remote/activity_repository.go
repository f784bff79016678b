package remote

import (
	"context"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
)

const activityTable = "activity_logs"

// ActivityRepository implements ports.ActivityRepository on activity_logs.
type ActivityRepository struct {
	store *RestStore
}

func NewActivityRepository(store *RestStore) *ActivityRepository {
	return &ActivityRepository{store: store}
}

type activityRow struct {
	UserID     string         `json:"user_id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	EntityName string         `json:"entity_name,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

func (r *ActivityRepository) Insert(ctx context.Context, rec domain.ActivityRecord) error {
	return r.store.Insert(ctx, activityTable, activityRow{
		UserID:     rec.ActorID,
		Action:     string(rec.Action),
		EntityType: string(rec.EntityType),
		EntityID:   rec.EntityID,
		EntityName: rec.EntityName,
		Details:    rec.Details,
	})
}

func (r *ActivityRepository) List(ctx context.Context, f ports.ActivityFilter) ([]domain.ActivityRecord, int64, error) {
	q := From(activityTable).Select("*,user:user_profiles(id,name)").Order("created_at", false)
	if f.Action != "" {
		q.Eq("action", f.Action)
	}
	if f.EntityType != "" {
		q.Eq("entity_type", f.EntityType)
	}
	if f.EntityID != "" {
		q.Eq("entity_id", f.EntityID)
	}
	if f.UserID != "" {
		q.Eq("user_id", f.UserID)
	}
	if !f.DateFrom.IsZero() {
		q.Gte("created_at", domain.FormatServerTime(f.DateFrom))
	}
	if !f.DateTo.IsZero() {
		q.Lte("created_at", domain.FormatServerTime(f.DateTo))
	}
	q.Limit(f.Limit).Offset(f.Offset)
	return fetchPage[domain.ActivityRecord](ctx, r.store, q)
}

var _ ports.ActivityRepository = (*ActivityRepository)(nil)
