package service

import (
	"context"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
	"github.com/kikipackaging/backoffice/internal/core/session"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// ActivityService reads the audit trail.
type ActivityService struct {
	repo    ports.ActivityRepository
	session *session.Session
}

func NewActivityService(repo ports.ActivityRepository, sess *session.Session) *ActivityService {
	return &ActivityService{repo: repo, session: sess}
}

// List returns a page of records, newest first, with the total match count.
func (s *ActivityService) List(ctx context.Context, filter ports.ActivityFilter) ([]domain.ActivityRecord, int64, error) {
	filter.Limit = clampLimit(filter.Limit, defaultActivityLimit, maxActivityLimit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(ctx, filter)
}

// Mine returns the signed-in operator's own records.
func (s *ActivityService) Mine(ctx context.Context, limit, offset int) ([]domain.ActivityRecord, error) {
	u, err := s.session.Require()
	if err != nil {
		return nil, err
	}
	records, _, err := s.List(ctx, ports.ActivityFilter{UserID: u.ID, Limit: limit, Offset: offset})
	return records, err
}

// ForEntity returns the full history of one entity.
func (s *ActivityService) ForEntity(ctx context.Context, entityType domain.EntityType, entityID string) ([]domain.ActivityRecord, error) {
	if entityID == "" {
		return nil, domain.ErrInvalidInput
	}
	records, _, err := s.repo.List(ctx, ports.ActivityFilter{
		EntityType: string(entityType),
		EntityID:   entityID,
		Limit:      maxActivityLimit,
	})
	return records, err
}

// record hands an audit record for the current operator to rec. Nothing is
// recorded when nobody is signed in.
func record(ctx context.Context, rec ports.ActivityRecorder, sess *session.Session, action domain.ActivityAction, entity domain.EntityType, id, name string, details map[string]any) {
	actor := sess.ActorID()
	if actor == "" || rec == nil {
		return
	}
	rec.Record(ctx, domain.ActivityRecord{
		Action:     action,
		EntityType: entity,
		EntityID:   id,
		EntityName: name,
		Details:    details,
		ActorID:    actor,
	})
}

func clampLimit(limit, fallback, ceiling int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}

var _ ports.ActivityService = (*ActivityService)(nil)
