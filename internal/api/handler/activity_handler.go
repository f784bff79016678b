package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
)

type ActivityHandler struct {
	activity ports.ActivityService
}

func NewActivityHandler(activity ports.ActivityService) *ActivityHandler {
	return &ActivityHandler{activity: activity}
}

// List handles GET /activity with action, entity_type, entity_id, user_id,
// date_from, date_to, limit and offset filters.
func (h *ActivityHandler) List(c echo.Context) error {
	var (
		filter = ports.ActivityFilter{
			Action:     c.QueryParam("action"),
			EntityType: c.QueryParam("entity_type"),
			EntityID:   c.QueryParam("entity_id"),
			UserID:     c.QueryParam("user_id"),
		}
		err error
	)
	if filter.DateFrom, err = queryTime(c, "date_from"); err != nil {
		return err
	}
	if filter.DateTo, err = queryTime(c, "date_to"); err != nil {
		return err
	}
	if filter.Limit, err = queryInt(c, "limit", 0); err != nil {
		return err
	}
	if filter.Offset, err = queryInt(c, "offset", 0); err != nil {
		return err
	}

	records, total, err := h.activity.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, pageResponse[domain.ActivityRecord]{Items: records, Total: total})
}

// Mine handles GET /activity/me.
func (h *ActivityHandler) Mine(c echo.Context) error {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return err
	}
	records, err := h.activity.Mine(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, records)
}

// ForEntity handles GET /activity/:entity_type/:entity_id.
func (h *ActivityHandler) ForEntity(c echo.Context) error {
	records, err := h.activity.ForEntity(c.Request().Context(), domain.EntityType(c.Param("entity_type")), c.Param("entity_id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, records)
}
