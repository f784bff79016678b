package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/kikipackaging/backoffice/internal/core/domain"
)

func TestRBAC(t *testing.T) {
	tests := []struct {
		name    string
		role    any
		allowed []string
		want    int
	}{
		{"admin on admin route", domain.RoleAdmin, []string{domain.RoleAdmin}, http.StatusOK},
		{"staff on admin route", domain.RoleStaff, []string{domain.RoleAdmin}, http.StatusForbidden},
		{"staff on shared route", domain.RoleStaff, []string{domain.RoleAdmin, domain.RoleStaff}, http.StatusOK},
		{"no role set", nil, []string{domain.RoleAdmin}, http.StatusForbidden},
		{"role of the wrong type", 1, []string{domain.RoleAdmin}, http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/users", nil), rec)
			if tc.role != nil {
				c.Set(ContextKeyRole, tc.role)
			}

			h := RBAC(tc.allowed...)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			if err := h(c); err != nil {
				e.HTTPErrorHandler(err, c)
			}
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
