package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kikipackaging/backoffice/internal/core/domain"
	"github.com/kikipackaging/backoffice/internal/core/ports"
)

// newTestStore wires a RestStore to handler through a real Pipeline.
func newTestStore(t *testing.T, handler http.HandlerFunc) *RestStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRestStore(NewPipeline(srv.URL, "anon", &stubTokens{token: "t"}))
}

func TestQuery_Values(t *testing.T) {
	q := From("orders").
		Select("*").
		Eq("status", "pending").
		Gte("created_at", "2024-01-01").
		Lte("created_at", "2024-01-31").
		NotNull("category").
		Order("created_at", false).
		Limit(10).
		Offset(20)

	if got := q.path(); got != "/rest/v1/orders" {
		t.Errorf("path = %q", got)
	}
	v := q.values()
	checks := map[string]string{
		"select":   "*",
		"status":   "eq.pending",
		"category": "not.is.null",
		"order":    "created_at.desc",
		"limit":    "10",
		"offset":   "20",
	}
	for k, want := range checks {
		if got := v.Get(k); got != want {
			t.Errorf("%s = %q, want %q", k, got, want)
		}
	}
	if got := v["created_at"]; len(got) != 2 || got[0] != "gte.2024-01-01" || got[1] != "lte.2024-01-31" {
		t.Errorf("created_at = %v", got)
	}
}

func TestQuery_ZeroPagingOmitted(t *testing.T) {
	v := From("orders").Limit(0).Offset(0).values()
	if v.Has("limit") || v.Has("offset") {
		t.Errorf("zero paging should be omitted: %v", v)
	}
}

func TestParseContentRange(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"0-9/42", 42, true},
		{"*/0", 0, true},
		{"0-9/*", 0, false},
		{"", 0, false},
		{"0-9/abc", 0, false},
	}
	for _, tc := range tests {
		got, ok := parseContentRange(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("parseContentRange(%q) = %d, %v; want %d, %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestFetchPage_ReadsExactCount(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Prefer"); got != "count=exact" {
			t.Errorf("Prefer = %q", got)
		}
		w.Header().Set("Content-Range", "0-1/42")
		_, _ = w.Write([]byte(`[{"id":"a"},{"id":"b"}]`))
	})

	rows, total, err := fetchPage[struct {
		ID string `json:"id"`
	}](context.Background(), store, From("orders").Select("id"))
	if err != nil {
		t.Fatalf("fetchPage returned error: %v", err)
	}
	if len(rows) != 2 || total != 42 {
		t.Errorf("got %d rows, total %d", len(rows), total)
	}
}

func TestFetchOne_EmptyIsNotFound(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("limit"); got != "1" {
			t.Errorf("limit = %q", got)
		}
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := NewProductRepository(store).Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateReturning_NoRowsIsNotFound(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.Header.Get("Prefer"); got != "return=representation" {
			t.Errorf("Prefer = %q", got)
		}
		_, _ = w.Write([]byte(`[]`))
	})

	err := NewProductRepository(store).SetStock(context.Background(), "p1", 3)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProductRepository_ListFilters(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("or"); got != "(name.ilike.*box*,sku.ilike.*box*)" {
			t.Errorf("or = %q", got)
		}
		if got := q.Get("is_active"); got != "eq.true" {
			t.Errorf("is_active = %q", got)
		}
		if got := q.Get("stock_quantity"); got != "lt.10" {
			t.Errorf("stock_quantity = %q", got)
		}
		if got := q.Get("order"); got != "stock_quantity.asc" {
			t.Errorf("order = %q", got)
		}
		_, _ = w.Write([]byte(`[{"id":"p1","name":"Box","unit_price":2.50,"created_at":"2024-03-01T10:00:00"}]`))
	})

	got, err := NewProductRepository(store).List(context.Background(), ports.ProductFilter{
		ActiveOnly: true,
		Search:     " (box)* ",
		StockBelow: 10,
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 1 || !got[0].UnitPrice.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("unexpected products: %+v", got)
	}
	if got[0].CreatedAt.Location().String() != "UTC" || got[0].CreatedAt.Hour() != 10 {
		t.Errorf("zoneless timestamp not read as UTC: %v", got[0].CreatedAt)
	}
}

func TestProductRepository_CreateSendsNumericPrice(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(data), `"unit_price":3.2`) {
			t.Errorf("price not sent as number: %s", data)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":"p9","name":"Tape","sku":"TP-1","unit_price":3.2}]`))
	})

	p, err := NewProductRepository(store).Create(context.Background(), ports.NewProduct{
		Name:      "Tape",
		SKU:       "TP-1",
		Unit:      "roll",
		UnitPrice: decimal.RequireFromString("3.20"),
		IsActive:  true,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.ID != "p9" {
		t.Errorf("ID = %q", p.ID)
	}
}

func TestProductRepository_Categories(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"category":"tape"},{"category":"boxes"},{"category":"tape"},{"category":""}]`))
	})

	got, err := NewProductRepository(store).Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories returned error: %v", err)
	}
	if strings.Join(got, ",") != "boxes,tape" {
		t.Errorf("categories = %v", got)
	}
}

func TestRestStore_InsertIsMinimal(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Prefer"); got != "return=minimal" {
			t.Errorf("Prefer = %q", got)
		}
		if r.URL.Path != "/rest/v1/activity_logs" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var rows []map[string]any
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil || len(rows) != 1 {
			t.Errorf("body: %v %v", rows, err)
		}
		w.WriteHeader(http.StatusCreated)
	})

	if err := store.Insert(context.Background(), "activity_logs", []map[string]any{{"action": "login"}}); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
}

func TestOrderRepository_UpdateSendsTotalAsNumber(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(data), `"total_price":12.5`) {
			t.Errorf("total_price not sent as a number: %s", data)
		}
		_, _ = w.Write([]byte(`[{"id":"o1","status":"processing","total_price":12.5}]`))
	})

	total := decimal.RequireFromString("12.50")
	got, err := NewOrderRepository(store).Update(context.Background(), "o1", ports.OrderPatch{TotalPrice: &total})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if !got.TotalPrice.Equal(total) {
		t.Errorf("total = %s", got.TotalPrice)
	}
}

func TestNumeric_LeavesDecimalEncodingAlone(t *testing.T) {
	d := decimal.RequireFromString("3.20")

	remote, err := json.Marshal(map[string]any{"unit_price": numeric(d)})
	if err != nil || string(remote) != `{"unit_price":3.2}` {
		t.Errorf("numeric encoding = %s, %v", remote, err)
	}
	// Everything outside the backend rows keeps decimal's quoted form.
	local, err := json.Marshal(d)
	if err != nil || string(local) != `"3.2"` {
		t.Errorf("decimal encoding = %s, %v", local, err)
	}
}
