package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kikipackaging/backoffice/internal/core/domain"
)

// numeric writes a decimal as a bare JSON number, the form the data
// service's numeric columns accept. Reads decode into decimal.Decimal
// directly, which takes both forms.
type numeric decimal.Decimal

func (n numeric) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(n).String()), nil
}

// Executor sends a request through the authenticated pipeline.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}

// Query is a PostgREST table query: filters, ordering and paging encoded as
// URL parameters.
type Query struct {
	table  string
	params url.Values
}

// From starts a query on table.
func From(table string) *Query {
	return &Query{table: table, params: url.Values{}}
}

func (q *Query) Select(columns string) *Query {
	q.params.Set("select", columns)
	return q
}

func (q *Query) filter(column, op, value string) *Query {
	q.params.Add(column, op+"."+value)
	return q
}

func (q *Query) Eq(column, value string) *Query  { return q.filter(column, "eq", value) }
func (q *Query) Neq(column, value string) *Query { return q.filter(column, "neq", value) }
func (q *Query) Gte(column, value string) *Query { return q.filter(column, "gte", value) }
func (q *Query) Lte(column, value string) *Query { return q.filter(column, "lte", value) }
func (q *Query) Lt(column, value string) *Query  { return q.filter(column, "lt", value) }

// IsNull matches rows where column is null.
func (q *Query) IsNull(column string) *Query { return q.filter(column, "is", "null") }

// NotNull matches rows where column is not null.
func (q *Query) NotNull(column string) *Query { return q.filter(column, "not.is", "null") }

// ILike is a case-insensitive pattern match; * is the wildcard.
func (q *Query) ILike(column, pattern string) *Query { return q.filter(column, "ilike", pattern) }

// Or adds a disjunction such as "name.ilike.*box*,sku.ilike.*box*".
func (q *Query) Or(conditions string) *Query {
	q.params.Set("or", "("+conditions+")")
	return q
}

func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.params.Add("order", column+"."+dir)
	return q
}

func (q *Query) Limit(n int) *Query {
	if n > 0 {
		q.params.Set("limit", strconv.Itoa(n))
	}
	return q
}

func (q *Query) Offset(n int) *Query {
	if n > 0 {
		q.params.Set("offset", strconv.Itoa(n))
	}
	return q
}

func (q *Query) path() string { return "/rest/v1/" + q.table }

// values returns a copy of the encoded parameters.
func (q *Query) values() url.Values {
	out := make(url.Values, len(q.params))
	for k, v := range q.params {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// RestStore runs Query values against the data service.
type RestStore struct {
	pipe Executor
}

func NewRestStore(pipe Executor) *RestStore {
	return &RestStore{pipe: pipe}
}

func (s *RestStore) run(ctx context.Context, method string, q *Query, body any, prefer ...string) (*Response, error) {
	headers := http.Header{}
	if len(prefer) > 0 {
		headers.Set("Prefer", strings.Join(prefer, ","))
	}
	return s.pipe.Execute(ctx, Request{
		Method:  method,
		Path:    q.path(),
		Query:   q.values(),
		Body:    body,
		Headers: headers,
	})
}

// Insert adds rows without reading them back.
func (s *RestStore) Insert(ctx context.Context, table string, rows any) error {
	_, err := s.run(ctx, http.MethodPost, From(table), rows, "return=minimal")
	return err
}

// Delete removes every row matched by q.
func (s *RestStore) Delete(ctx context.Context, q *Query) error {
	_, err := s.run(ctx, http.MethodDelete, q, nil)
	return err
}

// fetchAll returns every row matched by q.
func fetchAll[T any](ctx context.Context, s *RestStore, q *Query) ([]T, error) {
	resp, err := s.run(ctx, http.MethodGet, q, nil)
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := resp.Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// fetchOne returns the first row matched by q, or domain.ErrNotFound.
func fetchOne[T any](ctx context.Context, s *RestStore, q *Query) (*T, error) {
	rows, err := fetchAll[T](ctx, s, q.Limit(1))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", q.table, domain.ErrNotFound)
	}
	return &rows[0], nil
}

// fetchPage returns the rows matched by q and the exact total count.
func fetchPage[T any](ctx context.Context, s *RestStore, q *Query) ([]T, int64, error) {
	resp, err := s.run(ctx, http.MethodGet, q, nil, "count=exact")
	if err != nil {
		return nil, 0, err
	}
	var rows []T
	if err := resp.Decode(&rows); err != nil {
		return nil, 0, err
	}
	total, ok := parseContentRange(resp.Header.Get("Content-Range"))
	if !ok {
		total = int64(len(rows))
	}
	return rows, total, nil
}

// insertReturning inserts rows and decodes the stored representation.
func insertReturning[T any](ctx context.Context, s *RestStore, table string, rows any) ([]T, error) {
	q := From(table).Select("*")
	resp, err := s.run(ctx, http.MethodPost, q, rows, "return=representation")
	if err != nil {
		return nil, err
	}
	var out []T
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func insertOne[T any](ctx context.Context, s *RestStore, table string, row any) (*T, error) {
	out, err := insertReturning[T](ctx, s, table, row)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: insert returned no rows", table)
	}
	return &out[0], nil
}

// updateReturning patches the rows matched by q. Matching nothing is
// domain.ErrNotFound.
func updateReturning[T any](ctx context.Context, s *RestStore, q *Query, patch any) ([]T, error) {
	if q.params.Get("select") == "" {
		q.Select("*")
	}
	resp, err := s.run(ctx, http.MethodPatch, q, patch, "return=representation")
	if err != nil {
		return nil, err
	}
	var out []T
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: %w", q.table, domain.ErrNotFound)
	}
	return out, nil
}

// parseContentRange reads the total from "0-9/42" or "*/0".
func parseContentRange(v string) (int64, bool) {
	i := strings.LastIndexByte(v, '/')
	if i < 0 || v[i+1:] == "*" {
		return 0, false
	}
	n, err := strconv.ParseInt(v[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
