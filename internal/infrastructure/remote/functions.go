package remote

import (
	"context"
	"net/http"

	"github.com/kikipackaging/backoffice/internal/core/ports"
)

// Functions invokes backend edge functions at /functions/v1/<name>.
type Functions struct {
	pipe Executor
}

func NewFunctions(pipe Executor) *Functions {
	return &Functions{pipe: pipe}
}

// Invoke POSTs body and discards the response.
func (f *Functions) Invoke(ctx context.Context, name string, body any) error {
	_, err := f.pipe.Execute(ctx, Request{
		Method: http.MethodPost,
		Path:   "/functions/v1/" + name,
		Body:   body,
	})
	return err
}

var _ ports.FunctionInvoker = (*Functions)(nil)
