package ports

import "context"

// FunctionInvoker calls a named backend function with a JSON body.
type FunctionInvoker interface {
	Invoke(ctx context.Context, name string, body any) error
}
