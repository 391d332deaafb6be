// Package kit holds the transport-agnostic plumbing shared by moosedb's
// caller surfaces: the Endpoint abstraction and the MCP tool adapter.
package kit

import "context"

// Endpoint is a transport-agnostic operation: decode happens before it,
// encode after it, so the same endpoint can back any tool surface.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour.
type Middleware func(Endpoint) Endpoint

// Chain composes middlewares so the first argument is the outermost.
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
