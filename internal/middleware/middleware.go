package middleware

import (
	"edenhttp/internal/http/header"
	"edenhttp/internal/registry"
)

// ResponseMiddleware contributes the standard headers every response starts
// with. It runs before the dispatch branch adds its own headers.
type ResponseMiddleware interface {
	HandleResponse(resp header.Response) error
}

// HandlerMiddleware wraps a route handler. op is the route's operation id.
type HandlerMiddleware func(op string, next registry.Handler) registry.Handler

// Chain applies mws so that the first one is the outermost.
func Chain(op string, h registry.Handler, mws ...HandlerMiddleware) registry.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](op, h)
	}
	return h
}
