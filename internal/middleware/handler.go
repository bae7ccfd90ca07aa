package middleware

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"edenhttp/internal/registry"

	"github.com/rs/zerolog"
)

var ErrHandlerPanic = errors.New("handler panicked")

// Recover turns a panicking handler into an ErrHandlerPanic error.
func Recover() HandlerMiddleware {
	return func(op string, next registry.Handler) registry.Handler {
		return func(ctx context.Context) (body string, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %s: %v\n%s", ErrHandlerPanic, op, r, debug.Stack())
				}
			}()
			return next(ctx)
		}
	}
}

// Timeout bounds a handler with a context deadline. A zero or negative d
// leaves the handler unbounded. The handler runs on its own goroutine, so a
// panic there is recovered here and reported as ErrHandlerPanic.
func Timeout(d time.Duration) HandlerMiddleware {
	return func(op string, next registry.Handler) registry.Handler {
		if d <= 0 {
			return next
		}
		return func(ctx context.Context) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			type result struct {
				body string
				err  error
			}
			done := make(chan result, 1)
			go func() {
				defer func() {
					if r := recover(); r != nil {
						done <- result{err: fmt.Errorf("%w: %s: %v\n%s", ErrHandlerPanic, op, r, debug.Stack())}
					}
				}()
				body, err := next(ctx)
				done <- result{body, err}
			}()

			select {
			case res := <-done:
				return res.body, res.err
			case <-ctx.Done():
				return "", fmt.Errorf("%s: %w", op, ctx.Err())
			}
		}
	}
}

func Logging(logger zerolog.Logger) HandlerMiddleware {
	return func(op string, next registry.Handler) registry.Handler {
		return func(ctx context.Context) (string, error) {
			start := time.Now()
			body, err := next(ctx)
			evt := logger.Debug()
			if err != nil {
				evt = logger.Warn().Err(err)
			}
			evt.Str("operation", op).
				Dur("duration", time.Since(start)).
				Int("body_bytes", len(body)).
				Msg("handler finished")
			return body, err
		}
	}
}
