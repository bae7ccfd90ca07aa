// Package handler turns one raw request into one raw response: parse, look
// the route up, run it, serialize.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"edenhttp/internal/http/header"
	"edenhttp/internal/metrics"
	"edenhttp/internal/middleware"
	"edenhttp/internal/registry"
	"edenhttp/internal/version"
	"edenhttp/types"

	"github.com/rs/zerolog"
)

type Handler struct {
	registry            registry.Registry
	responseMiddlewares []middleware.ResponseMiddleware
	handlerMiddlewares  []middleware.HandlerMiddleware
	metrics             *metrics.Collector
	logger              zerolog.Logger
}

type Option func(*Handler)

func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

func WithMetrics(c *metrics.Collector) Option {
	return func(h *Handler) { h.metrics = c }
}

// WithResponseMiddlewares replaces the standard header contributors.
func WithResponseMiddlewares(mws ...middleware.ResponseMiddleware) Option {
	return func(h *Handler) { h.responseMiddlewares = mws }
}

// WithHandlerMiddlewares adds wrappers around every route handler. Recover is
// always the outermost one.
func WithHandlerMiddlewares(mws ...middleware.HandlerMiddleware) Option {
	return func(h *Handler) { h.handlerMiddlewares = append(h.handlerMiddlewares, mws...) }
}

func New(reg registry.Registry, opts ...Option) *Handler {
	h := &Handler{
		registry: reg,
		responseMiddlewares: []middleware.ResponseMiddleware{
			middleware.NewServerFingerprint(version.ServerHeader()),
			middleware.NewConnectionClose(),
		},
		handlerMiddlewares: []middleware.HandlerMiddleware{middleware.Recover()},
		logger:             zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle processes exactly one request. A malformed request yields a
// *header.ParseError and no bytes; the caller decides whether to answer with
// BadRequest.
func (h *Handler) Handle(ctx context.Context, raw []byte) ([]byte, error) {
	logger := h.loggerFrom(ctx)

	req, err := header.NewRequest(raw)
	if err != nil {
		if h.metrics != nil {
			h.metrics.ParseErrors.Inc()
		}
		logger.Debug().Err(err).Msg("malformed request")
		return nil, err
	}

	start := time.Now()
	if h.metrics != nil {
		h.metrics.RequestsInFlight.Inc()
		defer h.metrics.RequestsInFlight.Dec()
	}

	resp, err := h.dispatch(ctx, logger, req)
	if err != nil {
		return nil, err
	}

	if h.metrics != nil {
		label := methodLabel(req.Method())
		h.metrics.RequestsTotal.WithLabelValues(label, strconv.Itoa(resp.Status())).Inc()
		h.metrics.RequestDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	}
	logger.Info().
		Str("method", req.Method()).
		Str("path", req.Path()).
		Int("status", resp.Status()).
		Dur("duration", time.Since(start)).
		Msg("request handled")

	return resp.Finalize(), nil
}

func (h *Handler) dispatch(ctx context.Context, logger *zerolog.Logger, req header.Request) (header.Response, error) {
	method, _ := types.ParseMethod(req.Method())

	if method == types.MethodOPTIONS {
		methods := h.registry.Methods(req.Path())
		if len(methods) == 0 {
			return h.text(http.StatusNotFound, types.NotFoundBody)
		}
		return h.options(methods)
	}

	route, ok := h.registry.Lookup(req.Path(), method.String())
	if !ok {
		return h.text(http.StatusNotFound, types.NotFoundBody)
	}

	run := middleware.Chain(route.OperationID, route.Handler, h.handlerMiddlewares...)
	body, err := run(ctx)
	if err != nil {
		if h.metrics != nil {
			h.metrics.HandlerFailures.WithLabelValues(route.OperationID).Inc()
		}
		logger.Error().Err(err).Str("operation", route.OperationID).Msg("handler failed")
		return h.text(http.StatusInternalServerError, types.InternalErrorBody)
	}

	return h.text(http.StatusOK, body)
}

// options lists OPTIONS first, then every registered method in registration
// order. The response carries no body and no Content-Type.
func (h *Handler) options(methods []string) (header.Response, error) {
	allow := make([]string, 0, len(methods)+1)
	allow = append(allow, types.MethodOPTIONS.String())
	for _, m := range methods {
		allow = append(allow, strings.ToUpper(m))
	}

	resp, err := h.newResponse(http.StatusOK)
	if err != nil {
		return nil, err
	}
	resp.Add("Allow", strings.Join(allow, ", "))
	return resp, nil
}

// text answers with body under the JSON content type, whatever the body holds.
func (h *Handler) text(status int, body string) (header.Response, error) {
	resp, err := h.newResponse(status)
	if err != nil {
		return nil, err
	}
	resp.Add("Content-Type", types.ContentTypeJSON)
	resp.SetBody([]byte(body))
	return resp, nil
}

func (h *Handler) newResponse(status int) (header.Response, error) {
	resp := header.NewResponse(status)
	for _, mw := range h.responseMiddlewares {
		if err := mw.HandleResponse(resp); err != nil {
			return nil, fmt.Errorf("error applying response middlewares: %w", err)
		}
	}
	return resp, nil
}

// BadRequest is the response a caller writes when Handle reports a ParseError.
func (h *Handler) BadRequest() []byte {
	return h.reject(http.StatusBadRequest, types.BadRequestBody)
}

// TooManyRequests is the response for connections turned away before parsing.
func (h *Handler) TooManyRequests() []byte {
	return h.reject(http.StatusTooManyRequests, types.TooManyBody)
}

func (h *Handler) reject(status int, body string) []byte {
	resp, err := h.text(status, body)
	if err != nil {
		h.logger.Error().Err(err).Int("status", status).Msg("failed to build error response")
		resp = header.NewResponse(status)
		resp.Add("Content-Type", types.ContentTypeJSON)
		resp.SetBody([]byte(body))
	}
	return resp.Finalize()
}

// otherMethodLabel stands in for every non-standard method token so clients
// cannot mint new metric series.
const otherMethodLabel = "OTHER"

func methodLabel(raw string) string {
	m, ok := types.ParseMethod(raw)
	if !ok {
		return otherMethodLabel
	}
	return m.String()
}

func (h *Handler) loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &h.logger
}
