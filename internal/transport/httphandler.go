package transport

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"edenhttp/internal/http/header"
	"edenhttp/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultMaxHeaderBytes       = 64 << 10
	defaultMaxBodyBytes   int64 = 1 << 20
	minReadBufferSize           = 4096
)

type httpHandler struct {
	messageHandler MessageHandler
	readTimeout    time.Duration
	maxHeaderBytes int
	maxBodyBytes   int64
	limiter        *rate.Limiter
	metrics        *metrics.Collector
	logger         zerolog.Logger
}

func newHTTPHandler(messageHandler MessageHandler, opts Options) *httpHandler {
	hh := &httpHandler{
		messageHandler: messageHandler,
		readTimeout:    opts.ReadTimeout,
		maxHeaderBytes: opts.MaxHeaderBytes,
		maxBodyBytes:   opts.MaxBodyBytes,
		limiter:        opts.Limiter,
		metrics:        opts.Metrics,
		logger:         opts.Logger,
	}
	if hh.maxHeaderBytes <= 0 {
		hh.maxHeaderBytes = defaultMaxHeaderBytes
	}
	if hh.maxBodyBytes <= 0 {
		hh.maxBodyBytes = defaultMaxBodyBytes
	}
	return hh
}

// handle serves exactly one request on conn and closes it.
func (hh *httpHandler) handle(conn net.Conn) {
	defer hh.closeConnection(conn)

	logger := hh.logger.With().
		Str("conn_id", uuid.NewString()).
		Str("remote", conn.RemoteAddr().String()).
		Logger()
	ctx := logger.WithContext(context.Background())

	if hh.limiter != nil && !hh.limiter.Allow() {
		if hh.metrics != nil {
			hh.metrics.ConnectionsRejected.Inc()
		}
		logger.Debug().Msg("connection rejected by rate limiter")
		hh.write(conn, &logger, hh.messageHandler.TooManyRequests())
		return
	}

	if hh.readTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(hh.readTimeout)); err != nil {
			logger.Warn().Err(err).Msg("failed to set read deadline")
		}
	}

	br := bufio.NewReaderSize(conn, max(hh.maxHeaderBytes, minReadBufferSize))
	raw, err := header.ReadMessage(br, hh.maxHeaderBytes, hh.maxBodyBytes)
	if err != nil {
		hh.readFailed(conn, &logger, err)
		return
	}

	resp, err := hh.messageHandler.Handle(ctx, raw)
	if err != nil {
		if errors.Is(err, header.ErrParse) {
			hh.write(conn, &logger, hh.messageHandler.BadRequest())
			return
		}
		logger.Error().Err(err).Msg("error handling request")
		return
	}

	hh.write(conn, &logger, resp)
}

func (hh *httpHandler) readFailed(conn net.Conn, logger *zerolog.Logger, err error) {
	switch {
	case errors.Is(err, header.ErrParse):
		if hh.metrics != nil {
			hh.metrics.ParseErrors.Inc()
		}
		logger.Debug().Err(err).Msg("malformed request")
		hh.write(conn, logger, hh.messageHandler.BadRequest())
	case errors.Is(err, io.EOF):
		logger.Debug().Msg("connection closed before request")
	default:
		logger.Warn().Err(err).Msg("error reading request")
	}
}

func (hh *httpHandler) write(conn net.Conn, logger *zerolog.Logger, resp []byte) {
	if _, err := conn.Write(resp); err != nil {
		logger.Warn().Err(err).Msg("error writing response")
	}
}

func (hh *httpHandler) closeConnection(conn net.Conn) {
	err := conn.Close()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		hh.logger.Warn().Err(err).Msg("error closing connection")
	}
}
