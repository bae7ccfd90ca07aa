package transport

import (
	"errors"
	"net"
	"time"

	"edenhttp/internal/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type Options struct {
	ReadTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodyBytes   int64
	// Limiter caps accepted connections per second. Nil disables limiting.
	Limiter *rate.Limiter
	Metrics *metrics.Collector
	Logger  zerolog.Logger
}

type httpServer struct {
	handler *httpHandler
	port    string
	logger  zerolog.Logger
}

func NewHTTPServer(port string, messageHandler MessageHandler, opts Options) Transport {
	return &httpServer{
		handler: newHTTPHandler(messageHandler, opts),
		port:    port,
		logger:  opts.Logger,
	}
}

func (ht *httpServer) Listen() (net.Listener, error) {
	return net.Listen("tcp", ":"+ht.port)
}

func (ht *httpServer) Serve(listener net.Listener) error {
	ht.logger.Info().Str("addr", listener.Addr().String()).Msg("HTTP server is starting")
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			ht.logger.Warn().Err(err).Msg("error accepting connection")
			continue
		}

		go ht.handler.handle(conn)
	}
}
