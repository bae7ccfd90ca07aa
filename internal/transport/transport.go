package transport

import (
	"context"
	"net"
)

type Transport interface {
	Listen() (net.Listener, error)
	Serve(listener net.Listener) error
}

// MessageHandler turns one raw request into one raw response.
type MessageHandler interface {
	Handle(ctx context.Context, raw []byte) ([]byte, error)
	BadRequest() []byte
	TooManyRequests() []byte
}
