package middleware

import (
	"edenhttp/internal/http/header"
)

type ServerFingerprint struct {
	value string
}

func NewServerFingerprint(value string) *ServerFingerprint {
	return &ServerFingerprint{value: value}
}

func (h *ServerFingerprint) HandleResponse(resp header.Response) error {
	resp.Add("Server", h.value)
	return nil
}

// ConnectionClose announces that the connection ends after this response.
type ConnectionClose struct{}

func NewConnectionClose() *ConnectionClose {
	return &ConnectionClose{}
}

func (h *ConnectionClose) HandleResponse(resp header.Response) error {
	resp.Add("Connection", "close")
	return nil
}
