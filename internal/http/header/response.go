package header

import (
	"fmt"
	"net/http"
)

const protocolVersion = "HTTP/1.1"

// NewResponse starts a response with the status line for status and no headers.
func NewResponse(status int) Response {
	return &responseHeader{
		status:    status,
		startLine: []byte(fmt.Sprintf("%s %d %s", protocolVersion, status, http.StatusText(status))),
		fields:    newFields(8),
	}
}

// ParseResponse reads a serialized response back into its parts. Clients and
// tests use it to pick the body out of a response stream.
func ParseResponse(data []byte) (Response, error) {
	header := &responseHeader{
		fields: newFields(8),
	}

	startLine, remaining, ok := nextLine(data)
	if !ok {
		return nil, parseError("invalid response: no line terminator found in start line")
	}
	header.startLine = append([]byte(nil), startLine...)

	status, err := parseStatusLine(startLine)
	if err != nil {
		return nil, err
	}
	header.status = status

	body, err := setRemainingHeaders(remaining, &header.fields)
	if err != nil {
		return nil, err
	}
	header.body = append([]byte(nil), body...)

	return header, nil
}

func (resp *responseHeader) Value(key string) string {
	return resp.fields.Value(key)
}

// Add appends a header line. Lines are written in the order they were added.
func (resp *responseHeader) Add(key string, value string) {
	resp.fields.Add(key, value)
}

func (resp *responseHeader) Headers() []Field {
	return resp.fields.Fields()
}

func (resp *responseHeader) Status() int {
	return resp.status
}

func (resp *responseHeader) Body() []byte {
	return resp.body
}

func (resp *responseHeader) SetBody(body []byte) {
	resp.body = body
}

func (resp *responseHeader) Finalize() []byte {
	return finalize(resp.startLine, resp.fields.list, resp.body)
}

// finalize renders the status line, the header lines in order, one blank line
// and the body. Nothing follows the body.
func finalize(startLine []byte, headers []Field, body []byte) []byte {
	size := len(startLine) + 2
	for _, f := range headers {
		size += len(f.Name) + 2 + len(f.Value) + 2
	}
	size += 2 + len(body)

	buf := make([]byte, 0, size)
	buf = append(buf, startLine...)
	buf = append(buf, '\r', '\n')

	for _, f := range headers {
		buf = append(buf, f.Name...)
		buf = append(buf, ':', ' ')
		buf = append(buf, f.Value...)
		buf = append(buf, '\r', '\n')
	}

	buf = append(buf, '\r', '\n')
	buf = append(buf, body...)
	return buf
}
