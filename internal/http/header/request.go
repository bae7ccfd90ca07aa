package header

import (
	"strconv"
)

// NewRequest parses one complete request held in raw.
func NewRequest(raw []byte) (Request, error) {
	req, err := parseHeadersFromBytes(raw)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (req *requestHeader) Value(key string) string {
	return req.fields.Value(key)
}

func (req *requestHeader) Headers() []Field {
	return req.fields.Fields()
}

func (req *requestHeader) Method() string {
	return req.method
}

func (req *requestHeader) Path() string {
	return req.path
}

func (req *requestHeader) Version() string {
	return req.version
}

func (req *requestHeader) Body() []byte {
	return req.body
}

// ContentLength returns 0 when the header is absent.
func (req *requestHeader) ContentLength() (int, error) {
	raw := req.fields.Value("Content-Length")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, parseError("invalid request: bad Content-Length")
	}
	return n, nil
}
