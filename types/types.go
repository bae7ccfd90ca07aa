package types

import "strings"

type Method string

const (
	MethodGET     Method = "GET"
	MethodHEAD    Method = "HEAD"
	MethodPOST    Method = "POST"
	MethodPUT     Method = "PUT"
	MethodPATCH   Method = "PATCH"
	MethodDELETE  Method = "DELETE"
	MethodOPTIONS Method = "OPTIONS"
)

var knownMethods = map[Method]struct{}{
	MethodGET:     {},
	MethodHEAD:    {},
	MethodPOST:    {},
	MethodPUT:     {},
	MethodPATCH:   {},
	MethodDELETE:  {},
	MethodOPTIONS: {},
}

// ParseMethod upper-cases a method token. Unknown tokens are kept as-is so
// extension methods still dispatch; ok reports whether the token is one of the
// standard set.
func ParseMethod(raw string) (m Method, ok bool) {
	m = Method(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok = knownMethods[m]
	return m, ok
}

// Key is the lower-case form used for registry and schema keys.
func (m Method) Key() string {
	return strings.ToLower(string(m))
}

func (m Method) String() string {
	return string(m)
}

const (
	ContentTypeJSON = "application/json;charset=UTF-8"

	NotFoundBody      = "404 not found"
	BadRequestBody    = "400 bad request"
	InternalErrorBody = "500 internal server error"
	TooManyBody       = "429 too many requests"

	DefaultSchemaPath = "/schema/"
)
