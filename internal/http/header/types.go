package header

// Field is a single header line in wire order.
type Field struct {
	Name  string
	Value string
}

type Request interface {
	Value(key string) string
	Headers() []Field
	Method() string
	Path() string
	Version() string
	Body() []byte
	ContentLength() (int, error)
}

type requestHeader struct {
	method    string
	path      string
	version   string
	startLine []byte
	fields    fields
	body      []byte
}

type Response interface {
	Value(key string) string
	Add(key string, value string)
	Headers() []Field
	Status() int
	Body() []byte
	SetBody(body []byte)
	Finalize() []byte
}

type responseHeader struct {
	status    int
	startLine []byte
	fields    fields
	body      []byte
}
