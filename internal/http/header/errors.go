package header

import "errors"

var ErrParse = errors.New("malformed http message")

// ParseError reports a request line or header block that could not be parsed.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return e.Reason
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func parseError(reason string) error {
	return &ParseError{Reason: reason}
}
