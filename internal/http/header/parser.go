package header

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
)

// nextLine splits off one line ended by LF or CRLF. ok is false when no
// terminator is left in b.
func nextLine(b []byte) (line, rest []byte, ok bool) {
	lineEnd := bytes.IndexByte(b, '\n')
	if lineEnd == -1 {
		return nil, b, false
	}
	line = b[:lineEnd]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, b[lineEnd+1:], true
}

// setRemainingHeaders consumes header lines up to the blank line and returns
// whatever follows it.
func setRemainingHeaders(remaining []byte, header interface {
	Set(key string, value string)
}) ([]byte, error) {
	for {
		line, rest, ok := nextLine(remaining)
		if !ok {
			return nil, parseError("invalid header block: missing blank line")
		}
		remaining = rest

		if len(line) == 0 {
			return remaining, nil
		}

		colonIdx := bytes.IndexByte(line, ':')
		if colonIdx == -1 {
			continue
		}

		key := bytes.TrimSpace(line[:colonIdx])
		value := bytes.TrimSpace(line[colonIdx+1:])
		header.Set(string(key), string(value))
	}
}

func parseHeadersFromBytes(data []byte) (*requestHeader, error) {
	header := &requestHeader{
		fields: newFields(16),
	}

	startLine, remaining, ok := nextLine(data)
	if !ok {
		return nil, parseError("invalid request: no line terminator found in start line")
	}

	header.startLine = append([]byte(nil), startLine...)
	var err error
	header.method, header.path, header.version, err = parseStartLine(startLine)
	if err != nil {
		return nil, err
	}

	body, err := setRemainingHeaders(remaining, &header.fields)
	if err != nil {
		return nil, err
	}
	header.body = append([]byte(nil), body...)

	return header, nil
}

func parseStartLine(startLine []byte) (method, path, version string, err error) {
	firstSpace := bytes.IndexByte(startLine, ' ')
	if firstSpace <= 0 {
		return "", "", "", parseError("invalid start line: missing method")
	}

	secondSpace := bytes.IndexByte(startLine[firstSpace+1:], ' ')
	if secondSpace == -1 {
		return "", "", "", parseError("invalid start line: missing version")
	}
	secondSpace += firstSpace + 1

	method = strings.ToUpper(string(startLine[:firstSpace]))
	path = string(startLine[firstSpace+1 : secondSpace])
	version = string(bytes.TrimSpace(startLine[secondSpace+1:]))

	if path == "" {
		return "", "", "", parseError("invalid start line: missing path")
	}
	if version == "" {
		return "", "", "", parseError("invalid start line: missing version")
	}

	return method, path, version, nil
}

func parseStatusLine(startLine []byte) (int, error) {
	firstSpace := bytes.IndexByte(startLine, ' ')
	if firstSpace == -1 {
		return 0, parseError("invalid status line: missing status code")
	}
	code := startLine[firstSpace+1:]
	if sp := bytes.IndexByte(code, ' '); sp != -1 {
		code = code[:sp]
	}
	status, err := strconv.Atoi(string(code))
	if err != nil || status < 100 || status > 999 {
		return 0, parseError("invalid status line: bad status code")
	}
	return status, nil
}

// ReadMessage reads one complete request off br: the header block, then as
// many body bytes as Content-Length announces. It returns the raw bytes so the
// message handler can parse them as a unit.
func ReadMessage(br *bufio.Reader, maxHeaderBytes int, maxBodyBytes int64) ([]byte, error) {
	var buf bytes.Buffer

	for {
		lineBytes, err := br.ReadSlice('\n')
		if err != nil {
			if errors.Is(err, bufio.ErrBufferFull) {
				return nil, parseError("invalid header block: line too long")
			}
			if errors.Is(err, io.EOF) && buf.Len() == 0 && len(lineBytes) == 0 {
				return nil, io.EOF
			}
			if errors.Is(err, io.EOF) {
				return nil, parseError("invalid header block: unexpected end of message")
			}
			return nil, err
		}

		if buf.Len()+len(lineBytes) > maxHeaderBytes {
			return nil, parseError("invalid header block: too large")
		}
		buf.Write(lineBytes)

		if len(bytes.TrimRight(lineBytes, "\r\n")) == 0 {
			break
		}
	}

	req, err := parseHeadersFromBytes(buf.Bytes())
	if err != nil {
		return nil, err
	}

	n, err := req.ContentLength()
	if err != nil {
		return nil, err
	}
	if int64(n) > maxBodyBytes {
		return nil, parseError("invalid request: body too large")
	}
	if n > 0 {
		body := make([]byte, n)
		if _, err = io.ReadFull(br, body); err != nil {
			return nil, parseError("invalid request: body shorter than Content-Length")
		}
		buf.Write(body)
	}

	return buf.Bytes(), nil
}
