// Package response decodes the BGX13P machine-mode reply envelope:
// R<code><5-digit length>\r\n<body>, falling back to raw passthrough
// bytes when no such envelope is present.
package response

import (
	"fmt"
	"unicode/utf8"
)

// Code is the closed set of response codes the module's machine-mode
// protocol can report in a header.
type Code int

const (
	Success Code = iota
	CommandFailed
	ParseError
	UnknownCommand
	TooFewArguments
	TooManyArguments
	UnknownVariableOrOption
	InvalidArgument
	Timeout
	SecurityMismatch
)

func (c Code) String() string {
	switch c {
	case Success:
		return "Success"
	case CommandFailed:
		return "CommandFailed"
	case ParseError:
		return "ParseError"
	case UnknownCommand:
		return "UnknownCommand"
	case TooFewArguments:
		return "TooFewArguments"
	case TooManyArguments:
		return "TooManyArguments"
	case UnknownVariableOrOption:
		return "UnknownVariableOrOption"
	case InvalidArgument:
		return "InvalidArgument"
	case Timeout:
		return "Timeout"
	case SecurityMismatch:
		return "SecurityMismatch"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

func codeFromDigit(d byte) (Code, error) {
	if d < '0' || d > '9' {
		return 0, fmt.Errorf("response: invalid response code digit %q", d)
	}
	return Code(d - '0'), nil
}

const headerLen = 9 // 'R' + 1 code digit + 5 length digits + "\r\n"

// Header is the decoded form of the literal 9-byte "R<d><lllll>\r\n".
type Header struct {
	Code       Code
	DataLength uint32
}

// FramingError reports a malformed or incomplete envelope.
type FramingError struct {
	Kind string
}

func (e *FramingError) Error() string {
	return "response: framing error: " + e.Kind
}

// Response is the tagged sum described in spec §3: either a framed reply
// with a decoded header and a body of exactly header.DataLength bytes, or
// the raw bytes of the drained buffer when no header was found.
type Response struct {
	Framed bool
	Header Header
	Body   string
	Raw    []byte
}

// isHeaderBegin reports whether buf[i:] begins a well-formed 9-byte header.
func isHeaderBegin(buf []byte, i int) bool {
	if i+headerLen > len(buf) {
		return false
	}
	if buf[i] != 'R' {
		return false
	}
	for j := i + 1; j < i+7; j++ {
		if buf[j] < '0' || buf[j] > '9' {
			return false
		}
	}
	return buf[i+7] == '\r' && buf[i+8] == '\n'
}

// Parse decodes buf per spec §4.3: scan for a header, and either decode a
// framed reply or fall back to Raw(buf) when none is present.
func Parse(buf []byte) (Response, error) {
	start := -1
	for i := 0; i+headerLen <= len(buf); i++ {
		if isHeaderBegin(buf, i) {
			start = i
			break
		}
	}

	if start < 0 {
		return Response{Raw: append([]byte(nil), buf...)}, nil
	}

	if start > 0 {
		// garbage before the header is discarded; callers may log buf[:start]
	}

	code, err := codeFromDigit(buf[start+1])
	if err != nil {
		return Response{}, &FramingError{Kind: err.Error()}
	}

	var dataLength uint32
	for _, d := range buf[start+2 : start+7] {
		dataLength = dataLength*10 + uint32(d-'0')
	}

	header := Header{Code: code, DataLength: dataLength}
	bodyStart := start + headerLen
	remaining := buf[bodyStart:]
	if uint32(len(remaining)) < dataLength {
		return Response{}, &FramingError{Kind: "incomplete body"}
	}

	bodyBytes := remaining[:dataLength]
	body := string(bodyBytes)
	if !utf8.Valid(bodyBytes) {
		body = fmt.Sprintf("%q", bodyBytes)
	}

	return Response{Framed: true, Header: header, Body: body}, nil
}

// GarbagePrefix returns the leading bytes skipped before the header found
// by Parse, if any, so callers can log them. Returns nil when buf decodes
// cleanly from byte 0 or when Parse returned Raw.
func GarbagePrefix(buf []byte) []byte {
	for i := 0; i+headerLen <= len(buf); i++ {
		if isHeaderBegin(buf, i) {
			if i == 0 {
				return nil
			}
			return buf[:i]
		}
	}
	return nil
}
