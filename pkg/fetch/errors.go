package fetch

import "fmt"

// TransportError indicates the request never produced an HTTP response
// (connection refused, DNS failure, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError indicates the server answered with a non-2xx status.
type ProtocolError struct {
	StatusCode int
	Body       string
}

func (e *ProtocolError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("protocol: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("protocol: unexpected status %d: %s", e.StatusCode, e.Body)
}

// DecodeError indicates the response body did not match the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
