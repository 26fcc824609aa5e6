package hutko

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCallback is returned for an empty callback body.
	ErrEmptyCallback = errors.New("empty callback body")

	// ErrInvalidSignature is returned when the callback signature does not
	// match the one recomputed with the merchant secret. May indicate
	// tampering; callers should log it for security review.
	ErrInvalidSignature = errors.New("callback signature is not valid")
)

// TransportError wraps a network-level failure (DNS, connect, timeout).
// Recoverable by the caller; never retried here.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("hutko transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UnexpectedStatusError is returned for a non-200 HTTP response.
type UnexpectedStatusError struct {
	Code int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("hutko API returned HTTP %d", e.Code)
}

// ProtocolError is returned when the response body is missing the expected
// response wrapper or its status field. Indicates an integration bug on the
// processor side.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "unknown hutko API answer: " + e.Reason
}

// DeclinedError is returned when the processor explicitly rejected the
// request. Message carries the processor's own error text.
type DeclinedError struct {
	Message string
}

func (e *DeclinedError) Error() string {
	if e.Message == "" {
		return "hutko declined the request"
	}
	return "hutko declined the request: " + e.Message
}

// IsDeclined reports whether err is a processor decline rather than a
// transport or protocol fault.
func IsDeclined(err error) bool {
	var declined *DeclinedError
	return errors.As(err, &declined)
}

// MerchantMismatchError is returned when a callback carries a merchant id
// other than the configured one. Both values are kept for diagnostics.
type MerchantMismatchError struct {
	Expected int
	Received string
}

func (e *MerchantMismatchError) Error() string {
	received := e.Received
	if received == "" {
		received = "NULL"
	}
	return fmt.Sprintf("merchant data is incorrect: expected %d, received %s", e.Expected, received)
}
