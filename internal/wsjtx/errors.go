package wsjtx

import (
	"errors"
	"fmt"
)

// Decode and encode failure classes. Decode errors are per-datagram and
// non-fatal: the caller's receive loop is expected to drop the frame and
// continue. Wrapped errors remain matchable with errors.Is.
var (
	// ErrInvalidMagic indicates the frame does not start with the WSJT-X
	// magic number and is not protocol traffic.
	ErrInvalidMagic = errors.New("invalid magic number")

	// ErrUnsupportedSchema indicates a schema version other than 2 or 3.
	ErrUnsupportedSchema = errors.New("unsupported schema version")

	// ErrUnknownMessageType indicates a message type tag outside 0-15.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrTruncatedFrame indicates the frame ended before the last
	// required field of its message type.
	ErrTruncatedFrame = errors.New("truncated frame")

	// ErrMalformedText indicates a text field whose declared length
	// exceeds the remaining frame bytes. It is a kind of truncation, so
	// it also matches ErrTruncatedFrame.
	ErrMalformedText = fmt.Errorf("%w: malformed text field", ErrTruncatedFrame)

	// ErrInvalidText indicates an outgoing text field that is not valid
	// UTF-8 and cannot be put on the wire.
	ErrInvalidText = errors.New("text is not valid UTF-8")

	// ErrNotSendable indicates an attempt to encode a message type that
	// WSJT-X only emits and never accepts.
	ErrNotSendable = errors.New("message type is not client-sendable")
)
