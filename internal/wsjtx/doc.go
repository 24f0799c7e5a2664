// Package wsjtx implements the binary UDP message protocol spoken by
// WSJT-X on its reporting port. It provides a byte-exact decoder for the
// messages the application emits and an encoder for the commands it
// accepts, per the wire format described in the WSJT-X source file
// src/wsjtx/Network/NetworkMessage.hpp.
//
// The codec is a pure transform: Decode takes one received datagram and
// returns a Message, Encode takes a Message and returns datagram bytes.
// It performs no I/O and holds no state between calls, so concurrent use
// from multiple goroutines needs no locking. Socket handling belongs to
// the caller (see the monitor package).
package wsjtx
