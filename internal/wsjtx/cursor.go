package wsjtx

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"unicode/utf8"
)

// nullText is the length sentinel marking an absent string on the wire.
const nullText = 0xFFFFFFFF

// Text is a protocol string field. The wire format distinguishes a null
// string (length sentinel 0xFFFFFFFF) from an empty one; Valid is false
// only for null. The zero value is the null string.
type Text struct {
	String string
	Valid  bool
}

// NewText returns a non-null Text holding s.
func NewText(s string) Text {
	return Text{String: s, Valid: true}
}

// MarshalJSON renders a null Text as JSON null and any other Text as a
// plain JSON string.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.String)
}

// UnmarshalJSON accepts JSON null or a string.
func (t *Text) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Text{}
		return nil
	}
	if err := json.Unmarshal(data, &t.String); err != nil {
		return err
	}
	t.Valid = true
	return nil
}

// Cursor provides sequential typed access to a frame buffer. All
// multi-byte values are network (big-endian) byte order, matching the
// QDataStream serialization WSJT-X uses.
//
// The cursor latches the first error it encounters: once a read fails,
// every subsequent read returns the zero value without advancing, and
// Err reports the failure. Callers read a full field sequence and check
// Err once at the end, so a frame either decodes completely or not at
// all. Write methods mirror the reads and append to the buffer.
type Cursor struct {
	buf []byte
	off int
	err error
}

// NewCursor returns a cursor positioned at the start of buf. Pass nil
// to start an empty buffer for writing.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Err returns the first read or write failure, or nil.
func (c *Cursor) Err() error {
	return c.err
}

// Bytes returns the underlying buffer.
func (c *Cursor) Bytes() []byte {
	return c.buf
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.off
}

// need reports whether n more bytes can be read, latching
// ErrTruncatedFrame if not.
func (c *Cursor) need(n int) bool {
	if c.err != nil {
		return false
	}
	if c.off+n > len(c.buf) {
		c.err = fmt.Errorf("%w: need %d bytes at offset %d, %d remain",
			ErrTruncatedFrame, n, c.off, len(c.buf)-c.off)
		return false
	}
	return true
}

// ReadUint8 reads one unsigned byte.
func (c *Cursor) ReadUint8() uint8 {
	if !c.need(1) {
		return 0
	}
	v := c.buf[c.off]
	c.off++
	return v
}

// ReadInt8 reads one signed byte.
func (c *Cursor) ReadInt8() int8 {
	return int8(c.ReadUint8())
}

// ReadBool reads a one-byte boolean (any non-zero value is true).
func (c *Cursor) ReadBool() bool {
	return c.ReadUint8() != 0
}

// ReadUint16 reads a big-endian 16-bit unsigned integer.
func (c *Cursor) ReadUint16() uint16 {
	if !c.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(c.buf[c.off:])
	c.off += 2
	return v
}

// ReadUint32 reads a big-endian 32-bit unsigned integer.
func (c *Cursor) ReadUint32() uint32 {
	if !c.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(c.buf[c.off:])
	c.off += 4
	return v
}

// ReadInt32 reads a big-endian 32-bit signed integer.
func (c *Cursor) ReadInt32() int32 {
	return int32(c.ReadUint32())
}

// ReadUint64 reads a big-endian 64-bit unsigned integer.
func (c *Cursor) ReadUint64() uint64 {
	if !c.need(8) {
		return 0
	}
	v := binary.BigEndian.Uint64(c.buf[c.off:])
	c.off += 8
	return v
}

// ReadInt64 reads a big-endian 64-bit signed integer.
func (c *Cursor) ReadInt64() int64 {
	return int64(c.ReadUint64())
}

// ReadFloat64 reads a big-endian IEEE 754 double.
func (c *Cursor) ReadFloat64() float64 {
	return math.Float64frombits(c.ReadUint64())
}

// ReadText reads a length-prefixed UTF-8 string. The sentinel length
// 0xFFFFFFFF decodes to the null string, not an empty one. A declared
// length larger than the remaining buffer latches ErrMalformedText and
// leaves the cursor where the field began.
func (c *Cursor) ReadText() Text {
	start := c.off
	n := c.ReadUint32()
	if c.err != nil {
		return Text{}
	}
	if n == nullText {
		return Text{}
	}
	if uint64(n) > uint64(len(c.buf)-c.off) {
		c.off = start
		c.err = fmt.Errorf("%w: declared length %d exceeds %d remaining bytes",
			ErrMalformedText, n, len(c.buf)-start-4)
		return Text{}
	}
	s := string(c.buf[c.off : c.off+int(n)])
	c.off += int(n)
	return Text{String: s, Valid: true}
}

// WriteUint8 appends one unsigned byte.
func (c *Cursor) WriteUint8(v uint8) {
	if c.err != nil {
		return
	}
	c.buf = append(c.buf, v)
	c.off = len(c.buf)
}

// WriteInt8 appends one signed byte.
func (c *Cursor) WriteInt8(v int8) {
	c.WriteUint8(uint8(v))
}

// WriteBool appends a one-byte boolean.
func (c *Cursor) WriteBool(v bool) {
	var b uint8
	if v {
		b = 1
	}
	c.WriteUint8(b)
}

// WriteUint16 appends a big-endian 16-bit unsigned integer.
func (c *Cursor) WriteUint16(v uint16) {
	if c.err != nil {
		return
	}
	c.buf = binary.BigEndian.AppendUint16(c.buf, v)
	c.off = len(c.buf)
}

// WriteUint32 appends a big-endian 32-bit unsigned integer.
func (c *Cursor) WriteUint32(v uint32) {
	if c.err != nil {
		return
	}
	c.buf = binary.BigEndian.AppendUint32(c.buf, v)
	c.off = len(c.buf)
}

// WriteInt32 appends a big-endian 32-bit signed integer.
func (c *Cursor) WriteInt32(v int32) {
	c.WriteUint32(uint32(v))
}

// WriteUint64 appends a big-endian 64-bit unsigned integer.
func (c *Cursor) WriteUint64(v uint64) {
	if c.err != nil {
		return
	}
	c.buf = binary.BigEndian.AppendUint64(c.buf, v)
	c.off = len(c.buf)
}

// WriteInt64 appends a big-endian 64-bit signed integer.
func (c *Cursor) WriteInt64(v int64) {
	c.WriteUint64(uint64(v))
}

// WriteFloat64 appends a big-endian IEEE 754 double.
func (c *Cursor) WriteFloat64(v float64) {
	c.WriteUint64(math.Float64bits(v))
}

// WriteText appends a length-prefixed UTF-8 string. The null string
// emits the 0xFFFFFFFF sentinel and no payload bytes. Text that is not
// valid UTF-8 latches ErrInvalidText without producing any bytes.
func (c *Cursor) WriteText(t Text) {
	if c.err != nil {
		return
	}
	if !t.Valid {
		c.WriteUint32(nullText)
		return
	}
	if !utf8.ValidString(t.String) {
		c.err = fmt.Errorf("%w: %q", ErrInvalidText, t.String)
		return
	}
	c.WriteUint32(uint32(len(t.String)))
	c.buf = append(c.buf, t.String...)
	c.off = len(c.buf)
}
