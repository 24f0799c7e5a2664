package wsjtx

import "fmt"

// Encode serializes a client-sendable message into datagram bytes. The
// field order written for each kind is exactly the order Decode reads,
// which is the interoperability contract with the receiving
// application. Field values are passed through as given; the only
// checks are structural (valid UTF-8 text, a recognized schema).
//
// A zero Header.Schema encodes as schema 2. Message kinds the
// application only emits (Status, Decode, QSOLogged, WSPRDecode,
// LoggedADIF) fail with ErrNotSendable.
func Encode(m Message) ([]byte, error) {
	var hdr Header
	var body func(c *Cursor)

	switch v := m.(type) {
	case *Heartbeat:
		hdr = v.Header
		body = func(c *Cursor) {
			c.WriteUint32(v.MaxSchema)
			c.WriteText(v.Version)
			c.WriteText(v.Revision)
		}
	case *Clear:
		hdr = v.Header
		body = func(c *Cursor) {
			c.WriteUint8(v.Window)
		}
	case *Reply:
		hdr = v.Header
		body = func(c *Cursor) {
			c.WriteUint32(v.Time)
			c.WriteInt32(v.SNR)
			c.WriteFloat64(v.DeltaTime)
			c.WriteUint32(v.DeltaFrequency)
			c.WriteText(v.Mode)
			c.WriteText(v.Message)
			c.WriteBool(v.LowConfidence)
			c.WriteUint8(v.Modifiers)
		}
	case *Close:
		hdr = v.Header
		body = func(c *Cursor) {}
	case *Replay:
		hdr = v.Header
		body = func(c *Cursor) {}
	case *HaltTx:
		hdr = v.Header
		body = func(c *Cursor) {
			c.WriteBool(v.AutoTXOnly)
		}
	case *FreeText:
		hdr = v.Header
		body = func(c *Cursor) {
			c.WriteText(v.Text)
			c.WriteBool(v.Send)
		}
	case *Location:
		hdr = v.Header
		body = func(c *Cursor) {
			c.WriteText(v.Location)
		}
	case *HighlightCallsign:
		hdr = v.Header
		body = func(c *Cursor) {
			c.WriteText(v.Callsign)
			c.WriteColor(v.Background)
			c.WriteColor(v.Foreground)
			c.WriteBool(v.HighlightLast)
		}
	case *SwitchConfiguration:
		hdr = v.Header
		body = func(c *Cursor) {
			c.WriteText(v.ConfigurationName)
		}
	case *Configure:
		hdr = v.Header
		body = func(c *Cursor) {
			c.WriteText(v.Mode)
			c.WriteUint32(v.FrequencyTolerance)
			c.WriteText(v.SubMode)
			c.WriteBool(v.FastMode)
			c.WriteUint32(v.TRPeriod)
			c.WriteUint32(v.RXDF)
			c.WriteText(v.DXCall)
			c.WriteText(v.DXGrid)
			c.WriteBool(v.GenerateMessages)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotSendable, m.Type())
	}

	schema := hdr.Schema
	if schema == 0 {
		schema = SchemaMin
	}
	if schema < SchemaMin || schema > SchemaMax {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchema, schema)
	}

	c := NewCursor(nil)
	c.WriteUint32(Magic)
	c.WriteUint32(schema)
	c.WriteUint32(uint32(m.Type()))
	c.WriteText(hdr.ID)
	body(c)
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", m.Type(), err)
	}
	return c.Bytes(), nil
}
