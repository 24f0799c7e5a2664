package wsjtx

import "fmt"

// DecodeMessage parses one received datagram into a Message. It validates the
// frame header (magic, schema version, type tag), then reads the
// message kind's fields in their fixed wire order. Bytes past the last
// defined field are ignored, which tolerates additive protocol
// evolution; bytes missing before the last required field fail the
// whole decode with ErrTruncatedFrame.
//
// DecodeMessage never validates field values, only structure. All errors are
// per-datagram: drop the frame and keep receiving.
func DecodeMessage(data []byte) (Message, error) {
	c := NewCursor(data)

	magic := c.ReadUint32()
	if err := c.Err(); err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: 0x%08X", ErrInvalidMagic, magic)
	}

	schema := c.ReadUint32()
	if err := c.Err(); err != nil {
		return nil, err
	}
	if schema < SchemaMin || schema > SchemaMax {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchema, schema)
	}

	tag := c.ReadUint32()
	if err := c.Err(); err != nil {
		return nil, err
	}
	if tag > uint32(maxType) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessageType, tag)
	}

	hdr := Header{Schema: schema, ID: c.ReadText()}

	var m Message
	switch Type(tag) {
	case TypeHeartbeat:
		m = decodeHeartbeat(c, hdr)
	case TypeStatus:
		m = decodeStatus(c, hdr)
	case TypeDecode:
		m = decodeDecode(c, hdr)
	case TypeClear:
		m = decodeClear(c, hdr)
	case TypeReply:
		m = decodeReply(c, hdr)
	case TypeQSOLogged:
		m = decodeQSOLogged(c, hdr)
	case TypeClose:
		m = &Close{Header: hdr}
	case TypeReplay:
		m = &Replay{Header: hdr}
	case TypeHaltTx:
		m = &HaltTx{Header: hdr, AutoTXOnly: c.ReadBool()}
	case TypeFreeText:
		m = decodeFreeText(c, hdr)
	case TypeWSPRDecode:
		m = decodeWSPRDecode(c, hdr)
	case TypeLocation:
		m = &Location{Header: hdr, Location: c.ReadText()}
	case TypeLoggedADIF:
		m = &LoggedADIF{Header: hdr, ADIF: c.ReadText()}
	case TypeHighlightCallsign:
		m = decodeHighlightCallsign(c, hdr)
	case TypeSwitchConfiguration:
		m = &SwitchConfiguration{Header: hdr, ConfigurationName: c.ReadText()}
	case TypeConfigure:
		m = decodeConfigure(c, hdr)
	}

	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", Type(tag), err)
	}
	return m, nil
}

func decodeHeartbeat(c *Cursor, hdr Header) *Heartbeat {
	m := &Heartbeat{Header: hdr}
	m.MaxSchema = c.ReadUint32()
	m.Version = c.ReadText()
	m.Revision = c.ReadText()
	return m
}

func decodeStatus(c *Cursor, hdr Header) *Status {
	m := &Status{Header: hdr}
	m.DialFrequency = c.ReadUint64()
	m.Mode = c.ReadText()
	m.DXCall = c.ReadText()
	m.Report = c.ReadText()
	m.TXMode = c.ReadText()
	m.TXEnabled = c.ReadBool()
	m.Transmitting = c.ReadBool()
	m.Decoding = c.ReadBool()
	m.RXDF = c.ReadUint32()
	m.TXDF = c.ReadUint32()
	m.DECall = c.ReadText()
	m.DEGrid = c.ReadText()
	m.DXGrid = c.ReadText()
	m.TXWatchdog = c.ReadBool()
	m.SubMode = c.ReadText()
	m.FastMode = c.ReadBool()
	m.SpecialOpMode = c.ReadUint8()
	m.FrequencyTolerance = c.ReadUint32()
	m.TRPeriod = c.ReadUint32()
	m.ConfigurationName = c.ReadText()
	return m
}

func decodeDecode(c *Cursor, hdr Header) *Decode {
	m := &Decode{Header: hdr}
	m.New = c.ReadBool()
	m.Time = c.ReadUint32()
	m.SNR = c.ReadInt32()
	m.DeltaTime = c.ReadFloat64()
	m.DeltaFrequency = c.ReadUint32()
	m.Mode = c.ReadText()
	m.Message = c.ReadText()
	m.LowConfidence = c.ReadBool()
	m.OffAir = c.ReadBool()
	return m
}

func decodeClear(c *Cursor, hdr Header) *Clear {
	m := &Clear{Header: hdr}
	// The window byte only appears in frames sent to the application;
	// frames it emits end after the ID.
	if c.Err() == nil && c.Remaining() > 0 {
		m.Window = c.ReadUint8()
	}
	return m
}

func decodeReply(c *Cursor, hdr Header) *Reply {
	m := &Reply{Header: hdr}
	m.Time = c.ReadUint32()
	m.SNR = c.ReadInt32()
	m.DeltaTime = c.ReadFloat64()
	m.DeltaFrequency = c.ReadUint32()
	m.Mode = c.ReadText()
	m.Message = c.ReadText()
	m.LowConfidence = c.ReadBool()
	m.Modifiers = c.ReadUint8()
	return m
}

func decodeQSOLogged(c *Cursor, hdr Header) *QSOLogged {
	m := &QSOLogged{Header: hdr}
	m.TimeOff = readDateTime(c)
	m.DXCall = c.ReadText()
	m.DXGrid = c.ReadText()
	m.DialFrequency = c.ReadUint64()
	m.Mode = c.ReadText()
	m.ReportSent = c.ReadText()
	m.ReportReceived = c.ReadText()
	m.TXPower = c.ReadText()
	m.Comments = c.ReadText()
	m.Name = c.ReadText()
	m.TimeOn = readDateTime(c)
	m.OperatorCall = c.ReadText()
	m.MyCall = c.ReadText()
	m.MyGrid = c.ReadText()
	m.ExchangeSent = c.ReadText()
	m.ExchangeReceived = c.ReadText()
	return m
}

func decodeFreeText(c *Cursor, hdr Header) *FreeText {
	m := &FreeText{Header: hdr}
	m.Text = c.ReadText()
	m.Send = c.ReadBool()
	return m
}

func decodeWSPRDecode(c *Cursor, hdr Header) *WSPRDecode {
	m := &WSPRDecode{Header: hdr}
	m.New = c.ReadBool()
	m.Time = c.ReadUint32()
	m.SNR = c.ReadInt32()
	m.DeltaTime = c.ReadFloat64()
	m.Frequency = c.ReadUint64()
	m.Drift = c.ReadInt32()
	m.Callsign = c.ReadText()
	m.Grid = c.ReadText()
	m.Power = c.ReadInt32()
	m.OffAir = c.ReadBool()
	return m
}

func decodeHighlightCallsign(c *Cursor, hdr Header) *HighlightCallsign {
	m := &HighlightCallsign{Header: hdr}
	m.Callsign = c.ReadText()
	m.Background = c.ReadColor()
	m.Foreground = c.ReadColor()
	m.HighlightLast = c.ReadBool()
	return m
}

func decodeConfigure(c *Cursor, hdr Header) *Configure {
	m := &Configure{Header: hdr}
	m.Mode = c.ReadText()
	m.FrequencyTolerance = c.ReadUint32()
	m.SubMode = c.ReadText()
	m.FastMode = c.ReadBool()
	m.TRPeriod = c.ReadUint32()
	m.RXDF = c.ReadUint32()
	m.DXCall = c.ReadText()
	m.DXGrid = c.ReadText()
	m.GenerateMessages = c.ReadBool()
	return m
}

// readDateTime reads the QDateTime wire form. The UTC offset is only
// present when the timespec selects it.
func readDateTime(c *Cursor) DateTime {
	var dt DateTime
	dt.Day = c.ReadUint64()
	dt.Millis = c.ReadUint32()
	dt.Timespec = c.ReadUint8()
	if c.Err() == nil && dt.Timespec == 2 {
		dt.Offset = c.ReadInt32()
	}
	return dt
}
