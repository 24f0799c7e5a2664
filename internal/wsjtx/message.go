package wsjtx

import (
	"fmt"
	"time"
)

// Magic is the fixed value at the start of every frame, used to reject
// non-protocol traffic.
const Magic = 0xADBCCBDA

// Schema versions this codec recognizes. WSJT-X 2.2.0 and later speak
// schema 2 or 3; anything else is refused at decode time.
const (
	SchemaMin = 2
	SchemaMax = 3
)

// Type is the message type tag carried in every frame header.
type Type uint32

// Message type tags, per NetworkMessage.hpp.
const (
	TypeHeartbeat Type = iota
	TypeStatus
	TypeDecode
	TypeClear
	TypeReply
	TypeQSOLogged
	TypeClose
	TypeReplay
	TypeHaltTx
	TypeFreeText
	TypeWSPRDecode
	TypeLocation
	TypeLoggedADIF
	TypeHighlightCallsign
	TypeSwitchConfiguration
	TypeConfigure

	maxType = TypeConfigure
)

var typeNames = [...]string{
	"Heartbeat", "Status", "Decode", "Clear", "Reply", "QSOLogged",
	"Close", "Replay", "HaltTx", "FreeText", "WSPRDecode", "Location",
	"LoggedADIF", "HighlightCallsign", "SwitchConfiguration", "Configure",
}

// String returns the message type name.
func (t Type) String() string {
	if t > maxType {
		return fmt.Sprintf("Unknown(%d)", uint32(t))
	}
	return typeNames[t]
}

// Header carries the fields common to every message: the schema version
// of the frame and the ID of the application instance that sent it (or
// should receive it).
type Header struct {
	Schema uint32
	ID     Text
}

// Head returns the embedded header. Every message embeds Header, so
// callers can reach schema and ID without switching on the concrete
// type.
func (h *Header) Head() *Header { return h }

// Message is the tagged union over all protocol message kinds. A
// decoded Message is an immutable value; consumers dispatch on Type or
// type-switch on the concrete pointer type.
type Message interface {
	Type() Type
	Head() *Header
}

// DateTime is the Qt QDateTime wire representation: a Julian Day
// number, milliseconds since midnight, and a timespec selecting local
// time (0), UTC (1), or a fixed UTC offset in seconds (2). The offset
// field is only present on the wire when Timespec is 2.
type DateTime struct {
	Day      uint64
	Millis   uint32
	Timespec uint8
	Offset   int32
}

// Time converts the value to a time.Time. Timespec 2 yields a fixed
// zone at the carried offset; everything else is taken as UTC.
func (dt DateTime) Time() time.Time {
	// Gregorian date from Julian Day number. Julian Day 2440588 is
	// 01-Jan-1970.
	z := float64(dt.Day)
	w := float64(int((z - 1867216.25) / 36524.25))
	x := float64(int(w / 4))
	a := z + 1 + w - x
	b := a + 1524
	c := int((b - 122.1) / 365.25)
	d := int(365.25 * float64(c))
	e := int((b - float64(d)) / 30.6001)
	f := int(30.6001 * float64(e))
	day := int(b) - d - f
	month := e - 1
	if month > 12 {
		month -= 12
	}
	year := c - 4716
	if month < 3 {
		year = c - 4715
	}

	loc := time.UTC
	if dt.Timespec == 2 {
		loc = time.FixedZone("", int(dt.Offset))
	}
	midnight := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	return midnight.Add(time.Duration(dt.Millis) * time.Millisecond)
}

// Heartbeat is sent by both sides at startup and periodically
// thereafter to negotiate the schema in use.
type Heartbeat struct {
	Header
	MaxSchema uint32
	Version   Text
	Revision  Text
}

// Status reports the application's operating state. Emitted whenever
// the state changes.
type Status struct {
	Header
	DialFrequency      uint64 // Hz
	Mode               Text
	DXCall             Text
	Report             Text
	TXMode             Text
	TXEnabled          bool
	Transmitting       bool
	Decoding           bool
	RXDF               uint32 // Hz above dial
	TXDF               uint32 // Hz above dial
	DECall             Text
	DEGrid             Text
	DXGrid             Text
	TXWatchdog         bool
	SubMode            Text
	FastMode           bool
	SpecialOpMode      uint8
	FrequencyTolerance uint32
	TRPeriod           uint32 // seconds
	ConfigurationName  Text
}

// Decode reports one decoded transmission.
type Decode struct {
	Header
	New            bool   // false when replaying prior decodes
	Time           uint32 // milliseconds since midnight
	SNR            int32  // dB
	DeltaTime      float64
	DeltaFrequency uint32 // Hz above dial
	Mode           Text
	Message        Text
	LowConfidence  bool
	OffAir         bool
}

// Clear requests (or reports) clearing of the decode windows. Window
// selects the band activity window (0), RX frequency window (1), or
// both (2); it is only present in frames sent to the application.
type Clear struct {
	Header
	Window uint8
}

// Reply asks the application to reply to a prior decode. Its fields
// identify the decode being answered, so NewReplyTo is the usual
// constructor.
type Reply struct {
	Header
	Time           uint32
	SNR            int32
	DeltaTime      float64
	DeltaFrequency uint32
	Mode           Text
	Message        Text
	LowConfidence  bool
	Modifiers      uint8
}

// NewReplyTo builds a Reply command answering the given decode. The id
// identifies the sender of the reply, not the decode's originator.
func NewReplyTo(d *Decode, id Text) *Reply {
	return &Reply{
		Header:         Header{Schema: d.Schema, ID: id},
		Time:           d.Time,
		SNR:            d.SNR,
		DeltaTime:      d.DeltaTime,
		DeltaFrequency: d.DeltaFrequency,
		Mode:           d.Mode,
		Message:        d.Message,
		LowConfidence:  d.LowConfidence,
	}
}

// QSOLogged reports a contact logged by the operator.
type QSOLogged struct {
	Header
	TimeOff          DateTime
	DXCall           Text
	DXGrid           Text
	DialFrequency    uint64 // Hz
	Mode             Text
	ReportSent       Text
	ReportReceived   Text
	TXPower          Text
	Comments         Text
	Name             Text
	TimeOn           DateTime
	OperatorCall     Text
	MyCall           Text
	MyGrid           Text
	ExchangeSent     Text
	ExchangeReceived Text
}

// Close is sent when either side is shutting down.
type Close struct {
	Header
}

// Replay asks the application to resend every decode of the last
// period as Decode messages with New false.
type Replay struct {
	Header
}

// HaltTx stops a transmission in progress. With AutoTXOnly set, only
// auto-TX is halted and a manual transmission may continue.
type HaltTx struct {
	Header
	AutoTXOnly bool
}

// FreeText sets the free-text message field. Send additionally
// requests immediate transmission.
type FreeText struct {
	Header
	Text Text
	Send bool
}

// WSPRDecode reports one decoded WSPR transmission.
type WSPRDecode struct {
	Header
	New       bool
	Time      uint32 // milliseconds since midnight
	SNR       int32  // dB
	DeltaTime float64
	Frequency uint64 // Hz
	Drift     int32  // Hz
	Callsign  Text
	Grid      Text
	Power     int32 // dBm
	OffAir    bool
}

// Location sets the operating location as a Maidenhead grid square.
type Location struct {
	Header
	Location Text
}

// LoggedADIF reports a logged contact as an ADIF record.
type LoggedADIF struct {
	Header
	ADIF Text
}

// HighlightCallsign colors a callsign in the band activity window.
// Sending invalid colors clears the highlight. HighlightLast restricts
// the highlight to the last decode period.
type HighlightCallsign struct {
	Header
	Callsign      Text
	Background    Color
	Foreground    Color
	HighlightLast bool
}

// SwitchConfiguration switches the application to a named
// configuration.
type SwitchConfiguration struct {
	Header
	ConfigurationName Text
}

// Configure adjusts individual settings of the current configuration.
// Null text fields and zero numeric fields leave the corresponding
// setting unchanged.
type Configure struct {
	Header
	Mode               Text
	FrequencyTolerance uint32
	SubMode            Text
	FastMode           bool
	TRPeriod           uint32
	RXDF               uint32
	DXCall             Text
	DXGrid             Text
	GenerateMessages   bool
}

func (*Heartbeat) Type() Type           { return TypeHeartbeat }
func (*Status) Type() Type              { return TypeStatus }
func (*Decode) Type() Type              { return TypeDecode }
func (*Clear) Type() Type               { return TypeClear }
func (*Reply) Type() Type               { return TypeReply }
func (*QSOLogged) Type() Type           { return TypeQSOLogged }
func (*Close) Type() Type               { return TypeClose }
func (*Replay) Type() Type              { return TypeReplay }
func (*HaltTx) Type() Type              { return TypeHaltTx }
func (*FreeText) Type() Type            { return TypeFreeText }
func (*WSPRDecode) Type() Type          { return TypeWSPRDecode }
func (*Location) Type() Type            { return TypeLocation }
func (*LoggedADIF) Type() Type          { return TypeLoggedADIF }
func (*HighlightCallsign) Type() Type   { return TypeHighlightCallsign }
func (*SwitchConfiguration) Type() Type { return TypeSwitchConfiguration }
func (*Configure) Type() Type           { return TypeConfigure }
