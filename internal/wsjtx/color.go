package wsjtx

// Qt serializes colors with a one-byte color-spec tag followed by four
// 16-bit channels and a 16-bit pad. WSJT-X only ever exchanges RGB
// colors; the invalid spec is a distinct state used to clear and cancel
// callsign highlighting, not a zero-valued color.
const (
	colorSpecInvalid = 0
	colorSpecRGB     = 1
)

// channelScale maps an 8-bit channel onto Qt's 16-bit representation.
// 0x0101 replicates the byte into both halves, so the mapping is exact
// in both directions for every value in 0-255.
const channelScale = 0x0101

// Color is an ARGB color value. Valid is false for the invalid-color
// sentinel, which clears highlighting when sent to WSJT-X.
type Color struct {
	Valid bool
	Alpha uint8
	Red   uint8
	Green uint8
	Blue  uint8
}

// RGB returns a fully opaque color.
func RGB(red, green, blue uint8) Color {
	return Color{Valid: true, Alpha: 0xFF, Red: red, Green: green, Blue: blue}
}

// FromRGBA splits a 32-bit composite value laid out as
// red<<24 | green<<16 | blue<<8 | alpha.
func FromRGBA(rgba uint32) Color {
	return Color{
		Valid: true,
		Red:   uint8(rgba >> 24),
		Green: uint8(rgba >> 16),
		Blue:  uint8(rgba >> 8),
		Alpha: uint8(rgba),
	}
}

// RGBA joins the channels into a 32-bit composite value, the inverse of
// FromRGBA.
func (c Color) RGBA() uint32 {
	return uint32(c.Red)<<24 | uint32(c.Green)<<16 | uint32(c.Blue)<<8 | uint32(c.Alpha)
}

// Predefined colors, matching the Qt named-color palette WSJT-X uses
// for highlighting. ColorInvalid clears and disables highlighting.
var (
	ColorInvalid     = Color{}
	ColorBlack       = RGB(0x00, 0x00, 0x00)
	ColorWhite       = RGB(0xFF, 0xFF, 0xFF)
	ColorDarkGray    = RGB(0x80, 0x80, 0x80)
	ColorGray        = RGB(0xA0, 0xA0, 0xA4)
	ColorLightGray   = RGB(0xC0, 0xC0, 0xC0)
	ColorRed         = RGB(0xFF, 0x00, 0x00)
	ColorGreen       = RGB(0x00, 0xFF, 0x00)
	ColorBlue        = RGB(0x00, 0x00, 0xFF)
	ColorCyan        = RGB(0x00, 0xFF, 0xFF)
	ColorMagenta     = RGB(0xFF, 0x00, 0xFF)
	ColorYellow      = RGB(0xFF, 0xFF, 0x00)
	ColorDarkRed     = RGB(0x80, 0x00, 0x00)
	ColorDarkGreen   = RGB(0x00, 0x80, 0x00)
	ColorDarkBlue    = RGB(0x00, 0x00, 0x80)
	ColorDarkCyan    = RGB(0x00, 0x80, 0x80)
	ColorDarkMagenta = RGB(0x80, 0x00, 0x80)
	ColorDarkYellow  = RGB(0x80, 0x80, 0x00)
	ColorOrange      = RGB(0xFF, 0xA5, 0x00)
	ColorDarkViolet  = RGB(0x94, 0x00, 0xD3)
	ColorTransparent = Color{Valid: true}
)

// ReadColor reads a serialized color. An invalid color is the spec tag
// alone; no channel bytes follow it.
func (c *Cursor) ReadColor() Color {
	spec := c.ReadUint8()
	if c.err != nil || spec == colorSpecInvalid {
		return Color{}
	}
	col := Color{
		Valid: true,
		Alpha: uint8(c.ReadUint16() / channelScale),
		Red:   uint8(c.ReadUint16() / channelScale),
		Green: uint8(c.ReadUint16() / channelScale),
		Blue:  uint8(c.ReadUint16() / channelScale),
	}
	c.ReadUint16() // reserved pad
	if c.err != nil {
		return Color{}
	}
	return col
}

// WriteColor appends a serialized color. Channel order on the wire is
// alpha, red, green, blue.
func (c *Cursor) WriteColor(col Color) {
	if !col.Valid {
		c.WriteUint8(colorSpecInvalid)
		return
	}
	c.WriteUint8(colorSpecRGB)
	c.WriteUint16(uint16(col.Alpha) * channelScale)
	c.WriteUint16(uint16(col.Red) * channelScale)
	c.WriteUint16(uint16(col.Green) * channelScale)
	c.WriteUint16(uint16(col.Blue) * channelScale)
	c.WriteUint16(0)
}
