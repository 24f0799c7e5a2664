package wsjtx

import (
	"bytes"
	"testing"
)

func TestColorChannelBijection(t *testing.T) {
	// Run every 8-bit value through each channel position. The x257
	// scale must be loss-free over the whole domain.
	for v := 0; v <= 255; v++ {
		col := Color{
			Valid: true,
			Alpha: uint8(v),
			Red:   uint8(255 - v),
			Green: uint8(v) / 2,
			Blue:  ^uint8(v),
		}
		w := NewCursor(nil)
		w.WriteColor(col)
		r := NewCursor(w.Bytes())
		got := r.ReadColor()
		if r.Err() != nil {
			t.Fatalf("v=%d: %v", v, r.Err())
		}
		if got != col {
			t.Fatalf("v=%d: round trip %+v, want %+v", v, got, col)
		}
	}
}

func TestColorWireLayout(t *testing.T) {
	w := NewCursor(nil)
	w.WriteColor(Color{Valid: true, Alpha: 255, Red: 0, Green: 128, Blue: 255})
	want := []byte{
		0x01,       // RGB color spec
		0xFF, 0xFF, // alpha
		0x00, 0x00, // red
		0x80, 0x80, // green
		0xFF, 0xFF, // blue
		0x00, 0x00, // pad
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("color bytes = % X, want % X", w.Bytes(), want)
	}

	r := NewCursor(w.Bytes())
	got := r.ReadColor()
	if got != (Color{Valid: true, Alpha: 255, Red: 0, Green: 128, Blue: 255}) {
		t.Errorf("decoded %+v", got)
	}
}

func TestInvalidColor(t *testing.T) {
	w := NewCursor(nil)
	w.WriteColor(ColorInvalid)
	if len(w.Bytes()) != 1 {
		t.Fatalf("invalid color wrote %d bytes, want tag byte only", len(w.Bytes()))
	}

	r := NewCursor(w.Bytes())
	got := r.ReadColor()
	if r.Err() != nil {
		t.Fatalf("unexpected error: %v", r.Err())
	}
	if got.Valid {
		t.Errorf("invalid color decoded as valid: %+v", got)
	}
	if r.Remaining() != 0 {
		t.Errorf("invalid color left %d unread bytes", r.Remaining())
	}
}

func TestRGBARoundTrip(t *testing.T) {
	tests := []Color{
		RGB(0x00, 0x00, 0x00),
		RGB(0xFF, 0xFF, 0xFF),
		{Valid: true, Alpha: 0xDD, Red: 0xAA, Green: 0xBB, Blue: 0xCC},
		ColorOrange,
	}
	for _, col := range tests {
		if got := FromRGBA(col.RGBA()); got != col {
			t.Errorf("FromRGBA(RGBA(%+v)) = %+v", col, got)
		}
	}
}

func TestNamedColors(t *testing.T) {
	if ColorYellow != (Color{Valid: true, Alpha: 0xFF, Red: 0xFF, Green: 0xFF}) {
		t.Errorf("ColorYellow = %+v", ColorYellow)
	}
	if ColorTransparent.Alpha != 0 || !ColorTransparent.Valid {
		t.Errorf("ColorTransparent = %+v", ColorTransparent)
	}
	if ColorInvalid.Valid {
		t.Errorf("ColorInvalid is valid")
	}
}
