package ft8

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tkerr/ab3gy-wsjtx/internal/wsjtx"
)

// Record is one decoded FT8 transmission in a form convenient for
// logging and band analysis. It is a passive value derived from a
// Decode message; it holds no reference to the codec or the transport.
type Record struct {
	ClientID       string
	New            bool
	Time           uint32 // milliseconds since midnight
	SNR            int32  // dB
	DeltaTime      float64
	DeltaFrequency uint32 // Hz above dial
	Mode           string
	Message        string
	LowConfidence  bool
	OffAir         bool
}

// FromDecode builds a Record from a decoded message. Null text fields
// become empty strings; the distinction matters on the wire, not in a
// log line.
func FromDecode(d *wsjtx.Decode) Record {
	return Record{
		ClientID:       d.ID.String,
		New:            d.New,
		Time:           d.Time,
		SNR:            d.SNR,
		DeltaTime:      d.DeltaTime,
		DeltaFrequency: d.DeltaFrequency,
		Mode:           d.Mode.String,
		Message:        d.Message.String,
		LowConfidence:  d.LowConfidence,
		OffAir:         d.OffAir,
	}
}

// TimeOfDay formats the decode time as HHMMSS.
func (r Record) TimeOfDay() string {
	secs := r.Time / 1000
	return fmt.Sprintf("%02d%02d%02d", secs/3600, secs/60%60, secs%60)
}

// SNRString formats the SNR as a sign and two digits, the width WSJT-X
// uses in its band activity window.
func (r Record) SNRString() string {
	return fmt.Sprintf("%+03d", r.SNR)
}

// DeltaTimeString formats the time offset with one decimal and an
// explicit sign.
func (r Record) DeltaTimeString() string {
	return fmt.Sprintf("%+.1f", r.DeltaTime)
}

// IsCQ reports whether the transmission is a CQ call.
func (r Record) IsCQ() bool {
	return strings.HasPrefix(r.Message, "CQ ")
}

// String renders the record as one band-activity line.
func (r Record) String() string {
	return fmt.Sprintf("%s %s %s %4d %s %s",
		r.TimeOfDay(), r.SNRString(), r.DeltaTimeString(),
		r.DeltaFrequency, r.Mode, r.Message)
}

// SortByFrequency orders records by audio offset, ascending.
func SortByFrequency(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].DeltaFrequency < recs[j].DeltaFrequency
	})
}

// SortBySNR orders records strongest first.
func SortBySNR(recs []Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].SNR > recs[j].SNR
	})
}
