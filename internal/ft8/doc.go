// Package ft8 post-processes FT8 decode reports. A Record is built
// purely from the fields of an already-decoded Decode message and adds
// the display formats and orderings logging tools want: HHMMSS time of
// day, fixed-width signed SNR, CQ detection, and frequency/SNR sorts.
package ft8
