// Package monitor owns the UDP socket side of the wsjtx codec: it
// binds the reporting port, decodes each received datagram, fans the
// messages out to subscribers, and sends command messages back to the
// WSJT-X instance it last heard from.
package monitor
