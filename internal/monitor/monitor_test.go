package monitor

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/tkerr/ab3gy-wsjtx/internal/config"
	"github.com/tkerr/ab3gy-wsjtx/internal/wsjtx"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.ServerConfig {
	return &config.ServerConfig{
		UDPPort:     0, // pick a free port
		BindAddress: "127.0.0.1",
		BufferSize:  2048,
		ClientID:    "WSJTXMON",
	}
}

// startMonitor starts a monitor on a free loopback port and returns it
// with a client connection already dialed at it.
func startMonitor(t *testing.T) (*Monitor, *net.UDPConn) {
	t.Helper()

	m := New(testConfig(), testLogger(), nil)
	if err := m.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = m.Stop() })

	conn, err := net.DialUDP("udp", nil, m.LocalAddr().(*net.UDPAddr))
	if err != nil {
		t.Fatalf("DialUDP() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return m, conn
}

func waitMessage(t *testing.T, ch <-chan wsjtx.Message) wsjtx.Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("subscription channel closed unexpectedly")
		}
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestMonitorReceivesAndPublishes(t *testing.T) {
	m, conn := startMonitor(t)

	ch, cancel := m.Subscribe()
	defer cancel()

	hb := &wsjtx.Heartbeat{
		Header:    wsjtx.Header{Schema: 2, ID: wsjtx.NewText("WSJT-X")},
		MaxSchema: 3,
		Version:   wsjtx.NewText("2.5.4"),
		Revision:  wsjtx.NewText("abc123"),
	}
	data, err := wsjtx.Encode(hb)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if _, err := conn.Write(data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	msg := waitMessage(t, ch)
	got, ok := msg.(*wsjtx.Heartbeat)
	if !ok {
		t.Fatalf("published message type = %T, want *wsjtx.Heartbeat", msg)
	}
	if got.ID.String != "WSJT-X" || got.Version.String != "2.5.4" {
		t.Errorf("heartbeat = %+v", got)
	}

	stats := m.Statistics()
	if stats.DatagramsReceived != 1 || stats.MessagesDecoded != 1 {
		t.Errorf("stats = %+v, want 1 received / 1 decoded", stats)
	}
	if stats.Schema != 2 {
		t.Errorf("stats.Schema = %d, want 2", stats.Schema)
	}
	if stats.RemoteAddr == "" {
		t.Error("stats.RemoteAddr is empty after a datagram was decoded")
	}
}

func TestMonitorCountsDecodeErrors(t *testing.T) {
	m, conn := startMonitor(t)

	if _, err := conn.Write([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0, 0, 2}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		stats := m.Statistics()
		if stats.DecodeErrors == 1 {
			if stats.MessagesDecoded != 0 {
				t.Errorf("stats.MessagesDecoded = %d, want 0", stats.MessagesDecoded)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("decode error never counted, stats = %+v", stats)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestMonitorSendWithoutPeer(t *testing.T) {
	m := New(testConfig(), testLogger(), nil)
	if err := m.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() { _ = m.Stop() }()

	if err := m.SendHaltTx(false); !errors.Is(err, ErrNoPeer) {
		t.Errorf("SendHaltTx() error = %v, want ErrNoPeer", err)
	}
}

func TestMonitorSendsToLastPeer(t *testing.T) {
	m, conn := startMonitor(t)

	ch, cancel := m.Subscribe()
	defer cancel()

	// The monitor learns the peer address and schema from traffic.
	hb := &wsjtx.Heartbeat{
		Header:    wsjtx.Header{Schema: 3, ID: wsjtx.NewText("WSJT-X")},
		MaxSchema: 3,
	}
	data, err := wsjtx.Encode(hb)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if _, err := conn.Write(data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	waitMessage(t, ch)

	if err := m.SendFreeText("CQ TEST", true); err != nil {
		t.Fatalf("SendFreeText() error = %v", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline() error = %v", err)
	}
	buf := make([]byte, 2048)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	msg, err := wsjtx.DecodeMessage(buf[:n])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	ft, ok := msg.(*wsjtx.FreeText)
	if !ok {
		t.Fatalf("sent message type = %T, want *wsjtx.FreeText", msg)
	}
	if ft.Schema != 3 {
		t.Errorf("sent schema = %d, want 3 (learned from peer)", ft.Schema)
	}
	if ft.ID.String != "WSJTXMON" {
		t.Errorf("sent id = %q, want %q", ft.ID.String, "WSJTXMON")
	}
	if ft.Text.String != "CQ TEST" || !ft.Send {
		t.Errorf("free text = %+v", ft)
	}

	if got := m.Statistics().MessagesSent; got != 1 {
		t.Errorf("stats.MessagesSent = %d, want 1", got)
	}
}

func TestMonitorSendHighlightDefault(t *testing.T) {
	m, conn := startMonitor(t)

	ch, cancel := m.Subscribe()
	defer cancel()

	hb := &wsjtx.Heartbeat{Header: wsjtx.Header{Schema: 2, ID: wsjtx.NewText("WSJT-X")}}
	data, err := wsjtx.Encode(hb)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if _, err := conn.Write(data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	waitMessage(t, ch)

	if err := m.SendHighlightDefault("K1ABC"); err != nil {
		t.Fatalf("SendHighlightDefault() error = %v", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline() error = %v", err)
	}
	buf := make([]byte, 2048)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	msg, err := wsjtx.DecodeMessage(buf[:n])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	hl, ok := msg.(*wsjtx.HighlightCallsign)
	if !ok {
		t.Fatalf("sent message type = %T, want *wsjtx.HighlightCallsign", msg)
	}
	if hl.Callsign.String != "K1ABC" {
		t.Errorf("callsign = %q, want K1ABC", hl.Callsign.String)
	}
	if hl.Background != wsjtx.ColorYellow || hl.Foreground != wsjtx.ColorBlack {
		t.Errorf("colors = %+v / %+v, want yellow on black", hl.Background, hl.Foreground)
	}
}

func TestMonitorSubscribeCancel(t *testing.T) {
	m, _ := startMonitor(t)

	ch, cancel := m.Subscribe()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("channel still open after cancel")
	}

	// Cancelling twice must not panic or double-close.
	cancel()
}

func TestMonitorStopClosesSubscribers(t *testing.T) {
	m := New(testConfig(), testLogger(), nil)
	if err := m.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	ch, _ := m.Subscribe()
	if err := m.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("channel delivered a message after Stop")
		}
	case <-time.After(time.Second):
		t.Error("channel not closed after Stop")
	}
}
