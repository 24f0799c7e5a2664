package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/tkerr/ab3gy-wsjtx/internal/config"
	"github.com/tkerr/ab3gy-wsjtx/internal/metrics"
	"github.com/tkerr/ab3gy-wsjtx/internal/wsjtx"
)

// ErrNoPeer is returned by send operations before any WSJT-X instance
// has been heard from; replies go to the address the application last
// sent from, so there is no destination until then.
var ErrNoPeer = errors.New("no application instance heard from yet")

// subscriber channel depth. Messages to a full subscriber are dropped
// rather than stalling the receive loop.
const subscriberBuffer = 64

// Monitor listens for WSJT-X messages on a UDP port and accepts
// commands to send back. Decode failures are per-datagram: they are
// logged, counted, and the loop keeps receiving.
type Monitor struct {
	conn    *net.UDPConn
	config  *config.ServerConfig
	logger  *slog.Logger
	metrics *metrics.Metrics // optional, nil disables instrumentation

	clientID wsjtx.Text

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Peer and counter state shared with HTTP handlers.
	mu           sync.RWMutex
	remote       *net.UDPAddr
	schema       uint32
	received     uint64
	decoded      uint64
	decodeErrors uint64
	sent         uint64

	subMu sync.Mutex
	subs  map[chan wsjtx.Message]struct{}
}

// Statistics represents monitor counters for the status API.
type Statistics struct {
	DatagramsReceived uint64 `json:"datagrams_received"`
	MessagesDecoded   uint64 `json:"messages_decoded"`
	DecodeErrors      uint64 `json:"decode_errors"`
	MessagesSent      uint64 `json:"messages_sent"`
	RemoteAddr        string `json:"remote_addr,omitempty"`
	Schema            uint32 `json:"schema,omitempty"`
}

// New creates a monitor. Metrics may be nil.
func New(cfg *config.ServerConfig, logger *slog.Logger, m *metrics.Metrics) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Monitor{
		config:   cfg,
		logger:   logger,
		metrics:  m,
		clientID: wsjtx.NewText(cfg.ClientID),
		ctx:      ctx,
		cancel:   cancel,
		subs:     make(map[chan wsjtx.Message]struct{}),
	}
}

// Start binds the UDP port and begins receiving.
func (m *Monitor) Start() error {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", m.config.BindAddress, m.config.UDPPort))
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address: %w", err)
	}

	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on UDP: %w", err)
	}
	m.conn = conn

	if err := m.conn.SetReadBuffer(m.config.BufferSize); err != nil {
		m.logger.Warn("Failed to set UDP read buffer size",
			slog.Int("buffer_size", m.config.BufferSize),
			slog.String("error", err.Error()),
		)
	}

	m.logger.Info("UDP monitor started",
		slog.String("address", m.conn.LocalAddr().String()),
		slog.String("client_id", m.config.ClientID),
	)

	m.wg.Add(1)
	go m.receiveLoop()

	return nil
}

// Stop shuts the monitor down and closes every subscription channel.
func (m *Monitor) Stop() error {
	m.logger.Info("Stopping UDP monitor...")

	m.cancel()

	if m.conn != nil {
		if err := m.conn.Close(); err != nil {
			m.logger.Warn("Error closing UDP connection", slog.String("error", err.Error()))
		}
	}

	m.wg.Wait()

	m.subMu.Lock()
	for ch := range m.subs {
		close(ch)
		delete(m.subs, ch)
	}
	m.subMu.Unlock()

	stats := m.Statistics()
	m.logger.Info("UDP monitor stopped",
		slog.Uint64("datagrams_received", stats.DatagramsReceived),
		slog.Uint64("messages_decoded", stats.MessagesDecoded),
		slog.Uint64("decode_errors", stats.DecodeErrors),
		slog.Uint64("messages_sent", stats.MessagesSent),
	)

	return nil
}

// LocalAddr returns the bound address, or nil before Start.
func (m *Monitor) LocalAddr() net.Addr {
	if m.conn == nil {
		return nil
	}
	return m.conn.LocalAddr()
}

// Subscribe registers a consumer of decoded messages and returns its
// channel along with a cancel function. The channel is closed on
// cancel or monitor shutdown.
func (m *Monitor) Subscribe() (<-chan wsjtx.Message, func()) {
	ch := make(chan wsjtx.Message, subscriberBuffer)

	m.subMu.Lock()
	m.subs[ch] = struct{}{}
	m.subMu.Unlock()

	cancel := func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		if _, ok := m.subs[ch]; ok {
			delete(m.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// receiveLoop is the main datagram receiving loop.
func (m *Monitor) receiveLoop() {
	defer m.wg.Done()

	buffer := make([]byte, m.config.BufferSize)

	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		// Periodic deadline so shutdown is noticed between datagrams.
		if err := m.conn.SetReadDeadline(time.Now().Add(1 * time.Second)); err != nil {
			m.logger.Error("Failed to set read deadline", slog.String("error", err.Error()))
			continue
		}

		n, remoteAddr, err := m.conn.ReadFromUDP(buffer)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			select {
			case <-m.ctx.Done():
				return
			default:
				m.logger.Error("Failed to read UDP datagram", slog.String("error", err.Error()))
				continue
			}
		}

		data := make([]byte, n)
		copy(data, buffer[:n])
		m.handleDatagram(data, remoteAddr)
	}
}

// handleDatagram decodes one datagram and dispatches the message.
func (m *Monitor) handleDatagram(data []byte, remoteAddr *net.UDPAddr) {
	m.mu.Lock()
	m.received++
	m.mu.Unlock()
	if m.metrics != nil {
		m.metrics.RecordDatagramReceived()
	}

	msg, err := wsjtx.DecodeMessage(data)
	if err != nil {
		m.mu.Lock()
		m.decodeErrors++
		m.mu.Unlock()
		if m.metrics != nil {
			m.metrics.RecordDecodeError(decodeErrorReason(err))
		}
		m.logger.Warn("Failed to decode datagram",
			slog.String("remote_addr", remoteAddr.String()),
			slog.Int("size", len(data)),
			slog.String("error", err.Error()),
		)
		return
	}

	// Remember where the application talks from; commands go back
	// there, carrying the schema it negotiated.
	m.mu.Lock()
	m.decoded++
	m.remote = remoteAddr
	m.schema = msg.Head().Schema
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RecordMessageDecoded(msg.Type().String())
	}
	m.logMessage(msg, remoteAddr)
	m.publish(msg)
}

// publish fans a message out to subscribers without blocking the
// receive loop; slow consumers lose messages.
func (m *Monitor) publish(msg wsjtx.Message) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for ch := range m.subs {
		select {
		case ch <- msg:
		default:
			if m.metrics != nil {
				m.metrics.RecordFeedDropped()
			}
		}
	}
}

// logMessage emits one structured log line per decoded message, with
// the fields an operator actually watches.
func (m *Monitor) logMessage(msg wsjtx.Message, remoteAddr *net.UDPAddr) {
	switch v := msg.(type) {
	case *wsjtx.Heartbeat:
		m.logger.Debug("Heartbeat",
			slog.String("id", v.ID.String),
			slog.String("version", v.Version.String),
			slog.Uint64("max_schema", uint64(v.MaxSchema)),
		)
	case *wsjtx.Decode:
		m.logger.Info("Decode",
			slog.String("id", v.ID.String),
			slog.Int("snr", int(v.SNR)),
			slog.Uint64("df", uint64(v.DeltaFrequency)),
			slog.String("message", v.Message.String),
		)
	case *wsjtx.Status:
		m.logger.Debug("Status",
			slog.String("id", v.ID.String),
			slog.Uint64("dial_frequency", v.DialFrequency),
			slog.String("mode", v.Mode.String),
			slog.Bool("transmitting", v.Transmitting),
		)
	case *wsjtx.QSOLogged:
		m.logger.Info("QSO logged",
			slog.String("dx_call", v.DXCall.String),
			slog.String("mode", v.Mode.String),
			slog.Uint64("dial_frequency", v.DialFrequency),
		)
	case *wsjtx.Close:
		m.logger.Info("Application closed", slog.String("id", v.ID.String))
	default:
		m.logger.Debug("Message received",
			slog.String("type", msg.Type().String()),
			slog.String("remote_addr", remoteAddr.String()),
		)
	}
}

// Send encodes a command and sends it to the last-heard application
// instance.
func (m *Monitor) Send(msg wsjtx.Message) error {
	m.mu.RLock()
	remote := m.remote
	m.mu.RUnlock()
	if remote == nil {
		return ErrNoPeer
	}

	data, err := wsjtx.Encode(msg)
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Type(), err)
	}

	if _, err := m.conn.WriteToUDP(data, remote); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type(), err)
	}

	m.mu.Lock()
	m.sent++
	m.mu.Unlock()
	if m.metrics != nil {
		m.metrics.RecordMessageSent(msg.Type().String())
	}
	m.logger.Debug("Message sent",
		slog.String("type", msg.Type().String()),
		slog.String("remote_addr", remote.String()),
		slog.Int("size", len(data)),
	)
	return nil
}

// SendReply asks the application to reply to a decode.
func (m *Monitor) SendReply(d *wsjtx.Decode) error {
	return m.Send(wsjtx.NewReplyTo(d, m.clientID))
}

// SendHighlight colors a callsign in the band activity window. Pass
// invalid colors to clear the highlight.
func (m *Monitor) SendHighlight(callsign string, background, foreground wsjtx.Color, lastOnly bool) error {
	return m.Send(&wsjtx.HighlightCallsign{
		Header:        m.header(),
		Callsign:      wsjtx.NewText(callsign),
		Background:    background,
		Foreground:    foreground,
		HighlightLast: lastOnly,
	})
}

// SendHighlightDefault highlights a callsign black-on-yellow, the
// conventional band-activity highlight colors.
func (m *Monitor) SendHighlightDefault(callsign string) error {
	return m.SendHighlight(callsign, wsjtx.ColorYellow, wsjtx.ColorBlack, false)
}

// ClearHighlight removes any highlight from a callsign.
func (m *Monitor) ClearHighlight(callsign string) error {
	return m.SendHighlight(callsign, wsjtx.ColorInvalid, wsjtx.ColorInvalid, false)
}

// SendHaltTx stops the application transmitting.
func (m *Monitor) SendHaltTx(autoTXOnly bool) error {
	return m.Send(&wsjtx.HaltTx{Header: m.header(), AutoTXOnly: autoTXOnly})
}

// SendFreeText sets the free-text message, optionally transmitting it.
func (m *Monitor) SendFreeText(text string, send bool) error {
	return m.Send(&wsjtx.FreeText{Header: m.header(), Text: wsjtx.NewText(text), Send: send})
}

// SendClear clears the given decode window.
func (m *Monitor) SendClear(window uint8) error {
	return m.Send(&wsjtx.Clear{Header: m.header(), Window: window})
}

// header builds the common header for outgoing commands using the
// schema last seen from the application.
func (m *Monitor) header() wsjtx.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return wsjtx.Header{Schema: m.schema, ID: m.clientID}
}

// Statistics returns current monitor counters.
func (m *Monitor) Statistics() Statistics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Statistics{
		DatagramsReceived: m.received,
		MessagesDecoded:   m.decoded,
		DecodeErrors:      m.decodeErrors,
		MessagesSent:      m.sent,
		Schema:            m.schema,
	}
	if m.remote != nil {
		stats.RemoteAddr = m.remote.String()
	}
	return stats
}

// decodeErrorReason maps a decode failure onto a metric label.
func decodeErrorReason(err error) string {
	switch {
	case errors.Is(err, wsjtx.ErrInvalidMagic):
		return "invalid_magic"
	case errors.Is(err, wsjtx.ErrUnsupportedSchema):
		return "unsupported_schema"
	case errors.Is(err, wsjtx.ErrUnknownMessageType):
		return "unknown_type"
	case errors.Is(err, wsjtx.ErrMalformedText):
		return "malformed_text"
	case errors.Is(err, wsjtx.ErrTruncatedFrame):
		return "truncated"
	default:
		return "other"
	}
}
