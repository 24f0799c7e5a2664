package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tkerr/ab3gy-wsjtx/internal/config"
	"github.com/tkerr/ab3gy-wsjtx/internal/monitor"
	"github.com/tkerr/ab3gy-wsjtx/internal/wsjtx"
)

func testSetup(t *testing.T) (*httptest.Server, *monitor.Monitor) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Server: config.ServerConfig{
			UDPPort:     0,
			BindAddress: "127.0.0.1",
			BufferSize:  2048,
			ClientID:    "WSJTXMON",
		},
		HTTP:    config.HTTPConfig{Port: 8080, Address: "127.0.0.1", Enabled: true},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
	}

	mon := monitor.New(&cfg.Server, logger, nil)
	h := NewHTTPServer(cfg.HTTP, logger, cfg, mon, nil)

	ts := httptest.NewServer(h.server.Handler)
	t.Cleanup(ts.Close)

	return ts, mon
}

func getJSON(t *testing.T, url string) map[string]interface{} {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s error = %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d, want 200", url, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := testSetup(t)

	body := getJSON(t, ts.URL+"/health")
	if body["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", body["status"])
	}
	if _, ok := body["components"]; !ok {
		t.Error("health response missing components")
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts, _ := testSetup(t)

	body := getJSON(t, ts.URL+"/stats")
	udp, ok := body["udp"].(map[string]interface{})
	if !ok {
		t.Fatalf("stats response missing udp section: %v", body)
	}
	if udp["datagrams_received"] != float64(0) {
		t.Errorf("datagrams_received = %v, want 0", udp["datagrams_received"])
	}
}

func TestConfigEndpointSanitized(t *testing.T) {
	ts, _ := testSetup(t)

	body := getJSON(t, ts.URL+"/config")
	server, ok := body["server"].(map[string]interface{})
	if !ok {
		t.Fatalf("config response missing server section: %v", body)
	}
	if server["client_id"] != "WSJTXMON" {
		t.Errorf("client_id = %v, want WSJTXMON", server["client_id"])
	}
}

func TestRootEndpoint(t *testing.T) {
	ts, _ := testSetup(t)

	body := getJSON(t, ts.URL+"/")
	if _, ok := body["endpoints"]; !ok {
		t.Error("root response missing endpoint documentation")
	}

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", resp.StatusCode)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := testSetup(t)

	resp, err := http.Post(ts.URL+"/health", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /health status = %d, want 405", resp.StatusCode)
	}
}

func TestFeedStreamsDecodedMessages(t *testing.T) {
	ts, mon := testSetup(t)

	if err := mon.Start(); err != nil {
		t.Fatalf("monitor Start() error = %v", err)
	}
	t.Cleanup(func() { _ = mon.Stop() })

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/feed"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// Feed the monitor a datagram and expect it on the socket.
	hb := &wsjtx.Heartbeat{
		Header:    wsjtx.Header{Schema: 2, ID: wsjtx.NewText("WSJT-X")},
		MaxSchema: 3,
		Version:   wsjtx.NewText("2.5.4"),
	}
	data, err := wsjtx.Encode(hb)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	client, err := net.DialUDP("udp", nil, mon.LocalAddr().(*net.UDPAddr))
	if err != nil {
		t.Fatalf("DialUDP() error = %v", err)
	}
	defer client.Close()
	if _, err := client.Write(data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var envelope struct {
		Type    string          `json:"type"`
		Message json.RawMessage `json:"message"`
	}
	if err := conn.ReadJSON(&envelope); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if envelope.Type != "Heartbeat" {
		t.Errorf("envelope type = %q, want Heartbeat", envelope.Type)
	}

	var got wsjtx.Heartbeat
	if err := json.Unmarshal(envelope.Message, &got); err != nil {
		t.Fatalf("unmarshal heartbeat: %v", err)
	}
	if got.ID.String != "WSJT-X" || got.Version.String != "2.5.4" {
		t.Errorf("heartbeat = %+v", got)
	}
}
