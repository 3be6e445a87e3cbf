// Package testhelpers provides common utilities for testing the relay server.
//
// It builds a fully wired test server (in-memory store, token issuer, hub and
// router) and offers WebSocket and HTTP helpers shared by the server tests.
package testhelpers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Tyrowin/cipherchat/internal/account"
	"github.com/Tyrowin/cipherchat/internal/auth"
	"github.com/Tyrowin/cipherchat/internal/config"
	"github.com/Tyrowin/cipherchat/internal/server"
	"github.com/Tyrowin/cipherchat/internal/store"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// TestOrigin is the only origin the test server allows.
const TestOrigin = "http://localhost:8080"

// Env is a running test server and the collaborators behind it.
type Env struct {
	Server *httptest.Server
	Hub    *server.Hub
	Issuer *auth.Issuer
	Config config.Config
}

// NewEnv starts a test server. customize may adjust the configuration before
// anything is built. Everything is torn down when the test ends.
func NewEnv(t *testing.T, customize func(cfg *config.Config)) *Env {
	t.Helper()

	cfg := config.Default()
	cfg.AllowedOrigins = TestOrigin
	cfg.JWTSecret = "test-secret"
	cfg.BadgerInMemory = true
	if customize != nil {
		customize(&cfg)
	}
	cfg = config.Sanitize(cfg)

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := store.Open("", true, log)
	require.NoError(t, err)

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.AuthTokenDuration)
	accounts := account.NewService(store.NewUserRepository(db), issuer, log)
	hub := server.NewHub(cfg, log)
	testServer := httptest.NewServer(server.New(cfg, hub, accounts, issuer, log).Routes())

	t.Cleanup(func() {
		_ = hub.Shutdown(2 * time.Second)
		testServer.Close()
		_ = db.Close()
	})

	return &Env{Server: testServer, Hub: hub, Issuer: issuer, Config: cfg}
}

// WebSocketURL builds the relay URL for username on the test server.
func (e *Env) WebSocketURL(username string) string {
	return "ws" + strings.TrimPrefix(e.Server.URL, "http") + "/ws/" + url.PathEscape(username)
}

// Dial opens a WebSocket with the given origin and returns the handshake
// response so callers can inspect rejections.
func Dial(wsURL, origin string, header http.Header) (*websocket.Conn, *http.Response, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}

	headers := http.Header{}
	for k, v := range header {
		headers[k] = v
	}
	if origin != "" {
		headers.Set("Origin", origin)
	}

	conn, resp, err := dialer.Dial(wsURL, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, resp, err
}

// Connect opens a relay connection as username and consumes the client's own
// join announcement, so the hub has admitted it before Connect returns.
func (e *Env) Connect(t *testing.T, username string) *websocket.Conn {
	t.Helper()
	conn, _, err := Dial(e.WebSocketURL(username), TestOrigin, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ExpectMessage(t, conn, username+" joined the chat")
	return conn
}

// SendText writes a plain text frame.
func SendText(t *testing.T, conn *websocket.Conn, text string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(text)))
}

// ReceiveText reads the next text frame within timeout.
func ReceiveText(conn *websocket.Conn, timeout time.Duration) (string, error) {
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", err
	}
	_, data, err := conn.ReadMessage()
	return string(data), err
}

// ExpectMessage fails the test unless the next frame equals expected.
func ExpectMessage(t *testing.T, conn *websocket.Conn, expected string) {
	t.Helper()
	got, err := ReceiveText(conn, 2*time.Second)
	require.NoError(t, err, "waiting for %q", expected)
	require.Equal(t, expected, got)
}

// ExpectNoMessage fails the test if a frame arrives within timeout. A read
// timeout leaves the connection unusable, so this must be the last read.
func ExpectNoMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()
	got, err := ReceiveText(conn, timeout)
	require.Error(t, err, "unexpected message %q", got)
}

// CloseWebSocket sends a normal close frame and closes the connection.
func CloseWebSocket(conn *websocket.Conn) error {
	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if err != nil {
		return err
	}
	return conn.Close()
}

// DoJSON sends body as JSON and decodes the JSON response into out when out
// is not nil. It returns the response with its body already closed.
func DoJSON(t *testing.T, method, url string, body any, header http.Header, out any) *http.Response {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, url, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// BearerHeader builds an Authorization header for token.
func BearerHeader(token string) http.Header {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	return header
}
