package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Tyrowin/cipherchat/internal/config"
	chaterrors "github.com/Tyrowin/cipherchat/internal/errors"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T, bufferSize int) *Hub {
	t.Helper()
	cfg := config.Default()
	cfg.SendBufferSize = bufferSize
	cfg.JWTSecret = "test-secret"
	return NewHub(config.Sanitize(cfg), logs.GetLoggerFromString("ERROR"))
}

func TestClientSendQueuesUntilFull(t *testing.T) {
	client := NewClient(nil, newTestHub(t, 2), "alice", "127.0.0.1")

	require.NoError(t, client.Send("one"))
	require.NoError(t, client.Send("two"))
	require.ErrorIs(t, client.Send("three"), chaterrors.ErrPeerUnreachable)

	queue := client.GetSendChan()
	require.Equal(t, "one", <-queue)
	require.Equal(t, "two", <-queue)
}

func TestClientCloseIsIdempotent(t *testing.T) {
	client := NewClient(nil, newTestHub(t, 4), "alice", "127.0.0.1")
	require.NoError(t, client.Send("queued"))

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
	require.ErrorIs(t, client.Send("late"), chaterrors.ErrPeerUnreachable)

	queue := client.GetSendChan()
	require.Equal(t, "queued", <-queue)
	_, open := <-queue
	require.False(t, open)
}

func TestClientIdentity(t *testing.T) {
	hub := newTestHub(t, 4)
	first := NewClient(nil, hub, "alice", "127.0.0.1")
	second := NewClient(nil, hub, "alice", "127.0.0.1")

	require.Equal(t, "alice", first.Username())
	require.NotEmpty(t, first.ID())
	require.NotEqual(t, first.ID(), second.ID())
}

func TestRelayEvictsClientWithFullQueue(t *testing.T) {
	hub := newTestHub(t, 1)
	slow := NewClient(nil, hub, "slow", "127.0.0.1")
	fast := NewClient(nil, hub, "fast", "127.0.0.1")
	hub.Relay().Registry().Admit(slow)
	hub.Relay().Registry().Admit(fast)

	require.NoError(t, slow.Send("backlog"))

	delivered := hub.Relay().Broadcast("hello")

	require.Equal(t, 1, delivered)
	require.Equal(t, 1, hub.ClientCount())
	require.False(t, hub.Relay().Registry().Contains(slow))
	require.ErrorIs(t, slow.Send("after eviction"), chaterrors.ErrPeerUnreachable)
	require.Equal(t, "hello", <-fast.GetSendChan())
}

func TestRateLimiterRefills(t *testing.T) {
	current := time.Unix(0, 0)
	rl := newRateLimiter(2, time.Second)
	rl.now = func() time.Time { return current }
	rl.lastCheck = current

	require.True(t, rl.allow())
	require.True(t, rl.allow())
	require.False(t, rl.allow())

	current = current.Add(500 * time.Millisecond)
	require.True(t, rl.allow())
	require.False(t, rl.allow())

	current = current.Add(10 * time.Second)
	require.True(t, rl.allow())
	require.True(t, rl.allow())
	require.False(t, rl.allow())
}

func TestRateLimiterDefaults(t *testing.T) {
	rl := newRateLimiter(0, 0)
	require.Equal(t, float64(1), rl.capacity)
	require.Equal(t, float64(1), rl.rate)
}

func TestOriginPolicy(t *testing.T) {
	log := logs.GetLoggerFromString("ERROR")

	tests := []struct {
		name    string
		config  []string
		origin  string
		allowed bool
	}{
		{"exact match", []string{"http://localhost:5173"}, "http://localhost:5173", true},
		{"case insensitive", []string{"http://LOCALHOST:5173"}, "HTTP://localhost:5173", true},
		{"port must match", []string{"http://localhost:5173"}, "http://localhost:5174", false},
		{"scheme must match", []string{"http://localhost:5173"}, "https://localhost:5173", false},
		{"empty origin", []string{"http://localhost:5173"}, "", false},
		{"wildcard", []string{"*"}, "https://anywhere.example", true},
		{"wildcard still needs a valid origin", []string{"*"}, "null", false},
		{"invalid entries ignored", []string{"not-an-origin", " "}, "not-an-origin", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := newOriginPolicy(tt.config, log)
			require.Equal(t, tt.allowed, policy.allows(tt.origin))
		})
	}
}

func TestCheckOriginReadsHeader(t *testing.T) {
	policy := newOriginPolicy([]string{"http://localhost:5173"}, logs.GetLoggerFromString("ERROR"))

	req := httptest.NewRequest("GET", "/ws/alice", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	require.True(t, policy.checkOrigin(req))

	req.Header.Set("Origin", "http://evil.example")
	require.False(t, policy.checkOrigin(req))
}
