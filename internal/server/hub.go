// Package server coordinates client attachment, pump goroutines and
// connection cleanup for the relay via the Hub type.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Tyrowin/cipherchat/internal/config"
	"github.com/Tyrowin/cipherchat/internal/relay"
)

// Hub owns the connection registry and the broadcast relay, and tracks the
// pump goroutines of every attached client so shutdown can wait for them.
type Hub struct {
	relay *relay.Relay
	cfg   config.Config
	log   *slog.Logger

	mu       sync.Mutex
	shutdown bool
	wg       sync.WaitGroup
}

// NewHub creates a Hub with an empty registry.
func NewHub(cfg config.Config, log *slog.Logger) *Hub {
	return &Hub{
		relay: relay.NewRelay(relay.NewRegistry(), log),
		cfg:   cfg,
		log:   log,
	}
}

// Relay exposes the hub's broadcast relay.
func (h *Hub) Relay() *relay.Relay {
	return h.relay
}

// ClientCount is the number of connections currently eligible for broadcasts.
func (h *Hub) ClientCount() int {
	return h.relay.Registry().Len()
}

// Attach starts the client's pumps and joins it to the chat. The write pump
// starts first so the client receives its own join announcement. The hub
// lock is held until the client is registered, so Shutdown never misses it.
func (h *Hub) Attach(client *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.shutdown {
		client.closeConnection()
		return fmt.Errorf("hub is shutting down")
	}
	h.wg.Add(2)

	go func() {
		defer h.wg.Done()
		client.writePump()
	}()

	h.relay.Join(client)

	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
	return nil
}

// shutdownClients closes every registered connection. Their read pumps then
// observe the closed connection and leave.
func (h *Hub) shutdownClients() int {
	peers := h.relay.Registry().Snapshot()
	for _, p := range peers {
		if client, ok := p.(*Client); ok {
			client.closeConnection()
		}
	}
	return len(peers)
}

// Shutdown refuses new clients, closes every connection and waits for all
// pump goroutines to finish, or returns context.DeadlineExceeded once the
// timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown...")

	h.mu.Lock()
	h.shutdown = true
	h.mu.Unlock()

	closed := h.shutdownClients()
	h.log.Info("Closed client connections", "count", closed)

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
