// Package server implements the HTTP and WebSocket surface of the relay.
package server

import (
	"log/slog"

	"github.com/Tyrowin/cipherchat/internal/account"
	"github.com/Tyrowin/cipherchat/internal/config"
	"github.com/gorilla/websocket"
)

// TokenValidator resolves a bearer token to the username it was issued for.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// Server holds the collaborators the HTTP handlers depend on.
type Server struct {
	cfg      config.Config
	hub      *Hub
	accounts *account.Service
	tokens   TokenValidator
	origins  *originPolicy
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func New(cfg config.Config, hub *Hub, accounts *account.Service, tokens TokenValidator, log *slog.Logger) *Server {
	origins := newOriginPolicy(cfg.Origins(), log)
	return &Server{
		cfg:      cfg,
		hub:      hub,
		accounts: accounts,
		tokens:   tokens,
		origins:  origins,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.checkOrigin,
		},
		log: log,
	}
}
