// Package server exposes HTTP handlers: the WebSocket relay endpoint, the
// account endpoints, the health check and the built-in test page.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Tyrowin/cipherchat/internal/auth"
	chaterrors "github.com/Tyrowin/cipherchat/internal/errors"
	"github.com/gorilla/mux"
)

const maxRequestBodySize = 16 * 1024

// WebSocketHandler upgrades /ws/{username} and attaches the connection to the
// hub. When authentication is required, the bearer token must belong to the
// path username.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if username == "" {
		s.writeError(w, fmt.Errorf("%w: missing username", chaterrors.ErrInvalidRequest))
		return
	}

	if s.cfg.RequireAuth {
		if err := s.authorize(r, username); err != nil {
			s.log.Warn("Rejected WebSocket connection", "username", username, "addr", r.RemoteAddr, "error", err)
			s.writeError(w, err)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an HTTP error response.
		s.log.Warn("WebSocket upgrade failed", "addr", r.RemoteAddr, "error", err)
		return
	}

	client := NewClient(conn, s.hub, username, r.RemoteAddr)
	if err := s.hub.Attach(client); err != nil {
		s.log.Warn("Rejected WebSocket connection", "username", username, "error", err)
	}
}

// authorize checks that the request carries a valid token for username.
func (s *Server) authorize(r *http.Request, username string) error {
	token := bearerToken(r)
	if token == "" {
		return chaterrors.ErrInvalidToken
	}
	subject, err := s.tokens.ValidateToken(token)
	if err != nil {
		return err
	}
	if subject != username {
		return chaterrors.ErrForbidden
	}
	return nil
}

// bearerToken reads the Authorization header, falling back to the token
// query parameter since browsers cannot set headers on WebSocket requests.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

// RegisterHandler creates an account.
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		s.writeError(w, err)
		return
	}

	user, err := s.accounts.Register(creds)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, registerResponse{ID: user.ID, Username: user.Username})
}

// LoginHandler exchanges credentials for a bearer token.
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		s.writeError(w, err)
		return
	}

	token, err := s.accounts.Login(creds)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, TokenType: "bearer"})
}

// UploadPublicKeyHandler stores the caller's public key.
func (s *Server) UploadPublicKeyHandler(w http.ResponseWriter, r *http.Request) {
	var update auth.PublicKeyUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		s.writeError(w, err)
		return
	}

	if s.cfg.RequireAuth {
		if err := s.authorize(r, update.Username); err != nil {
			s.writeError(w, err)
			return
		}
	}

	if err := s.accounts.UploadPublicKey(update); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Public key saved"})
}

// PublicKeyHandler returns the public key stored for {username}.
func (s *Server) PublicKeyHandler(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	key, err := s.accounts.PublicKey(username)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, publicKeyResponse{Username: username, PublicKey: key})
}

// HealthHandler provides a simple health check endpoint that returns server status.
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Relay is running! Connected clients: %d", s.hub.ClientCount())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", chaterrors.ErrInvalidRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors to HTTP statuses. Unknown errors are logged
// and reported as a generic 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, detail := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("Request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Detail: detail})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, chaterrors.ErrInvalidRequest):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, chaterrors.ErrUserAlreadyExists):
		return http.StatusBadRequest, "Username already exists"
	case errors.Is(err, chaterrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, chaterrors.ErrInvalidToken):
		return http.StatusUnauthorized, "Invalid or expired token"
	case errors.Is(err, chaterrors.ErrForbidden):
		return http.StatusForbidden, "Token does not match username"
	case errors.Is(err, chaterrors.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, chaterrors.ErrPublicKeyNotFound):
		return http.StatusNotFound, "Public key not found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
