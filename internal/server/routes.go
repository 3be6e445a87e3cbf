// Package server wires HTTP handlers into a gorilla/mux router.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes returns the application router: health check, test page, the relay
// endpoint and the account endpoints, all behind the CORS middleware.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.origins.corsMiddleware)

	r.HandleFunc("/", s.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/test", s.TestPageHandler).Methods(http.MethodGet)
	r.HandleFunc("/ws/{username}", s.WebSocketHandler).Methods(http.MethodGet)

	r.HandleFunc("/register", s.RegisterHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/login", s.LoginHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/public_key", s.UploadPublicKeyHandler).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/public_key/{username}", s.PublicKeyHandler).Methods(http.MethodGet, http.MethodOptions)
	return r
}
