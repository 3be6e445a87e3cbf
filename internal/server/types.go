// Package server defines the JSON payloads of the account endpoints and
// utility helpers shared by client and handler logic.
package server

import "strings"

type registerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type publicKeyResponse struct {
	Username  string `json:"username"`
	PublicKey string `json:"public_key"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}
