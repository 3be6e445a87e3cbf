// Package errors holds the sentinel errors shared by the relay, the account
// layer and the HTTP handlers.
package errors

import "fmt"

var (
	// ErrPeerUnreachable is returned by a peer whose outbound channel can no
	// longer accept messages. It is the only send failure that evicts a peer.
	ErrPeerUnreachable = fmt.Errorf("peer unreachable")

	ErrUserAlreadyExists  = fmt.Errorf("username already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrPublicKeyNotFound  = fmt.Errorf("public key not found")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidRequest     = fmt.Errorf("invalid request")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrInvalidToken       = fmt.Errorf("invalid or expired token")
	ErrForbidden          = fmt.Errorf("token does not match username")
)
