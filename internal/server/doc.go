// Package server implements the HTTP and WebSocket surface of the relay.
//
// Each WebSocket connection becomes a Client with its own read and write
// pumps. The Hub joins clients to the broadcast relay and waits for their
// goroutines on shutdown. The account endpoints delegate to the account
// service. Configuration, origin checks, rate limiting, routing and handlers
// live in their own files.
package server
