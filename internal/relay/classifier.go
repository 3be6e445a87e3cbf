package relay

import (
	"fmt"
	"strings"
)

// KeyPrefix marks a key-exchange payload. Such payloads are opaque to the
// relay and forwarded verbatim.
const KeyPrefix = "[KEY] "

// Classify decides how an inbound payload from username is presented to the
// other peers: key-exchange payloads pass through untouched, everything else
// is labeled with the sender.
func Classify(username, payload string) string {
	if IsKeyExchange(payload) {
		return payload
	}
	return fmt.Sprintf("[Encrypted] %s: %s", username, payload)
}

func IsKeyExchange(payload string) bool {
	return strings.HasPrefix(payload, KeyPrefix)
}

func JoinedMessage(username string) string {
	return username + " joined the chat"
}

func LeftMessage(username string) string {
	return username + " left the chat"
}
