package relay

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		username string
		payload  string
		expected string
	}{
		{"key payload forwarded verbatim", "alice", "[KEY] abc123", "[KEY] abc123"},
		{"chat text labeled", "alice", "hello", "[Encrypted] alice: hello"},
		{"empty payload labeled", "bob", "", "[Encrypted] bob: "},
		{"prefix without space is chat", "bob", "[KEY]abc", "[Encrypted] bob: [KEY]abc"},
		{"prefix not at start is chat", "bob", "x [KEY] abc", "[Encrypted] bob: x [KEY] abc"},
		{"bare prefix is a key payload", "bob", "[KEY] ", "[KEY] "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, Classify(tt.username, tt.payload))
		})
	}
}

func TestAnnouncements(t *testing.T) {
	require.Equal(t, "bob joined the chat", JoinedMessage("bob"))
	require.Equal(t, "bob left the chat", LeftMessage("bob"))
}
