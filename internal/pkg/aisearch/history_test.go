package aisearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryKey(t *testing.T) {
	tests := []struct {
		name      string
		textbook  string
		sessionID string
		want      string
	}{
		{name: "explicit session", textbook: "blockchain-fundamentals", sessionID: "abc123", want: "chat:history:blockchain-fundamentals-abc123"},
		{name: "empty session falls back to default", textbook: "blockchain-fundamentals", sessionID: "", want: "chat:history:blockchain-fundamentals-default"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, historyKey(tc.textbook, tc.sessionID))
		})
	}
}

func TestHistoryKeyScopesPerTextbook(t *testing.T) {
	// The same session id reused across textbooks must not mix their
	// conversations.
	assert.NotEqual(t,
		historyKey("blockchain-fundamentals", "abc123"),
		historyKey("defi", "abc123"))
}
