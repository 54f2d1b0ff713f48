package aisearch

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/cache"
)

const (
	// maxHistoryMessages bounds a chat session to its newest turns.
	maxHistoryMessages = 20
	// historyTTL expires idle sessions from the cache.
	historyTTL = 24 * time.Hour

	defaultSessionID = "default"
)

// historyKey scopes a conversation to one textbook. Callers without a
// session id share the "default" session of that textbook.
func historyKey(textbookSlug, sessionID string) string {
	if sessionID == "" {
		sessionID = defaultSessionID
	}
	return "chat:history:" + textbookSlug + "-" + sessionID
}

// AppendHistory records one chat turn in the session's Redis-backed
// history, trimming to the newest maxHistoryMessages entries. History is
// best-effort context, so failures are logged, not returned.
func AppendHistory(textbookSlug, sessionID, role, content string) {
	payload, err := json.Marshal(ChatMessage{Role: role, Content: content})
	if err != nil {
		return
	}
	if err := cache.PushToList(historyKey(textbookSlug, sessionID), string(payload), maxHistoryMessages, historyTTL); err != nil {
		log.Errorf("[AISearch] failed to append chat history for session %s: %v", sessionID, err)
	}
}

// History returns a session's recorded turns, oldest first. An
// unreachable cache yields an empty history.
func History(textbookSlug, sessionID string) []ChatMessage {
	entries, err := cache.GetList(historyKey(textbookSlug, sessionID))
	if err != nil {
		log.Errorf("[AISearch] failed to load chat history for session %s: %v", sessionID, err)
		return nil
	}

	messages := make([]ChatMessage, 0, len(entries))
	for _, entry := range entries {
		var msg ChatMessage
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}
