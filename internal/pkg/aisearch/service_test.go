package aisearch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adlonymous/cf-ai-sliceread/app/models"
)

func TestLexicalRelevance(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		content string
		want    float64
	}{
		{name: "all words match", query: "consensus algorithms", content: "Chapter on consensus algorithms in distributed systems", want: 1},
		{name: "half the words match", query: "consensus proofs", content: "Chapter on consensus algorithms", want: 0.5},
		{name: "no words match", query: "quantum cryptography", content: "Chapter on consensus algorithms", want: 0},
		{name: "case insensitive", query: "CONSENSUS", content: "chapter on consensus", want: 1},
		{name: "empty query", query: "", content: "anything", want: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, LexicalRelevance(tc.query, tc.content), 0.001)
		})
	}
}

func TestExtractSnippet(t *testing.T) {
	content := strings.Repeat("a", 300) + " consensus " + strings.Repeat("b", 300)

	t.Run("window around the match", func(t *testing.T) {
		snippet := ExtractSnippet("consensus", content, 100)
		assert.Contains(t, snippet, "consensus")
		assert.True(t, strings.HasPrefix(snippet, "..."))
		assert.True(t, strings.HasSuffix(snippet, "..."))
		assert.LessOrEqual(t, len(snippet), 110)
	})

	t.Run("head of content when query is absent", func(t *testing.T) {
		snippet := ExtractSnippet("missing", content, 100)
		assert.Equal(t, content[:100]+"...", snippet)
	})

	t.Run("short content returned whole", func(t *testing.T) {
		assert.Equal(t, "short text", ExtractSnippet("missing", "short text", 100))
	})

	t.Run("match at the very start", func(t *testing.T) {
		snippet := ExtractSnippet("consensus", "consensus is the core topic of this chapter and much more follows here after the introduction section ends", 40)
		assert.False(t, strings.HasPrefix(snippet, "..."))
		assert.Contains(t, snippet, "consensus")
	})
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{name: "plain number", input: "0.85", want: 0.85, wantOK: true},
		{name: "whitespace", input: "  0.3\n", want: 0.3, wantOK: true},
		{name: "clamped above one", input: "7", want: 1, wantOK: true},
		{name: "clamped below zero", input: "-0.5", want: 0, wantOK: true},
		{name: "not a number", input: "very relevant", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseScore(tc.input)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.InDelta(t, tc.want, got, 0.001)
			}
		})
	}
}

func TestSearchableText(t *testing.T) {
	t.Run("summary and keywords are used", func(t *testing.T) {
		section := &models.Section{
			Title:    "Consensus",
			Summary:  "How nodes agree",
			Keywords: "consensus, raft",
		}
		text := searchableText(section)
		assert.Contains(t, text, "Consensus")
		assert.Contains(t, text, "How nodes agree")
		assert.Contains(t, text, "raft")
	})

	t.Run("inline section falls back to title", func(t *testing.T) {
		blob := "ZGF0YQ=="
		section := &models.Section{Title: "Consensus", PdfBlob: &blob}
		text := searchableText(section)
		assert.Contains(t, text, "Consensus")
		assert.Contains(t, text, "PDF")
	})

	t.Run("section without content yields nothing", func(t *testing.T) {
		assert.Empty(t, searchableText(&models.Section{Title: "Empty"}))
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "abcde...", truncate("abcdefgh", 5))
}
