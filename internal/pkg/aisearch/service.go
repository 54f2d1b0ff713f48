package aisearch

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/adlonymous/cf-ai-sliceread/app/models"
	"github.com/adlonymous/cf-ai-sliceread/app/repository"
)

const (
	// relevanceThreshold filters out sections the query barely touches.
	relevanceThreshold = 0.3
	// maxContextLength bounds the prompt context to stay inside model limits.
	maxContextLength = 3000
	// defaultSearchLimit caps returned search results.
	defaultSearchLimit = 5

	answerFallback = "I apologize, but I encountered an error while processing your question. Please try again."
)

// SearchResult is one relevance-ranked section hit.
type SearchResult struct {
	ResourceID     string  `json:"resource_id"`
	Title          string  `json:"title"`
	SectionNumber  int     `json:"section_number"`
	RelevanceScore float64 `json:"relevance_score"`
	ContentSnippet string  `json:"content_snippet"`
	R2URL          string  `json:"r2_url,omitempty"`
	ExternalKey    string  `json:"external_key,omitempty"`
}

// ReferencedSection points a chat answer back at the sections it was
// grounded on.
type ReferencedSection struct {
	ResourceID    string `json:"resource_id"`
	Title         string `json:"title"`
	SectionNumber int    `json:"section_number"`
	R2URL         string `json:"r2_url,omitempty"`
	ExternalKey   string `json:"external_key,omitempty"`
}

// Service ranks textbook sections against a query and generates
// grounded answers through the external model API.
type Service struct {
	repos  *repository.Repositories
	client *Client
}

// NewService creates an AI search service.
func NewService(db *gorm.DB, client *Client) *Service {
	return &Service{repos: repository.NewRepositories(db), client: client}
}

// SearchContent ranks a textbook's sections against the query using
// title/summary/keywords. Scoring prefers the model when configured and
// falls back to lexical overlap; a failure on one section never aborts
// the search. Returns the top hits and the total hit count.
func (s *Service) SearchContent(ctx context.Context, query, textbookSlug string, limit int) ([]SearchResult, int, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	sections, err := s.repos.Section.ListByTextbookSlug(textbookSlug)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sections for %s: %w", textbookSlug, err)
	}
	if len(sections) == 0 {
		return []SearchResult{}, 0, nil
	}

	var hits []SearchResult
	for _, section := range sections {
		text := searchableText(&section)
		if text == "" {
			continue
		}

		score := s.relevance(ctx, query, text)
		if score <= relevanceThreshold {
			continue
		}

		hit := SearchResult{
			ResourceID:     section.ResourceID,
			Title:          section.Title,
			SectionNumber:  section.SectionNumber,
			RelevanceScore: score,
			ContentSnippet: ExtractSnippet(query, text, 200),
		}
		if section.R2URL != nil {
			hit.R2URL = *section.R2URL
		}
		if section.ExternalKey != nil {
			hit.ExternalKey = *section.ExternalKey
		}
		hits = append(hits, hit)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].RelevanceScore > hits[j].RelevanceScore
	})

	total := len(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	if hits == nil {
		hits = []SearchResult{}
	}
	return hits, total, nil
}

// GenerateAnswer produces a grounded answer for the query from the
// search results, together with the referenced sections. Model failures
// degrade to a static apology rather than an error, matching the chat
// UI contract.
func (s *Service) GenerateAnswer(ctx context.Context, query string, results []SearchResult, textbookTitle string, history []ChatMessage) (string, []ReferencedSection) {
	referenced := make([]ReferencedSection, 0, len(results))
	contextParts := make([]string, 0, len(results))
	for _, r := range results {
		referenced = append(referenced, ReferencedSection{
			ResourceID:    r.ResourceID,
			Title:         r.Title,
			SectionNumber: r.SectionNumber,
			R2URL:         r.R2URL,
			ExternalKey:   r.ExternalKey,
		})
		contextParts = append(contextParts, fmt.Sprintf("Section %d: %s\n%s", r.SectionNumber, r.Title, r.ContentSnippet))
	}

	grounding := strings.Join(contextParts, "\n\n")
	if len(grounding) > maxContextLength {
		grounding = grounding[:maxContextLength] + "..."
	}

	system := fmt.Sprintf(`You are a friendly tutor for the textbook "%s". Answer in a natural, human voice and go straight into the answer. Ground everything in the provided textbook excerpts; never invent chapters or sections. Start with a 2-3 sentence summary, then expand with details from the material, using a bulleted list when you describe multiple cases. When you point the reader at a section, write it as **Section [number]: [title]**. Close with 1-2 follow-up questions the reader could ask next, based only on the material.`, textbookTitle)

	messages := make([]ChatMessage, 0, len(history)+2)
	messages = append(messages, ChatMessage{Role: "system", Content: system})
	messages = append(messages, history...)
	messages = append(messages, ChatMessage{
		Role:    "user",
		Content: fmt.Sprintf("Question: %s\n\nRelevant content from textbook:\n%s", query, grounding),
	})

	answer, err := s.client.Run(ctx, messages, 2000, 0.7, 0.9)
	if err != nil {
		log.Errorf("[AISearch] answer generation failed: %v", err)
		return answerFallback, referenced
	}
	if answer == "" {
		answer = "I apologize, but I couldn't generate a response at this time."
	}
	return answer, referenced
}

// relevance scores query-vs-content between 0 and 1, asking the model
// when credentials are configured and falling back to lexical overlap.
func (s *Service) relevance(ctx context.Context, query, content string) float64 {
	if s.client != nil && s.client.IsConfigured() {
		prompt := fmt.Sprintf("You are a relevance scorer. Given a query and content, return a relevance score between 0 and 1. Return only the number, no explanation.\nQuery: %q\nContent: %q", query, truncate(content, 1000))
		out, err := s.client.Run(ctx, []ChatMessage{{Role: "system", Content: prompt}}, 0, 0, 0)
		if err == nil {
			if score, ok := parseScore(out); ok {
				return score
			}
		} else {
			log.Errorf("[AISearch] relevance call failed, using lexical fallback: %v", err)
		}
	}
	return LexicalRelevance(query, content)
}

// LexicalRelevance is the model-free scoring fallback: the fraction of
// query words that appear in the content.
func LexicalRelevance(query, content string) float64 {
	queryWords := strings.Fields(strings.ToLower(query))
	if len(queryWords) == 0 {
		return 0
	}
	contentWords := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(content)) {
		contentWords[w] = struct{}{}
	}
	matches := 0
	for _, w := range queryWords {
		if _, ok := contentWords[w]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(queryWords))
}

// ExtractSnippet cuts a window of snippetLength characters around the
// first occurrence of the query, or the head of the content when the
// query never literally appears.
func ExtractSnippet(query, content string, snippetLength int) string {
	idx := strings.Index(strings.ToLower(content), strings.ToLower(query))
	if idx == -1 {
		if len(content) <= snippetLength {
			return content
		}
		return content[:snippetLength] + "..."
	}

	start := idx - snippetLength/2
	if start < 0 {
		start = 0
	}
	end := idx + snippetLength/2
	if end > len(content) {
		end = len(content)
	}

	snippet := content[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(content) {
		snippet = snippet + "..."
	}
	return snippet
}

// searchableText builds the text a section is matched against. Sections
// without summary/keywords fall back to a title-plus-note description,
// since PDF bytes themselves are never parsed here.
func searchableText(section *models.Section) string {
	if section.Summary != "" || section.Keywords != "" {
		return fmt.Sprintf("%s\n\n%s\n\nKeywords: %s", section.Title, section.Summary, section.Keywords)
	}
	switch section.StorageMethod() {
	case models.StorageMethodExternal:
		return section.Title + "\n\nThis section contains detailed content. The full content is available externally."
	case models.StorageMethodInline, models.StorageMethodR2:
		return section.Title + "\n\nThis section contains detailed PDF content. The full content is available in the PDF file."
	default:
		return ""
	}
}

func parseScore(out string) (float64, bool) {
	var score float64
	if _, err := fmt.Sscanf(strings.TrimSpace(out), "%f", &score); err != nil {
		return 0, false
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
