package aisearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/env"
)

const (
	defaultAIAPIBaseURL = "https://api.cloudflare.com/client/v4"
	defaultAIModel      = "@cf/meta/llama-2-7b-chat-int8"
)

// Client calls the Workers AI REST API for chat completions.
type Client struct {
	AccountID string
	APIToken  string
	Model     string

	APIBaseURL string

	HTTPClient *http.Client
}

// ChatMessage is one turn of a model conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type runRequest struct {
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	TopP        float64       `json:"top_p,omitempty"`
	Stream      bool          `json:"stream"`
}

type runResponse struct {
	Result struct {
		Response string `json:"response"`
	} `json:"result"`
	Success bool `json:"success"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// NewClientFromEnv builds a Workers AI client from environment variables.
func NewClientFromEnv() *Client {
	return &Client{
		AccountID:  strings.TrimSpace(env.GetEnv("AI_ACCOUNT_ID", "")),
		APIToken:   strings.TrimSpace(env.GetEnv("AI_SEARCH_API_TOKEN", "")),
		Model:      strings.TrimSpace(env.GetEnv("AI_MODEL", defaultAIModel)),
		APIBaseURL: strings.TrimSpace(env.GetEnv("AI_API_BASE_URL", defaultAIAPIBaseURL)),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsConfigured reports whether the client has credentials to call the API.
func (c *Client) IsConfigured() bool {
	return c.AccountID != "" && c.APIToken != ""
}

// Run sends a chat completion request and returns the model's text
// response.
func (c *Client) Run(ctx context.Context, messages []ChatMessage, maxTokens int, temperature, topP float64) (string, error) {
	if !c.IsConfigured() {
		return "", errors.New("AI_ACCOUNT_ID/AI_SEARCH_API_TOKEN are not configured")
	}
	if len(messages) == 0 {
		return "", errors.New("at least one message is required")
	}

	payload, err := json.Marshal(runRequest{
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode model request: %w", err)
	}

	url := fmt.Sprintf("%s/accounts/%s/ai/run/%s", strings.TrimRight(c.APIBaseURL, "/"), c.AccountID, c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build model request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read model response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model API returned status %d: %s", resp.StatusCode, string(body))
	}

	var out runResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode model response: %w", err)
	}
	if !out.Success {
		if len(out.Errors) > 0 {
			return "", fmt.Errorf("model API error: %s", out.Errors[0].Message)
		}
		return "", errors.New("model API reported failure")
	}

	return out.Result.Response, nil
}
