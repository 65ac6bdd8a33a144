// Package enhance turns raw visit notes into a structured EnhancedNote by
// calling an OpenAI-compatible chat completions endpoint.
package enhance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/suykerbuyk/carenotes/internal/config"
	"github.com/suykerbuyk/carenotes/internal/note"
)

const op = "enhance notes"

// Client sends enhancement requests. It does not retry: a malformed
// generation is surfaced to the caller immediately.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// New builds a Client from configuration and a resolved API key.
func New(cfg config.OpenAIConfig, apiKey string) *Client {
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      apiKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: cfg.Timeout()},
	}
}

// Enhance rewrites raw into a structured report biased by visit.
//
// Failures reaching or reading the endpoint are note.ErrEnhancementRequestFailed;
// output that cannot be turned into an EnhancedNote is
// note.ErrEnhancementParseFailed. Blank input is a validation error and no
// request is made.
func (c *Client) Enhance(ctx context.Context, raw string, visit note.VisitType) (*note.EnhancedNote, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, note.Validation(op, errors.New("raw content is blank"))
	}
	if !visit.Valid() {
		return nil, note.Validation(op, fmt.Errorf("unknown visit type %q", visit))
	}

	content, err := c.complete(ctx, buildMessages(raw, visit))
	if err != nil {
		return nil, note.Classify(note.ErrEnhancementRequestFailed, op, err)
	}

	return Parse(content)
}

// complete performs the HTTP exchange and returns the first choice's text.
func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return parseResponse(respBody)
}

func parseResponse(body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("no content in response")
	}
	return content, nil
}
