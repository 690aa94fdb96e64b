// Package suggest relays message-suggestion requests to an
// OpenAI-compatible chat completions API.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Preeth02/aqi-using-ai/internal/middleware"
)

// Delimiter separates suggested prompts in the relayed response. The
// frontend splits the string on this exact two-character sequence.
const Delimiter = "||"

const suggestionPrompt = "Create a list of three open-ended and engaging questions formatted as a single string. " +
	"Each question should be separated by '||'. These questions are for an anonymous social messaging platform " +
	"and should be suitable for a diverse audience. Avoid personal or sensitive topics. " +
	"Ensure the questions are intriguing, foster curiosity, and contribute to a positive and welcoming " +
	"conversational environment."

// Config holds connection settings for the upstream generator.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Client is a stateless relay to the suggestion generator. No retry, no
// caching; each request is a single upstream round trip.
type Client struct {
	httpClient *http.Client
	cfg        Config
}

// NewClient returns a suggestion relay client.
func NewClient(cfg Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cfg:        cfg,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SuggestMessages requests candidate prompts from the generator and
// returns the raw delimiter-joined string.
func (c *Client) SuggestMessages(ctx context.Context) (string, error) {
	reqBody := map[string]interface{}{
		"model":    c.cfg.Model,
		"messages": []chatMessage{{Role: "user", Content: suggestionPrompt}},
		"stream":   false,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal suggestion request failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("build suggestion request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	middleware.UpstreamLatency.WithLabelValues("suggest").Observe(time.Since(start).Seconds())
	if err != nil {
		middleware.UpstreamErrors.WithLabelValues("suggest").Inc()
		return "", fmt.Errorf("suggestion request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read suggestion response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		middleware.UpstreamErrors.WithLabelValues("suggest").Inc()
		return "", fmt.Errorf("suggestion response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse suggestion json failed: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty suggestion response")
	}
	return parsed.Choices[0].Message.Content, nil
}
