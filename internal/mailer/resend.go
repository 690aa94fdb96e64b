// Package mailer delivers verification emails through the Resend HTTP API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Preeth02/aqi-using-ai/internal/middleware"
)

// Sender dispatches a verification email containing the given code.
// Failure to send is surfaced to the caller as an error; the caller decides
// whether the failure is fatal.
type Sender interface {
	SendVerificationEmail(ctx context.Context, to, username, code string) error
}

// Client sends transactional email via the Resend REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	from       string
}

// NewClient returns a mailer Client for the given API base URL and key.
func NewClient(baseURL, apiKey, from string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		from:       from,
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendVerificationEmail posts a verification email for the given user.
func (c *Client) SendVerificationEmail(ctx context.Context, to, username, code string) error {
	body := sendRequest{
		From:    c.from,
		To:      []string{to},
		Subject: "Anonymous Message | Verification Code",
		HTML:    verificationEmailHTML(username, code),
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal email request failed: %w", err)
	}

	url := c.baseURL + "/emails"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("build email request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	middleware.UpstreamLatency.WithLabelValues("resend").Observe(time.Since(start).Seconds())
	if err != nil {
		middleware.UpstreamErrors.WithLabelValues("resend").Inc()
		middleware.VerificationEmails.WithLabelValues("error").Inc()
		return fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		middleware.UpstreamErrors.WithLabelValues("resend").Inc()
		middleware.VerificationEmails.WithLabelValues("rejected").Inc()
		return fmt.Errorf("email response status %d: %s", resp.StatusCode, string(raw))
	}

	middleware.VerificationEmails.WithLabelValues("sent").Inc()
	middleware.Logger.InfoContext(ctx, "verification email dispatched",
		slog.String("to", to),
		slog.String("username", username),
	)
	return nil
}

func verificationEmailHTML(username, code string) string {
	return fmt.Sprintf(
		`<div><h2>Hello %s,</h2><p>Thank you for registering. Use the following code to verify your account:</p><h1>%s</h1><p>This code expires in one hour.</p></div>`,
		username, code,
	)
}
