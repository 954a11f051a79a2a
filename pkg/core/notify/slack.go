// Package notify delivers plain-text status messages to a Slack-style
// incoming webhook. Fire and forget: the pipeline never waits on a
// response body.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"edinet_analyzer/pkg/logger"
)

// Notifier is the send(text) capability the pipeline needs.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

type slackPayload struct {
	Text string `json:"text"`
}

// SlackWebhook posts messages to an incoming-webhook URL.
type SlackWebhook struct {
	url    string
	client *http.Client
}

func NewSlackWebhook(url string) (*SlackWebhook, error) {
	if url == "" {
		return nil, errors.New("slack webhook: empty url")
	}
	return &SlackWebhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Send posts one message. Failures are reported but carry no retry
// obligation for the caller.
func (s *SlackWebhook) Send(ctx context.Context, text string) error {
	body, err := json.Marshal(slackPayload{Text: text})
	if err != nil {
		return fmt.Errorf("slack webhook: encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack webhook: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook: unexpected status %d", resp.StatusCode)
	}
	logger.Log.Debugf("[Notify] sent %d bytes to webhook", len(body))
	return nil
}

// NopNotifier drops every message; used when no webhook is configured.
type NopNotifier struct{}

func (NopNotifier) Send(context.Context, string) error { return nil }
