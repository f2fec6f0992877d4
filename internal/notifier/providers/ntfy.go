// Package providers contains notification delivery transports.
package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"feedpulse/internal/types"
)

// NtfySender publishes notifications to an ntfy topic.
type NtfySender struct {
	serverURL string
	topic     string
	client    *http.Client
}

// NewNtfySender creates an ntfy sender for the given server and topic.
func NewNtfySender(serverURL, topic string) *NtfySender {
	return &NtfySender{
		serverURL: strings.TrimRight(serverURL, "/"),
		topic:     topic,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// ntfyPriority maps notification priorities to ntfy's 1-5 scale.
func ntfyPriority(p types.Priority) string {
	switch p {
	case types.PriorityUrgent:
		return "5"
	case types.PriorityHigh:
		return "4"
	default:
		return "3"
	}
}

// Send publishes one message to the topic.
func (s *NtfySender) Send(ctx context.Context, title, body string, priority types.Priority, tags []string) error {
	endpoint := s.serverURL + "/" + s.topic

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Title", title)
	req.Header.Set("X-Priority", ntfyPriority(priority))
	if len(tags) > 0 {
		req.Header.Set("X-Tags", strings.Join(tags, ","))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ntfy returned status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
