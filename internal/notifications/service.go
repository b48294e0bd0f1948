package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"clipfetch/internal/config"
)

const userAgent = "clipfetch/0.1"

// Event identifies what happened.
type Event string

const (
	EventDownloadCompleted Event = "download_completed"
	EventDownloadFailed    Event = "download_failed"
	EventTest              Event = "test"
)

// Payload carries event details. Recognised keys: kind, url, file, error.
type Payload map[string]string

// Service publishes events.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds an ntfy-backed service, or a no-op one when the topic is
// blank.
func NewService(cfg *config.Config) Service {
	if cfg == nil || strings.TrimSpace(cfg.Notifications.NtfyTopic) == "" {
		return noopService{}
	}
	return &ntfyService{
		endpoint:       cfg.Notifications.NtfyTopic,
		client:         &http.Client{Timeout: cfg.NotificationTimeout()},
		notifyFailures: cfg.Notifications.NotifyFailures,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint       string
	client         *http.Client
	notifyFailures bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if event == EventDownloadFailed && !n.notifyFailures {
		return nil
	}
	msg, ok := format(event, payload)
	if !ok {
		return fmt.Errorf("notifications: unknown event %q", event)
	}
	return n.send(ctx, msg)
}

func format(event Event, payload Payload) (message, bool) {
	kind := strings.TrimSpace(payload["kind"])
	if kind == "" {
		kind = "download"
	}
	switch event {
	case EventDownloadCompleted:
		body := fmt.Sprintf("Downloaded %s: %s", kind, strings.TrimSpace(payload["file"]))
		if url := strings.TrimSpace(payload["url"]); url != "" {
			body += "\nSource: " + url
		}
		return message{
			title: "clipfetch - Download Complete",
			body:  body,
			tags:  []string{"clipfetch", kind, "completed"},
		}, true
	case EventDownloadFailed:
		reason := strings.TrimSpace(payload["error"])
		if reason == "" {
			reason = "unknown error"
		}
		return message{
			title:    "clipfetch - Download Failed",
			body:     fmt.Sprintf("%s failed for %s\n%s", kind, strings.TrimSpace(payload["url"]), reason),
			tags:     []string{"clipfetch", kind, "error"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "clipfetch - Test",
			body:     "Notification system test",
			tags:     []string{"clipfetch", "test"},
			priority: "low",
		}, true
	}
	return message{}, false
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", msg.title)
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
