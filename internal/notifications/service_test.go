package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"clipfetch/internal/config"
	"clipfetch/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newServer(t *testing.T, status int) (*httptest.Server, func() []captured) {
	t.Helper()
	var mu sync.Mutex
	var got []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = append(got, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte("nope"))
	}))
	t.Cleanup(srv.Close)
	return srv, func() []captured {
		mu.Lock()
		defer mu.Unlock()
		return append([]captured(nil), got...)
	}
}

func configFor(topic string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	return &cfg
}

func TestNoopWhenTopicMissing(t *testing.T) {
	svc := notifications.NewService(configFor(""))
	if err := svc.Publish(context.Background(), notifications.EventDownloadCompleted, nil); err != nil {
		t.Fatalf("expected noop publish to succeed, got %v", err)
	}
	if err := notifications.NewService(nil).Publish(context.Background(), notifications.EventTest, nil); err != nil {
		t.Fatalf("expected nil config to produce a noop service, got %v", err)
	}
}

func TestPublishFormatsEvents(t *testing.T) {
	tests := []struct {
		name         string
		event        notifications.Event
		payload      notifications.Payload
		wantTitle    string
		wantBody     string
		wantTags     string
		wantPriority string
	}{
		{
			name:      "completed",
			event:     notifications.EventDownloadCompleted,
			payload:   notifications.Payload{"kind": "video", "file": "video_x.mp4", "url": "https://example.com/v"},
			wantTitle: "clipfetch - Download Complete",
			wantBody:  "Downloaded video: video_x.mp4\nSource: https://example.com/v",
			wantTags:  "clipfetch,video,completed",
		},
		{
			name:         "failed",
			event:        notifications.EventDownloadFailed,
			payload:      notifications.Payload{"kind": "audio", "url": "https://example.com/a", "error": "exit 1"},
			wantTitle:    "clipfetch - Download Failed",
			wantBody:     "audio failed for https://example.com/a\nexit 1",
			wantTags:     "clipfetch,audio,error",
			wantPriority: "high",
		},
		{
			name:         "test",
			event:        notifications.EventTest,
			wantTitle:    "clipfetch - Test",
			wantBody:     "Notification system test",
			wantTags:     "clipfetch,test",
			wantPriority: "low",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, received := newServer(t, http.StatusOK)
			svc := notifications.NewService(configFor(srv.URL + "/topic"))
			if err := svc.Publish(context.Background(), tt.event, tt.payload); err != nil {
				t.Fatalf("Publish: %v", err)
			}
			got := received()
			if len(got) != 1 {
				t.Fatalf("expected one request, got %d", len(got))
			}
			msg := got[0]
			if msg.title != tt.wantTitle || msg.body != tt.wantBody || msg.tags != tt.wantTags || msg.priority != tt.wantPriority {
				t.Fatalf("unexpected request %+v", msg)
			}
		})
	}
}

func TestPublishSkipsFailuresWhenDisabled(t *testing.T) {
	srv, received := newServer(t, http.StatusOK)
	cfg := configFor(srv.URL)
	cfg.Notifications.NotifyFailures = false
	svc := notifications.NewService(cfg)
	if err := svc.Publish(context.Background(), notifications.EventDownloadFailed, notifications.Payload{"url": "u"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if n := len(received()); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
}

func TestPublishReportsHTTPErrors(t *testing.T) {
	srv, _ := newServer(t, http.StatusForbidden)
	svc := notifications.NewService(configFor(srv.URL))
	err := svc.Publish(context.Background(), notifications.EventTest, nil)
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
	if err := svc.Publish(context.Background(), notifications.Event("bogus"), nil); err == nil {
		t.Fatal("expected error for unknown event")
	}
}
