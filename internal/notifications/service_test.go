package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"vidgen/internal/config"
	"vidgen/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newRecorder(t *testing.T) (*httptest.Server, func() []captured) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []captured
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server, func() []captured {
		mu.Lock()
		defer mu.Unlock()
		return append([]captured(nil), reqs...)
	}
}

func configFor(topic string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	return &cfg
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	svc := notifications.NewService(configFor(""))
	if err := svc.NotifyJobFailed(context.Background(), "Demo 1", "compose", errors.New("boom")); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestEndpoint(t *testing.T) {
	if got := notifications.Endpoint("vidgen-alerts"); got != "https://ntfy.sh/vidgen-alerts" {
		t.Fatalf("unexpected endpoint %q", got)
	}
	if got := notifications.Endpoint("http://ntfy.local/renders"); got != "http://ntfy.local/renders" {
		t.Fatalf("full URL should pass through, got %q", got)
	}
}

func TestNotifyJobCompleted(t *testing.T) {
	server, requests := newRecorder(t)
	svc := notifications.NewService(configFor(server.URL))

	if err := svc.NotifyJobCompleted(context.Background(), "Demo 1", "/renders/Demo/Demo_1.mp4", 95*time.Second); err != nil {
		t.Fatalf("NotifyJobCompleted: %v", err)
	}
	got := requests()
	if len(got) != 1 {
		t.Fatalf("expected one request, got %d", len(got))
	}
	if got[0].title != "vidgen - Render Complete" || got[0].tags != "vidgen,render,completed" {
		t.Fatalf("unexpected headers: %+v", got[0])
	}
	if got[0].body != "✅ Rendered: Demo 1 in 1m35s\nVideo: /renders/Demo/Demo_1.mp4" {
		t.Fatalf("unexpected body %q", got[0].body)
	}
}

func TestNotifyJobFailed(t *testing.T) {
	server, requests := newRecorder(t)
	svc := notifications.NewService(configFor(server.URL))

	if err := svc.NotifyJobFailed(context.Background(), "Demo 1", "narrate", errors.New("no voices match filter")); err != nil {
		t.Fatalf("NotifyJobFailed: %v", err)
	}
	got := requests()
	if len(got) != 1 || got[0].priority != "high" {
		t.Fatalf("unexpected requests: %+v", got)
	}
	if !strings.Contains(got[0].body, "Demo 1 during narrate: no voices match filter") {
		t.Fatalf("unexpected body %q", got[0].body)
	}
}

func TestDisabledEventsAreSkipped(t *testing.T) {
	server, requests := newRecorder(t)
	cfg := configFor(server.URL)
	cfg.Notifications.JobCompleted = false
	cfg.Notifications.JobFailed = false
	svc := notifications.NewService(cfg)

	_ = svc.NotifyJobCompleted(context.Background(), "Demo 1", "", 0)
	_ = svc.NotifyJobFailed(context.Background(), "Demo 1", "compose", nil)
	if got := requests(); len(got) != 0 {
		t.Fatalf("expected no requests, got %+v", got)
	}
	if err := svc.TestNotification(context.Background()); err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if got := requests(); len(got) != 1 || got[0].priority != "low" {
		t.Fatalf("test notification should always send: %+v", got)
	}
}

func TestSendReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	svc := notifications.NewService(configFor(server.URL))
	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
