package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spool/internal/config"
	"spool/internal/notifications"
)

func newTestConfig(url string) config.Config {
	cfg := config.Default()
	cfg.Notifications.Enabled = true
	cfg.Notifications.NtfyTopic = url
	cfg.Notifications.RequestTimeout = 5
	cfg.Notifications.Completed = true
	cfg.Notifications.Errors = true
	return cfg
}

func TestNewServiceReturnsNoopWhenDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.Enabled = false
	cfg.Notifications.NtfyTopic = "https://ntfy.example/spool"
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunCompleted(context.Background(), 3, 0, time.Minute); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.Enabled = true
	cfg.Notifications.NtfyTopic = "  "
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyError(context.Background(), errors.New("boom"), "encode"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		publish        func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "batch completed",
			publish: func(svc notifications.Service) error {
				return svc.NotifyRunCompleted(context.Background(), 4, 0, 90*time.Second)
			},
			expectTitle:   "Spool - Batch Complete",
			expectMessage: "✅ Encoded 4 scripts in 1m30s",
			expectTags:    "spool,batch,completed",
		},
		{
			name: "batch completed with failures",
			publish: func(svc notifications.Service) error {
				return svc.NotifyRunCompleted(context.Background(), 2, 1, 3*time.Hour+12*time.Minute)
			},
			expectTitle:    "Spool - Batch Complete (with errors)",
			expectMessage:  "2 succeeded, 1 failed in 3h12m0s",
			expectTags:     "spool,batch,completed",
			expectPriority: "high",
		},
		{
			name: "error",
			publish: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("failed to mux tracks"), "episode01.vpy")
			},
			expectTitle:    "Spool - Error",
			expectMessage:  "❌ Error with episode01.vpy: failed to mux tracks",
			expectTags:     "spool,error,alert",
			expectPriority: "high",
		},
		{
			name: "test notification",
			publish: func(svc notifications.Service) error {
				return svc.TestNotification(context.Background())
			},
			expectTitle:    "Spool - Test",
			expectMessage:  "🧪 Notification system test",
			expectTags:     "spool,test",
			expectPriority: "low",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Errorf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := newTestConfig(server.URL)
			svc := notifications.NewService(&cfg)
			if err := tc.publish(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsClassGates(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := newTestConfig(server.URL)
	cfg.Notifications.Completed = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRunCompleted(context.Background(), 1, 0, time.Second); err != nil {
		t.Fatalf("suppressed completion returned error: %v", err)
	}
	if err := svc.NotifyError(context.Background(), errors.New("boom"), "encode"); err != nil {
		t.Fatalf("suppressed error returned error: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no ntfy requests, got %d", calls)
	}
}

func TestNtfyServiceSurfacesHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic not found", http.StatusNotFound)
	}))
	defer server.Close()

	cfg := newTestConfig(server.URL)
	svc := notifications.NewService(&cfg)
	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "ntfy returned 404") {
		t.Fatalf("unexpected error: %v", err)
	}
}
