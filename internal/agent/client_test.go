// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewClient(server.URL + "/ask").WithHTTPClient(server.Client()), server
}

func TestAsk_SendsThreadAndParsesAnswer(t *testing.T) {
	var got Request
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/ask" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.Write([]byte(`{"status":"success","answer":"  The **All Day Cup** is RM 55.  ","elapsed_time":1.5}`))
	})

	resp, err := client.Ask(context.Background(), "sk-1", []string{"tumbler?", "which one?", "the cheapest"})
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if resp.Answer != "The **All Day Cup** is RM 55." {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if resp.Elapsed() != 1500*time.Millisecond {
		t.Errorf("Elapsed = %v", resp.Elapsed())
	}
	if got.APIKey != "sk-1" {
		t.Errorf("api_key = %q", got.APIKey)
	}
	if strings.Join(got.Messages, "|") != "tumbler?|which one?|the cheapest" {
		t.Errorf("messages = %v", got.Messages)
	}
}

func TestAsk_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"http error with error field", 500, `{"error":"upstream down"}`, "upstream down"},
		{"http error plain body", 502, `bad gateway`, "bad gateway"},
		{"http error empty body", 503, ``, "Service Unavailable"},
		{"status error body", 200, `{"status":"error","answer":"Agent not initialized","elapsed_time":0}`, "Agent not initialized"},
		{"error field on 200", 200, `{"error":"invalid key"}`, "invalid key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := client.Ask(context.Background(), "k", []string{"hi"})
			var agentErr *AgentError
			if !errors.As(err, &agentErr) {
				t.Fatalf("expected *AgentError, got %v", err)
			}
			if agentErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", agentErr.Message, tt.wantMsg)
			}
			if agentErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", agentErr.Status, tt.status)
			}
		})
	}
}

func TestAsk_MalformedJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})
	_, err := client.Ask(context.Background(), "k", []string{"hi"})
	if err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestAsk_CancelledIsErrCancelled(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := client.Ask(ctx, "k", []string{"hi"})
	if !errors.Is(err, ErrCancelled) {
		t.Errorf("expected ErrCancelled, got %v", err)
	}
}

func TestAsk_TimeoutIsErrTimeout(t *testing.T) {
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.Ask(ctx, "k", []string{"hi"})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestAsk_ValidatesInput(t *testing.T) {
	client := NewClient("http://127.0.0.1:1/ask")
	if _, err := client.Ask(context.Background(), " ", []string{"hi"}); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
	if _, err := client.Ask(context.Background(), "k", nil); !errors.Is(err, ErrEmptyThread) {
		t.Errorf("expected ErrEmptyThread, got %v", err)
	}
}

func TestAsk_ResponseSizeLimit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer":"`))
		w.Write([]byte(strings.Repeat("a", MaxResponseSize)))
		w.Write([]byte(`"}`))
	})
	_, err := client.Ask(context.Background(), "k", []string{"hi"})
	if err == nil || !strings.Contains(err.Error(), "maximum size") {
		t.Errorf("expected size error, got %v", err)
	}
}

func TestWithRateLimit_WaitHonoursContext(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","answer":"ok"}`))
	})
	client.WithRateLimit(1)

	if _, err := client.Ask(context.Background(), "k", []string{"one"}); err != nil {
		t.Fatalf("first request: %v", err)
	}

	// The bucket is empty for the next minute.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.Ask(ctx, "k", []string{"two"})
	if !errors.Is(err, ErrTimeout) && !errors.Is(err, ErrCancelled) {
		t.Errorf("expected throttled request to fail on context, got %v", err)
	}
}
