package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/lclrke/dawa-dashboard/internal/platform/logger"
)

func newTestClient(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	c, err := NewClient(log, Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestGenerateTextSendsChatCompletion(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path: got=%s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("auth header: got=%q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Warm lo-fi groove. BPM: 120\n"}}],"usage":{"prompt_tokens":10,"completion_tokens":5}}`))
	})

	temp := 0.7
	text, err := c.GenerateText(context.Background(), TextRequest{System: "sys", User: "usr", Temperature: &temp, MaxTokens: 300})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "Warm lo-fi groove. BPM: 120" {
		t.Fatalf("text: got=%q", text)
	}
	if got.Model != "gpt-4o-mini" || got.MaxTokens != 300 || got.Temperature == nil || *got.Temperature != 0.7 {
		t.Fatalf("request fields: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "usr" {
		t.Fatalf("messages: %+v", got.Messages)
	}
}

func TestGenerateTextSingleAttemptOnError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	})

	_, err := c.GenerateText(context.Background(), TextRequest{User: "x"})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.HTTPStatusCode() != http.StatusTooManyRequests {
		t.Fatalf("expected 429 HTTPError, got=%v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected exactly one attempt, got=%d", n)
	}
}

func TestGenerateTextEmptyContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	})
	if _, err := c.GenerateText(context.Background(), TextRequest{User: "x"}); !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got=%v", err)
	}

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})
	if _, err := c.GenerateText(context.Background(), TextRequest{User: "x"}); !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent for no choices, got=%v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	log, _ := logger.New("test")
	if _, err := NewClient(log, Config{}); err == nil {
		t.Fatalf("expected missing key error")
	}
}
