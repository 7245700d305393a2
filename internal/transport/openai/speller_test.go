package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	openai "github.com/sashabaranov/go-openai"

	"github.com/openviglet/sitesearch/internal/domain"
	"github.com/openviglet/sitesearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterSearchMetrics()
	os.Exit(m.Run())
}

// chatServer answers every chat completion with reply and records the request.
func chatServer(t *testing.T, reply string, got *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Model:  "test-model",
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
				FinishReason: openai.FinishReasonStop,
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestSpeller(url, model string) *Speller {
	return NewSpeller(&Config{APIKey: "test-key", BaseURL: url, Model: model})
}

func TestSpeller_Correct(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := chatServer(t, "  \"golang tutorial\"\n", &got)

	before := testutil.ToFloat64(metrics.SpellerRequestsTotal.WithLabelValues("test-model", "success"))

	corrected, err := newTestSpeller(srv.URL, "test-model").Correct(context.Background(), "golnag tutorail", "en-US")
	if err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	if corrected != "golang tutorial" {
		t.Errorf("corrected = %q, want %q", corrected, "golang tutorial")
	}

	if got.Model != "test-model" {
		t.Errorf("model = %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if user := got.Messages[1].Content; !strings.Contains(user, "en-US") || !strings.Contains(user, "golnag tutorail") {
		t.Errorf("user prompt = %q", user)
	}

	after := testutil.ToFloat64(metrics.SpellerRequestsTotal.WithLabelValues("test-model", "success"))
	if after-before != 1 {
		t.Errorf("success counter delta = %v, want 1", after-before)
	}
}

func TestSpeller_DefaultModelAndNoLocale(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := chatServer(t, "hello", &got)

	if _, err := newTestSpeller(srv.URL, "").Correct(context.Background(), "helo", ""); err != nil {
		t.Fatalf("Correct failed: %v", err)
	}
	if got.Model != DefaultModel {
		t.Errorf("model = %q, want %q", got.Model, DefaultModel)
	}
	if got.Messages[1].Content != "helo" {
		t.Errorf("user prompt = %q", got.Messages[1].Content)
	}
}

func TestSpeller_DiscardsUnusableReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"empty", "   "},
		{"multi-line", "golang\nI corrected the spelling."},
		{"too long", "golang " + strings.Repeat("x", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, tt.reply, nil)
			corrected, err := newTestSpeller(srv.URL, "test-model").Correct(context.Background(), "golnag", "")
			if err != nil {
				t.Fatalf("Correct failed: %v", err)
			}
			if corrected != "golnag" {
				t.Errorf("corrected = %q, want the query unchanged", corrected)
			}
		})
	}
}

func TestSpeller_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{ID: "chatcmpl-1", Object: "chat.completion"})
	}))
	defer srv.Close()

	_, err := newTestSpeller(srv.URL, "test-model").Correct(context.Background(), "golnag", "")
	if !errors.Is(err, domain.ErrSpellerUnavailable) {
		t.Fatalf("expected ErrSpellerUnavailable, got %v", err)
	}
}

func TestSpeller_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer srv.Close()

	before := testutil.ToFloat64(metrics.SpellerRequestsTotal.WithLabelValues("err-model", "error"))

	_, err := newTestSpeller(srv.URL, "err-model").Correct(context.Background(), "golnag", "")
	if !errors.Is(err, domain.ErrSpellerUnavailable) {
		t.Fatalf("expected ErrSpellerUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry the status code: %v", err)
	}

	after := testutil.ToFloat64(metrics.SpellerRequestsTotal.WithLabelValues("err-model", "error"))
	if after-before != 1 {
		t.Errorf("error counter delta = %v, want 1", after-before)
	}
}

func TestCleanReply(t *testing.T) {
	tests := map[string]string{
		"golang":      "golang",
		"  golang  ":  "golang",
		`"golang"`:    "golang",
		"'go lang'":   "go lang",
		"`golang`":    "golang",
		`"`:           `"`,
		`"unbalanced`: `"unbalanced`,
	}
	for in, want := range tests {
		if got := cleanReply(in); got != want {
			t.Errorf("cleanReply(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail":"model not found"}`)); got != "model not found" {
		t.Errorf("detail = %q", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("detail = %q", got)
	}
}
