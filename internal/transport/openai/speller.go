package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/openviglet/sitesearch/internal/domain"
	"github.com/openviglet/sitesearch/internal/metrics"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = openai.GPT4oMini

// maxReplyGrowth bounds how much longer than the query a correction may be.
// Longer replies are chatter, not a corrected query.
const maxReplyGrowth = 32

const systemPrompt = "You fix spelling mistakes in search engine queries. " +
	"Reply with the corrected query only, without quotes or explanation. " +
	"Keep the words that are already correct. If nothing needs fixing, reply with the query unchanged."

// Speller proposes query corrections through an OpenAI-compatible chat API.
type Speller struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Config holds the speller settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewSpeller creates a spell corrector. An empty BaseURL uses the OpenAI API.
func NewSpeller(cfg *Config) *Speller {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Speller{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}
}

// Correct returns the corrected query. The query itself is returned when the
// model proposes nothing usable.
func (s *Speller) Correct(ctx context.Context, query, locale string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(query, locale)},
		},
		MaxTokens: len(query) + maxReplyGrowth,
	}

	start := time.Now()

	resp, err := s.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.SpellerRequestsTotal.WithLabelValues(s.model, "error").Inc()
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.SpellerRequestsTotal.WithLabelValues(s.model, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrSpellerUnavailable)
	}

	metrics.SpellerRequestsTotal.WithLabelValues(s.model, "success").Inc()
	metrics.SpellerRequestDuration.WithLabelValues(s.model).Observe(duration.Seconds())

	corrected := cleanReply(resp.Choices[0].Message.Content)
	if corrected == "" || len(corrected) > len(query)+maxReplyGrowth || strings.Contains(corrected, "\n") {
		s.logger.Debug("discarding speller reply",
			zap.String("query", query),
			zap.String("reply", resp.Choices[0].Message.Content))
		return query, nil
	}
	return corrected, nil
}

func userPrompt(query, locale string) string {
	if locale == "" {
		return query
	}
	return fmt.Sprintf("Language: %s\nQuery: %s", locale, query)
}

// cleanReply strips whitespace and wrapping quotes.
func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range []string{`"`, "'", "`"} {
		if len(s) >= 2 && strings.HasPrefix(s, q) && strings.HasSuffix(s, q) {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// parseAPIError extracts a human-readable error from the API response.
// Every error wraps domain.ErrSpellerUnavailable.
func parseAPIError(err error) error {
	wrap := domain.ErrSpellerUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("speller API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("speller API error %d: %w", reqErr.HTTPStatusCode, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("speller API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("speller request failed: %v: %w", err, wrap)
}

// extractDetail reads the "detail" field some compatible providers use for errors.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		return parsed.Detail
	}
	return ""
}
