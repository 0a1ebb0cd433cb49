package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"pricepredictor/internal/config"
	"pricepredictor/internal/utils"
)

// ContentExtractor is the interface for provider-specific answer extraction
type ContentExtractor interface {
	Content(resp *ChatCompletionResponse) (string, error)
}

// OpenAIClient handles OpenAI-compatible chat-completions APIs
type OpenAIClient struct {
	config     *config.PredictorConfig
	httpClient *http.Client
	extractor  ContentExtractor // Provider-specific content extraction
	retry      utils.Retry
}

// NewOpenAIClient creates a new OpenAI-compatible client with auto-detection of provider
func NewOpenAIClient(cfg *config.PredictorConfig) *OpenAIClient {
	var extractor ContentExtractor
	if IsReasoningProvider(cfg.APIURL, cfg.Model) {
		extractor = &ReasoningContentExtractor{}
		log.Printf("🔧 Detected reasoning model (%s), stripping thinking blocks", cfg.Model)
	} else if IsOpenAIProvider(cfg.APIURL) {
		extractor = &OpenAIContentExtractor{}
		log.Printf("🔧 Detected OpenAI API provider")
	} else {
		// Default to OpenAI format for unknown providers
		extractor = &OpenAIContentExtractor{}
		log.Printf("🔧 Using standard OpenAI format for: %s", cfg.APIURL)
	}

	return &OpenAIClient{
		config:    cfg,
		extractor: extractor,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		retry: utils.Retry{
			MaxAttempts: cfg.MaxAttempts,
			BaseDelay:   time.Duration(cfg.RetryDelayMs) * time.Millisecond,
			Retryable:   IsTransportError,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c.config.Enabled && c.config.APIKey != ""
}

// ChatCompletionRequest is the fixed request body of the prediction call
type ChatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role             string `json:"role"`
	Content          string `json:"content"`
	ReasoningContent string `json:"reasoning_content,omitempty"` // DeepSeek-style thinking
}

// ChatChoice is one completion of a response
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatCompletionResponse represents the API response
type ChatCompletionResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// ChatCompletion performs a single chat completion request. Failures to get
// a 2xx answer are *TransportError, an undecodable body is *FormatError.
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if !c.IsEnabled() {
		return nil, ErrRemoteDisabled
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &FormatError{Content: truncate(string(body), 200), Err: fmt.Errorf("failed to unmarshal response: %w", err)}
	}

	return &result, nil
}

// Estimate asks the model for a price estimate. Transport errors are
// retried according to the configured attempts; everything else fails at once.
func (c *OpenAIClient) Estimate(ctx context.Context, prompt string) RemoteOutcome {
	if !c.IsEnabled() {
		return RemoteFailure{Err: ErrRemoteDisabled}
	}

	req := ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []ChatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	log.Printf("[DEBUG] 📤 Sending prediction request to %s (model %s)", c.config.APIURL, c.config.Model)

	var resp *ChatCompletionResponse
	err := c.retry.Do(ctx, "prediction API call", func(ctx context.Context) error {
		r, err := c.ChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return RemoteFailure{Err: err}
	}

	content, err := c.extractor.Content(resp)
	if err != nil {
		return RemoteFailure{Err: &FormatError{Err: err}}
	}

	log.Printf("[DEBUG] 🔍 Model answer: %s", truncate(content, 300))

	est, err := parseEstimate(content, c.config.LenientJSON)
	if err != nil {
		return RemoteFailure{Err: err}
	}

	log.Printf("[DEBUG] ✅ Remote estimate parsed (tokens: %d)", resp.Usage.TotalTokens)
	return RemoteSuccess{Estimate: est, Content: content}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
