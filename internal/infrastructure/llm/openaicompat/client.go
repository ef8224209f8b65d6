// Package openaicompat classifies missions through any server that speaks the
// OpenAI chat completions protocol.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
	"github.com/kirillkom/nonprofit-scan/internal/infrastructure/llm"
	"github.com/kirillkom/nonprofit-scan/internal/infrastructure/resilience"
)

type Options struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	Executor    *resilience.Executor
}

type Classifier struct {
	endpoint   string
	model      string
	apiKey     string
	opts       Options
	httpClient *http.Client
}

func New(endpoint, model, apiKey string, opts Options) *Classifier {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 8
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Classifier{
		endpoint:   strings.TrimRight(endpoint, "/"),
		model:      model,
		apiKey:     apiKey,
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

// ReadAPIKey loads a bearer token from a file, trimming surrounding whitespace.
func ReadAPIKey(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read api key file: %w", err)
	}
	key := strings.TrimSpace(string(raw))
	if key == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "read api key", fmt.Errorf("%s is empty", path))
	}
	return key, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Classifier) Classify(ctx context.Context, text string) (string, error) {
	var label string
	call := func(ctx context.Context) error {
		out, err := c.complete(ctx, llm.CategoryPrompt(text))
		if err != nil {
			return err
		}
		label = out
		return nil
	}

	var err error
	if c.opts.Executor != nil {
		err = c.opts.Executor.Execute(ctx, "openai.chat", call, classifyError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", resilience.WrapTemporary("openai classify", err, classifyError)
	}
	return label, nil
}

func (c *Classifier) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.opts.MaxTokens,
		Temperature: c.opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(raw))}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat response has no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
