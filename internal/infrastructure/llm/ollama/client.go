package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/nonprofit-scan/internal/infrastructure/llm"
	"github.com/kirillkom/nonprofit-scan/internal/infrastructure/resilience"
)

type Options struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	Executor    *resilience.Executor
}

type Client struct {
	baseURL    string
	genModel   string
	opts       Options
	httpClient *http.Client
}

func New(baseURL, genModel string, opts Options) *Client {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 8
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

// Classify asks the model for one category word. The answer is returned
// trimmed and otherwise unparsed.
func (c *Classifier) Classify(ctx context.Context, text string) (string, error) {
	var label string
	call := func(ctx context.Context) error {
		out, err := c.client.generateText(ctx, llm.CategoryPrompt(text))
		if err != nil {
			return err
		}
		label = out
		return nil
	}

	var err error
	if c.client.opts.Executor != nil {
		err = c.client.opts.Executor.Execute(ctx, "ollama.generate", call, classifyOllamaError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", resilience.WrapTemporary("ollama classify", err, classifyOllamaError)
	}
	return label, nil
}

func (c *Client) generateText(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"num_predict": c.opts.MaxTokens,
			"temperature": c.opts.Temperature,
		},
	}
	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}
