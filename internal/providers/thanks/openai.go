package thanks

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

type OpenAIOptions struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
	OnFallback   FallbackHook
}

// OpenAINotifier calls the chat completions endpoint.
type OpenAINotifier struct {
	apiKey       string
	model        string
	baseURL      string
	organization string
	client       *http.Client
	onFallback   FallbackHook
}

const (
	openAIDefaultTimeout = 15 * time.Second
	defaultOpenAIModel   = "gpt-4o-mini"
)

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewOpenAINotifier(opts OpenAIOptions) (*OpenAINotifier, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAINotifier{
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        coalesce(opts.Model, defaultOpenAIModel),
		baseURL:      baseURL,
		organization: strings.TrimSpace(opts.Organization),
		client:       client,
		onFallback:   opts.OnFallback,
	}, nil
}

func (o *OpenAINotifier) ThankYou(ctx context.Context, req Request) Result {
	payload := openAIChatRequest{
		Model:       o.model,
		Temperature: 0.8,
		Messages: []openAIMessage{
			{Role: "system", Content: "You write brief, sincere thank-you notes for charity donors."},
			{Role: "user", Content: BuildPrompt(req.Submission, req.Locale)},
		},
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+o.apiKey)
	if o.organization != "" {
		header.Set("OpenAI-Organization", o.organization)
	}
	var out openAIChatResponse
	if cerr := postJSON(ctx, o.client, o.baseURL+"/chat/completions", header, payload, &out); cerr != nil {
		return fail(o.onFallback, providerOpenAI, req.Locale, cerr)
	}
	var text string
	if len(out.Choices) > 0 {
		text = out.Choices[0].Message.Content
	}
	return succeed(providerOpenAI, text, req.Locale)
}

var _ Notifier = (*OpenAINotifier)(nil)
