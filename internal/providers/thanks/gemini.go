package thanks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	OnFallback FallbackHook
}

// GeminiNotifier calls the Gemini generateContent REST endpoint.
type GeminiNotifier struct {
	apiKey     string
	model      string
	baseURL    string
	client     *http.Client
	onFallback FallbackHook
}

const geminiDefaultTimeout = 15 * time.Second

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature    float64 `json:"temperature,omitempty"`
	CandidateCount int     `json:"candidateCount,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func NewGeminiNotifier(opts GeminiOptions) (*GeminiNotifier, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &GeminiNotifier{
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      coalesce(opts.Model, "gemini-2.5-flash"),
		baseURL:    baseURL,
		client:     client,
		onFallback: opts.OnFallback,
	}, nil
}

func (g *GeminiNotifier) ThankYou(ctx context.Context, req Request) Result {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: BuildPrompt(req.Submission, req.Locale)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:    0.8,
			CandidateCount: 1,
		},
	}
	header := http.Header{}
	header.Set("x-goog-api-key", g.apiKey)
	var out geminiResponse
	if cerr := postJSON(ctx, g.client, g.endpoint(), header, payload, &out); cerr != nil {
		return fail(g.onFallback, providerGemini, req.Locale, cerr)
	}
	return succeed(providerGemini, extractGeminiText(out), req.Locale)
}

func (g *GeminiNotifier) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
}

func extractGeminiText(resp geminiResponse) string {
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return part.Text
			}
		}
	}
	return ""
}

var _ Notifier = (*GeminiNotifier)(nil)
