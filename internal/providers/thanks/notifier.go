package thanks

import (
	"context"

	"github.com/vip7612-maker/monglemongle/internal/domain"
)

// Request is one thank-you generation for a persisted submission.
type Request struct {
	Submission domain.Submission
	Locale     string
}

// Result is the outcome of a notification. Fallback is true when the text
// came from the static catalog because the provider was absent or failed.
type Result struct {
	Message  string `json:"message"`
	Fallback bool   `json:"fallback"`
	Provider string `json:"provider"`
	Reason   string `json:"reason,omitempty"`
}

// Notifier produces a thank-you message. It never returns an error; failures
// degrade to a localized fallback string.
type Notifier interface {
	ThankYou(ctx context.Context, req Request) Result
}

// FallbackHook observes provider failures. reason is a short machine code
// such as "http_request" or "http_503".
type FallbackHook func(provider, reason string, err error)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
	providerStatic = "static"
)

// StaticNotifier answers with the "no AI key" text for every request.
type StaticNotifier struct{}

func NewStaticNotifier() *StaticNotifier {
	return &StaticNotifier{}
}

func (s *StaticNotifier) ThankYou(_ context.Context, req Request) Result {
	c := catalogFor(req.Locale)
	return Result{Message: c.absent, Fallback: true, Provider: providerStatic, Reason: "missing_api_key"}
}

var _ Notifier = (*StaticNotifier)(nil)
