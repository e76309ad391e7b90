package thanks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vip7612-maker/monglemongle/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func sampleRequest(typ domain.SubmissionType, locale string) Request {
	return Request{
		Submission: domain.Submission{ID: 1, Name: "김철수", Target: "다르항 학교", Type: typ},
		Locale:     locale,
	}
}

func TestBuildPromptKorean(t *testing.T) {
	got := BuildPrompt(sampleRequest(domain.SubmissionCommitment, "").Submission, "")
	want := `Write a short, heartwarming thank you message in Korean for a sponsor named "김철수" who just committed to a 정기 후원 약정 to support "다르항 학교" in their mission to teach Google AI in Mongolia. Mention how this specific support for 다르항 학교 will help the mission. Keep it under 3 sentences.`
	assert.Equal(t, want, got)

	oneTime := BuildPrompt(sampleRequest(domain.SubmissionOneTime, "").Submission, "ko")
	assert.Contains(t, oneTime, "committed to a 일시 후원 to support")
}

func TestBuildPromptLocalized(t *testing.T) {
	got := BuildPrompt(sampleRequest(domain.SubmissionOneTime, "en").Submission, "en-US")
	assert.Contains(t, got, "in English for a sponsor")
	assert.Contains(t, got, "one-time donation")
}

func TestStaticNotifier(t *testing.T) {
	res := NewStaticNotifier().ThankYou(context.Background(), sampleRequest(domain.SubmissionOneTime, ""))
	assert.Equal(t, "따뜻한 후원에 감사드립니다 (AI 키 없음)", res.Message)
	assert.True(t, res.Fallback)
	assert.Equal(t, providerStatic, res.Provider)

	res = NewStaticNotifier().ThankYou(context.Background(), sampleRequest(domain.SubmissionOneTime, "ja"))
	assert.Equal(t, AbsentMessage("ja"), res.Message)
}

func TestFallbackCatalogComplete(t *testing.T) {
	for locale, c := range catalogs {
		assert.NotEmpty(t, c.language, locale)
		assert.NotEmpty(t, c.commitment, locale)
		assert.NotEmpty(t, c.oneTime, locale)
		assert.NotEmpty(t, c.success, locale)
		assert.NotEmpty(t, c.failed, locale)
		assert.NotEmpty(t, c.absent, locale)
	}
	assert.Len(t, catalogs, 5)
}

func TestGeminiNotifierSuccess(t *testing.T) {
	var gotPath, gotKey string
	var gotBody geminiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"  "},{"text":"감사합니다, 김철수님!"}]}}]}`))
	}))
	defer srv.Close()

	n, err := NewGeminiNotifier(GeminiOptions{APIKey: "k-1", Model: "gemini-2.5-flash", BaseURL: srv.URL})
	require.NoError(t, err)

	res := n.ThankYou(context.Background(), sampleRequest(domain.SubmissionCommitment, "ko"))
	assert.Equal(t, "감사합니다, 김철수님!", res.Message)
	assert.False(t, res.Fallback)
	assert.Equal(t, providerGemini, res.Provider)
	assert.Equal(t, "/models/gemini-2.5-flash:generateContent", gotPath)
	assert.Equal(t, "k-1", gotKey)
	require.Len(t, gotBody.Contents, 1)
	assert.Contains(t, gotBody.Contents[0].Parts[0].Text, "김철수")
}

func TestGeminiNotifierEmptyTextUsesDefault(t *testing.T) {
	n, err := NewGeminiNotifier(GeminiOptions{
		APIKey: "k",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{"candidates":[]}`), nil
		})},
	})
	require.NoError(t, err)

	res := n.ThankYou(context.Background(), sampleRequest(domain.SubmissionOneTime, ""))
	assert.Equal(t, "후원 약정에 진심으로 감사드립니다!", res.Message)
	assert.False(t, res.Fallback)
}

func TestGeminiNotifierFailureFallsBack(t *testing.T) {
	var reasons []string
	hook := func(provider, reason string, err error) {
		assert.Equal(t, providerGemini, provider)
		assert.Error(t, err)
		reasons = append(reasons, reason)
	}

	n, err := NewGeminiNotifier(GeminiOptions{
		APIKey:     "k",
		OnFallback: hook,
		HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("boom")
		})},
	})
	require.NoError(t, err)
	res := n.ThankYou(context.Background(), sampleRequest(domain.SubmissionOneTime, ""))
	assert.Equal(t, "몽골의 미래를 위한 따뜻한 후원에 감사드립니다!", res.Message)
	assert.True(t, res.Fallback)
	assert.Equal(t, "http_request", res.Reason)

	n, err = NewGeminiNotifier(GeminiOptions{
		APIKey:     "k",
		OnFallback: hook,
		HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusServiceUnavailable, `{}`), nil
		})},
	})
	require.NoError(t, err)
	res = n.ThankYou(context.Background(), sampleRequest(domain.SubmissionOneTime, "en"))
	assert.Equal(t, FailedMessage("en"), res.Message)
	assert.Equal(t, "http_503", res.Reason)

	assert.Equal(t, []string{"http_request", "http_503"}, reasons)
}

func TestGeminiNotifierRequiresKey(t *testing.T) {
	_, err := NewGeminiNotifier(GeminiOptions{APIKey: "  "})
	assert.Error(t, err)
}

func TestOpenAINotifier(t *testing.T) {
	var gotAuth string
	var gotBody openAIChatRequest
	n, err := NewOpenAINotifier(OpenAIOptions{
		APIKey: "sk-test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			assert.Equal(t, "https://api.openai.com/v1/chat/completions", r.URL.String())
			gotAuth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			return jsonResponse(http.StatusOK, `{"choices":[{"message":{"content":"Thank you!"}}]}`), nil
		})},
	})
	require.NoError(t, err)

	res := n.ThankYou(context.Background(), sampleRequest(domain.SubmissionCommitment, "en"))
	assert.Equal(t, "Thank you!", res.Message)
	assert.False(t, res.Fallback)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, defaultOpenAIModel, gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Contains(t, gotBody.Messages[1].Content, "recurring sponsorship commitment")
}

func TestOpenAINotifierDecodeFailure(t *testing.T) {
	n, err := NewOpenAINotifier(OpenAIOptions{
		APIKey: "sk-test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `not json`), nil
		})},
	})
	require.NoError(t, err)
	res := n.ThankYou(context.Background(), sampleRequest(domain.SubmissionOneTime, "mn"))
	assert.True(t, res.Fallback)
	assert.Equal(t, "decode_response", res.Reason)
	assert.Equal(t, FailedMessage("mn"), res.Message)
}
