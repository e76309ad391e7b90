package thanks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// callError carries the fallback reason for a failed provider call.
type callError struct {
	reason string
	err    error
}

func (e *callError) Error() string { return e.reason + ": " + e.err.Error() }

func (e *callError) Unwrap() error { return e.err }

// postJSON sends payload to endpoint and decodes a 2xx answer into out.
func postJSON(ctx context.Context, client *http.Client, endpoint string, header http.Header, payload, out any) *callError {
	body, err := json.Marshal(payload)
	if err != nil {
		return &callError{"encode_request", err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return &callError{"build_request", err}
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return &callError{"http_request", err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &callError{fmt.Sprintf("http_%d", resp.StatusCode), fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &callError{"decode_response", err}
	}
	return nil
}

// succeed wraps provider text. An empty answer is still a success and uses
// the default thank-you line.
func succeed(provider, text, locale string) Result {
	text = strings.TrimSpace(text)
	if text == "" {
		text = catalogFor(locale).success
	}
	return Result{Message: text, Provider: provider}
}

func fail(hook FallbackHook, provider, locale string, cerr *callError) Result {
	reason := cerr.reason
	if hook != nil {
		hook(provider, reason, cerr.err)
	}
	return Result{
		Message:  catalogFor(locale).failed,
		Fallback: true,
		Provider: provider,
		Reason:   reason,
	}
}

func coalesce(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}
