package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vip7612-maker/monglemongle/internal/domain"
	"github.com/vip7612-maker/monglemongle/internal/infra"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

// ErrNotConfigured is returned when the sheet id or credentials are missing.
var ErrNotConfigured = errors.New("google sheets export is not configured")

// dataRange spans every exported column.
const dataRange = "A:H"

// Header is the first row written to the sheet.
var Header = []any{"날짜", "이름", "연락처", "후원대상", "금액", "메시지", "유형", "상태"}

// Tokens yields OAuth access tokens for the Sheets API.
type Tokens interface {
	Token(ctx context.Context) (string, error)
}

type Options struct {
	SheetID    string
	Tokens     Tokens
	BaseURL    string
	HTTPClient *http.Client
	Logger     infra.Logger
}

// Exporter replaces the sheet's data range with the full snapshot.
type Exporter struct {
	sheetID string
	tokens  Tokens
	baseURL string
	client  *http.Client
	logger  infra.Logger
}

func NewExporter(opts Options) *Exporter {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Exporter{
		sheetID: strings.TrimSpace(opts.SheetID),
		tokens:  opts.Tokens,
		baseURL: baseURL,
		client:  client,
		logger:  opts.Logger,
	}
}

// Configured reports whether Export can be attempted.
func (e *Exporter) Configured() bool {
	return e != nil && e.sheetID != "" && e.tokens != nil
}

// Rows renders the header and one row per submission.
func Rows(list []domain.Submission) [][]any {
	rows := make([][]any, 0, len(list)+1)
	rows = append(rows, Header)
	for _, s := range list {
		typeLabel := "일시후원"
		if s.Type == domain.SubmissionCommitment {
			typeLabel = "정기약정"
		}
		status := "활성"
		if s.IsDeleted {
			status = "삭제됨"
		}
		rows = append(rows, []any{s.DateOnly(), s.Name, s.Phone, s.Target, s.Amount, s.Message, typeLabel, status})
	}
	return rows
}

type valueRange struct {
	Values [][]any `json:"values"`
}

// Export clears the data range and writes the snapshot from A1, so rows
// removed from the store do not linger. Failures up to the values write are
// returned; the column resize afterwards is best effort.
func (e *Exporter) Export(ctx context.Context, list []domain.Submission) error {
	if !e.Configured() {
		return ErrNotConfigured
	}
	token, err := e.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("sheets auth: %w", err)
	}

	clearEndpoint := fmt.Sprintf("%s/%s/values/%s:clear", e.baseURL, url.PathEscape(e.sheetID), dataRange)
	if err := e.send(ctx, http.MethodPost, clearEndpoint, token, struct{}{}); err != nil {
		return fmt.Errorf("sheets clear: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/values/A1?valueInputOption=RAW", e.baseURL, url.PathEscape(e.sheetID))
	if err := e.send(ctx, http.MethodPut, endpoint, token, valueRange{Values: Rows(list)}); err != nil {
		return fmt.Errorf("sheets update: %w", err)
	}

	if err := e.autoResize(ctx, token); err != nil {
		e.logger.Warn().Err(err).Msg("sheets auto resize failed")
	}
	e.logger.Info().Int("rows", len(list)).Msg("sheets export complete")
	return nil
}

func (e *Exporter) autoResize(ctx context.Context, token string) error {
	body := map[string]any{
		"requests": []any{map[string]any{
			"autoResizeDimensions": map[string]any{
				"dimensions": map[string]any{
					"sheetId":    0,
					"dimension":  "COLUMNS",
					"startIndex": 0,
					"endIndex":   len(Header),
				},
			},
		}},
	}
	endpoint := fmt.Sprintf("%s/%s:batchUpdate", e.baseURL, url.PathEscape(e.sheetID))
	return e.send(ctx, http.MethodPost, endpoint, token, body)
}

func (e *Exporter) send(ctx context.Context, method, endpoint, token string, payload any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
