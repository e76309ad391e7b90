package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/vip7612-maker/monglemongle/internal/domain"
	"github.com/vip7612-maker/monglemongle/internal/infra"
	"github.com/vip7612-maker/monglemongle/internal/metrics"
	"github.com/vip7612-maker/monglemongle/internal/middleware"
	"github.com/vip7612-maker/monglemongle/internal/service"
)

const maxBodyBytes = 16 << 10

// Broadcaster pushes an event to every websocket client.
type Broadcaster interface {
	Broadcast(event string, data any)
}

// ArchiveStore keeps a copy of each downloaded backup.
type ArchiveStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// Exporter writes the full snapshot to the external spreadsheet.
type Exporter interface {
	Configured() bool
	Export(ctx context.Context, list []domain.Submission) error
}

type App struct {
	Submissions *service.Submissions
	Hub         Broadcaster
	Exporter    Exporter
	Archive     ArchiveStore
	Auth        *middleware.AdminAuth
	Logger      infra.Logger
	Metrics     *metrics.Metrics
	Now         func() time.Time
}

func NewApp(svc *service.Submissions, hub Broadcaster, exporter Exporter, auth *middleware.AdminAuth, logger infra.Logger, m *metrics.Metrics) *App {
	return &App{
		Submissions: svc,
		Hub:         hub,
		Exporter:    exporter,
		Auth:        auth,
		Logger:      logger.With().Str("component", "http").Logger(),
		Metrics:     m,
		Now:         time.Now,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]any{"success": false, "error": msg})
}

func (a *App) broadcast(event string, data any) {
	if a.Hub != nil {
		a.Hub.Broadcast(event, data)
	}
}

func (a *App) log(r *http.Request) *infra.Logger {
	l := a.Logger.With().Str("request_id", middleware.RequestIDFromContext(r.Context())).Logger()
	return &l
}

// decodeObject reads a JSON object body. Arrays, scalars and trailing data
// are rejected.
func decodeObject(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	if len(raw) == 0 || raw[0] != '{' {
		return errNotObject
	}
	return json.Unmarshal(raw, dst)
}
