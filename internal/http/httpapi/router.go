package httpapi

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vip7612-maker/monglemongle/internal/http/handlers"
	"github.com/vip7612-maker/monglemongle/internal/infra"
	"github.com/vip7612-maker/monglemongle/internal/metrics"
	"github.com/vip7612-maker/monglemongle/internal/middleware"
)

type Deps struct {
	App     *handlers.App
	Hub     http.Handler
	Auth    *middleware.AdminAuth
	Metrics *metrics.Metrics
	Logger  infra.Logger

	AllowedOrigins  []string
	RateLimitPerMin int
	StaticDir       string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID(d.Logger),
		middleware.Logger(d.Logger, d.Metrics),
		chimw.Recoverer,
		middleware.CORS(d.AllowedOrigins),
		middleware.I18N,
	)

	app := d.App

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	if d.Hub != nil {
		r.Method(http.MethodGet, "/ws", d.Hub)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/submissions", app.ListSubmissions)
		r.Get("/summary", app.Summary)
		r.Get("/sponsors", app.Sponsors)
		r.With(middleware.RateLimit(d.RateLimitPerMin, time.Minute)).Post("/submit", app.Submit)
		r.With(middleware.RateLimit(10, time.Minute)).Post("/admin/login", app.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(d.Auth))
			r.Post("/admin_action", app.AdminAction)
			r.Post("/export-google-sheets", app.ExportSheets)
			r.Get("/admin/backup", app.Backup)
		})
	})

	if d.StaticDir != "" {
		r.NotFound(spaHandler(d.StaticDir))
	}

	return r
}

// spaHandler serves files from dir and falls back to index.html so client
// side routes resolve.
func spaHandler(dir string) http.HandlerFunc {
	fs := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}
		p := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			fs.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}
