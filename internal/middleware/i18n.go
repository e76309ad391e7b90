package middleware

import (
	"context"
	"net/http"

	"github.com/vip7612-maker/monglemongle/internal/domain"
)

type localeContextKey struct{}

var LocaleKey = localeContextKey{}

// I18N resolves the request locale from the lang query parameter, the
// X-Locale header, then Accept-Language.
func I18N(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := DetectLocale(r)
		w.Header().Set("Content-Language", locale)
		ctx := context.WithValue(r.Context(), LocaleKey, locale)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DetectLocale returns one of the supported locale codes for r.
func DetectLocale(r *http.Request) string {
	return domain.MatchLocale(
		r.URL.Query().Get("lang"),
		r.Header.Get("X-Locale"),
		r.Header.Get("Accept-Language"),
	)
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok && v != "" {
		return v
	}
	return domain.DefaultLocale
}
