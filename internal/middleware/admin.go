package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vip7612-maker/monglemongle/internal/domain"
)

const (
	AdminPassphraseHeader = "X-Admin-Passphrase"

	adminSubject = "admin"
	adminIssuer  = "monglemongle"
)

// AdminAuth guards moderation and export. It accepts the shared passphrase
// directly or an HS256 token issued in exchange for it. An empty passphrase
// leaves admin operations open.
type AdminAuth struct {
	passphrase string
	key        []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewAdminAuth(passphrase string, ttl time.Duration) *AdminAuth {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	sum := sha256.Sum256([]byte("admin-token:" + passphrase))
	return &AdminAuth{passphrase: passphrase, key: sum[:], ttl: ttl, now: time.Now}
}

// Open reports whether no passphrase is configured.
func (a *AdminAuth) Open() bool {
	return a == nil || a.passphrase == ""
}

// CheckPassphrase compares in constant time.
func (a *AdminAuth) CheckPassphrase(candidate string) bool {
	if a.Open() {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(a.passphrase)) == 1
}

// IssueToken exchanges a correct passphrase for a signed admin token.
func (a *AdminAuth) IssueToken(passphrase string) (string, time.Time, error) {
	if !a.CheckPassphrase(passphrase) {
		return "", time.Time{}, domain.ErrUnauthorized
	}
	now := a.now()
	exp := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   adminSubject,
		Issuer:    adminIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyToken validates signature, issuer, subject and expiry.
func (a *AdminAuth) VerifyToken(token string) error {
	if a.Open() {
		return nil
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(adminIssuer),
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return errors.Join(domain.ErrUnauthorized, err)
	}
	return nil
}

// Authorize accepts either credential. It is shared by the HTTP middleware
// and the websocket admin event.
func (a *AdminAuth) Authorize(passphrase, token string) error {
	if a.Open() {
		return nil
	}
	if passphrase != "" && a.CheckPassphrase(passphrase) {
		return nil
	}
	if token != "" {
		return a.VerifyToken(token)
	}
	return domain.ErrUnauthorized
}

// RequireAdmin rejects requests without a valid passphrase header or bearer
// token with 401.
func RequireAdmin(a *AdminAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := a.Authorize(r.Header.Get(AdminPassphraseHeader), bearerToken(r)); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"success":false,"error":"unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
