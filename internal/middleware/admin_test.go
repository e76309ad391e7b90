package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vip7612-maker/monglemongle/internal/domain"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAdminAuthOpenWithoutPassphrase(t *testing.T) {
	a := NewAdminAuth("", 0)
	assert.True(t, a.Open())
	assert.NoError(t, a.Authorize("", ""))

	rec := httptest.NewRecorder()
	RequireAdmin(a)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminAuthPassphrase(t *testing.T) {
	a := NewAdminAuth("s3cret", time.Hour)
	assert.True(t, a.CheckPassphrase("s3cret"))
	assert.False(t, a.CheckPassphrase("s3cre"))
	assert.NoError(t, a.Authorize("s3cret", ""))
	assert.ErrorIs(t, a.Authorize("wrong", ""), domain.ErrUnauthorized)
	assert.ErrorIs(t, a.Authorize("", ""), domain.ErrUnauthorized)
}

func TestAdminAuthTokenRoundTrip(t *testing.T) {
	a := NewAdminAuth("s3cret", time.Hour)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	_, _, err := a.IssueToken("nope")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	token, exp, err := a.IssueToken("s3cret")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)
	assert.NoError(t, a.Authorize("", token))

	now = now.Add(2 * time.Hour)
	assert.ErrorIs(t, a.VerifyToken(token), domain.ErrUnauthorized)
}

func TestAdminAuthRejectsForeignTokens(t *testing.T) {
	a := NewAdminAuth("s3cret", time.Hour)
	other := NewAdminAuth("different", time.Hour)
	foreign, _, err := other.IssueToken("different")
	require.NoError(t, err)
	assert.ErrorIs(t, a.VerifyToken(foreign), domain.ErrUnauthorized)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: adminSubject,
		Issuer:  adminIssuer,
	}).SignedString(a.key)
	require.NoError(t, err)
	assert.ErrorIs(t, a.VerifyToken(noExp), domain.ErrUnauthorized)

	assert.ErrorIs(t, a.VerifyToken("garbage"), domain.ErrUnauthorized)
}

func TestRequireAdmin(t *testing.T) {
	a := NewAdminAuth("s3cret", time.Hour)
	token, _, err := a.IssueToken("s3cret")
	require.NoError(t, err)
	h := RequireAdmin(a)(okHandler())

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{name: "no credentials", want: http.StatusUnauthorized},
		{name: "passphrase header", header: AdminPassphraseHeader, value: "s3cret", want: http.StatusOK},
		{name: "wrong passphrase", header: AdminPassphraseHeader, value: "x", want: http.StatusUnauthorized},
		{name: "bearer token", header: "Authorization", value: "Bearer " + token, want: http.StatusOK},
		{name: "malformed bearer", header: "Authorization", value: "Token " + token, want: http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin_action", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want == http.StatusUnauthorized {
				assert.JSONEq(t, `{"success":false,"error":"unauthorized"}`, rec.Body.String())
			}
		})
	}
}
