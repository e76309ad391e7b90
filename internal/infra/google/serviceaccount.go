package google

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenURL          = "https://oauth2.googleapis.com/token"
	SpreadsheetsScope = "https://www.googleapis.com/auth/spreadsheets"

	jwtBearerGrant  = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionTTL    = time.Hour
	refreshLeadTime = time.Minute
)

// ErrNoCredentials is returned when neither credential form is configured.
var ErrNoCredentials = errors.New("google service account credentials missing")

// ServiceAccount is the subset of a service-account key file we use.
type ServiceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// LoadServiceAccount reads credentials from a base64 encoded key file, or
// from a separate email and PEM key. The PEM may carry literal "\n"
// sequences as stored in most env files.
func LoadServiceAccount(jsonBase64, email, privateKey string) (*ServiceAccount, error) {
	if raw := strings.TrimSpace(jsonBase64); raw != "" {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("decode service account: %w", err)
		}
		var sa ServiceAccount
		if err := json.Unmarshal(decoded, &sa); err != nil {
			return nil, fmt.Errorf("parse service account: %w", err)
		}
		if sa.ClientEmail == "" || sa.PrivateKey == "" {
			return nil, errors.New("service account json lacks client_email or private_key")
		}
		return &sa, nil
	}
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(privateKey) == "" {
		return nil, ErrNoCredentials
	}
	return &ServiceAccount{ClientEmail: email, PrivateKey: NormalizePrivateKey(privateKey)}, nil
}

// NormalizePrivateKey turns escaped newlines into real ones and drops
// carriage returns.
func NormalizePrivateKey(key string) string {
	key = strings.ReplaceAll(key, `\n`, "\n")
	key = strings.ReplaceAll(key, "\r", "")
	return strings.TrimSpace(key)
}

// TokenSource exchanges signed assertions for OAuth access tokens and caches
// the result until shortly before expiry.
type TokenSource struct {
	email    string
	key      *rsa.PrivateKey
	scope    string
	tokenURL string
	client   *http.Client
	now      func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

type TokenSourceOptions struct {
	Scope      string
	TokenURL   string
	HTTPClient *http.Client
	Clock      func() time.Time
}

func NewTokenSource(sa *ServiceAccount, opts TokenSourceOptions) (*TokenSource, error) {
	if sa == nil {
		return nil, ErrNoCredentials
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = TokenURL
	}
	scope := opts.Scope
	if scope == "" {
		scope = SpreadsheetsScope
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TokenSource{
		email:    sa.ClientEmail,
		key:      key,
		scope:    scope,
		tokenURL: tokenURL,
		client:   client,
		now:      clock,
	}, nil
}

// Assertion builds the signed RS256 JWT sent to the token endpoint. aud is
// always the public token URL even when a test endpoint is used.
func (t *TokenSource) Assertion() (string, error) {
	iat := t.now()
	claims := jwt.MapClaims{
		"iss":   t.email,
		"scope": t.scope,
		"aud":   TokenURL,
		"iat":   iat.Unix(),
		"exp":   iat.Add(assertionTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}
	return signed, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Token returns a cached access token or fetches a new one.
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.token != "" && t.now().Before(t.expires.Add(-refreshLeadTime)) {
		return t.token, nil
	}

	assertion, err := t.Assertion()
	if err != nil {
		return "", err
	}
	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("token endpoint status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if out.AccessToken == "" {
		return "", errors.New("token endpoint returned no access_token")
	}
	ttl := time.Duration(out.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = assertionTTL
	}
	t.token = out.AccessToken
	t.expires = t.now().Add(ttl)
	return t.token, nil
}
