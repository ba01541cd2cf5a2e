// Package feedback forwards user-submitted feedback to a GitHub issue
// tracker using GitHub App authentication.
package feedback

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultAPIBaseURL is the GitHub REST API root.
	DefaultAPIBaseURL = "https://api.github.com"

	appJWTLifetime = 10 * time.Minute
	// tokenRefreshMargin renews installation tokens before they expire
	// so in-flight requests never race the expiry.
	tokenRefreshMargin = 5 * time.Minute
)

// Config holds the GitHub App credentials and the target repository.
type Config struct {
	AppID          int64
	InstallationID int64
	PrivateKeyPEM  []byte
	Owner          string
	Repo           string
	BaseURL        string
}

// Submission is the feedback payload to be turned into an issue.
type Submission struct {
	Category string
	Message  string
	Email    string
	Page     string
}

// Issue describes the created tracker issue.
type Issue struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}

// Forwarder creates GitHub issues from feedback submissions. It caches
// the installation token and renews it when close to expiry.
type Forwarder struct {
	cfg    Config
	key    *rsa.PrivateKey
	client *http.Client

	mu         sync.Mutex
	token      string
	tokenUntil time.Time
}

// NewForwarder parses the App private key and returns a ready Forwarder.
func NewForwarder(cfg Config) (*Forwarder, error) {
	if cfg.AppID == 0 || cfg.InstallationID == 0 {
		return nil, fmt.Errorf("github app id and installation id are required")
	}
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github owner and repo are required")
	}
	key, err := parsePrivateKey(cfg.PrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse github app private key: %w", err)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAPIBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Forwarder{
		cfg:    cfg,
		key:    key,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func parsePrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not RSA")
	}
	return key, nil
}

// appJWT signs the short-lived JWT a GitHub App authenticates with.
func (f *Forwarder) appJWT(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    fmt.Sprintf("%d", f.cfg.AppID),
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(appJWTLifetime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(f.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign app jwt: %w", err)
	}
	return signed, nil
}

// installationToken returns a valid installation access token, exchanging
// a fresh app JWT when the cached token is missing or near expiry.
func (f *Forwarder) installationToken(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	if f.token != "" && now.Before(f.tokenUntil.Add(-tokenRefreshMargin)) {
		return f.token, nil
	}

	appToken, err := f.appJWT(now)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/app/installations/%d/access_tokens", f.cfg.BaseURL, f.cfg.InstallationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+appToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("installation token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("installation token request returned status %d: %s", resp.StatusCode, string(body))
	}

	var tok struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("failed to decode installation token: %w", err)
	}

	f.token = tok.Token
	f.tokenUntil = tok.ExpiresAt
	return f.token, nil
}

// Forward creates a GitHub issue for the submission and returns it.
func (f *Forwarder) Forward(ctx context.Context, sub Submission) (*Issue, error) {
	if strings.TrimSpace(sub.Message) == "" {
		return nil, fmt.Errorf("feedback message is empty")
	}

	token, err := f.installationToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"title":  issueTitle(sub),
		"body":   issueBody(sub),
		"labels": []string{"feedback", sub.Category},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal issue payload: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/%s/issues", f.cfg.BaseURL, f.cfg.Owner, f.cfg.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create issue request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("issue creation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("issue creation returned status %d: %s", resp.StatusCode, string(body))
	}

	var issue Issue
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		return nil, fmt.Errorf("failed to decode created issue: %w", err)
	}
	return &issue, nil
}

func issueTitle(sub Submission) string {
	msg := strings.TrimSpace(sub.Message)
	if len(msg) > 60 {
		msg = msg[:57] + "..."
	}
	return fmt.Sprintf("[%s] %s", sub.Category, msg)
}

func issueBody(sub Submission) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(sub.Message))
	b.WriteString("\n\n---\n")
	fmt.Fprintf(&b, "- Category: %s\n", sub.Category)
	if sub.Page != "" {
		fmt.Fprintf(&b, "- Page: %s\n", sub.Page)
	}
	if sub.Email != "" {
		fmt.Fprintf(&b, "- Contact: %s\n", sub.Email)
	}
	return b.String()
}
