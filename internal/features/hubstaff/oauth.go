package hubstaff

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "hubstaff-bot-backend/internal/common/errors"
	"hubstaff-bot-backend/internal/common/logger"
	"hubstaff-bot-backend/internal/features/user/models"
)

const (
	discoveryCacheKey = "hubstaff:oidc_discovery"
	discoveryCacheTTL = 7 * 24 * time.Hour
)

// DiscoveryDocument is the subset of the OIDC discovery response we use.
type DiscoveryDocument struct {
	AuthorizationEndpoint string   `json:"authorization_endpoint"`
	TokenEndpoint         string   `json:"token_endpoint"`
	ScopesSupported       []string `json:"scopes_supported"`
}

// Cache stores the discovery document between processes. Implemented by
// *cache.CacheService; tests use an in-memory fake.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// OAuthConfig holds the registered client credentials. RedirectURI must
// stay byte-identical to the value registered with Hubstaff.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scope        string
	DiscoveryURL string
}

// OAuthService builds authorization URLs and exchanges authorization
// codes for tokens, resolving endpoints through cached OIDC discovery.
type OAuthService struct {
	cfg        OAuthConfig
	httpClient *http.Client
	cache      Cache
}

func NewOAuthService(cfg OAuthConfig, cache Cache) *OAuthService {
	return &OAuthService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      cache,
	}
}

// discover returns the provider endpoints, fetching and caching the
// discovery document on a miss. The check-then-fetch is not atomic;
// concurrent misses just fetch twice and the last write wins.
func (s *OAuthService) discover(ctx context.Context) (*DiscoveryDocument, error) {
	var doc DiscoveryDocument
	if err := s.cache.Get(ctx, discoveryCacheKey, &doc); err == nil && doc.AuthorizationEndpoint != "" {
		return &doc, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.DiscoveryURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to build discovery request")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUpstreamUnavailable, "discovery request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(apperrors.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("discovery returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeUpstreamUnavailable, "failed to decode discovery document")
	}

	if err := s.cache.Set(ctx, discoveryCacheKey, doc, discoveryCacheTTL); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache discovery document")
	}

	return &doc, nil
}

// BuildAuthorizationURL returns the provider authorization URL for the
// given chat. The query is joined by hand: every value is escaped except
// redirect_uri, which must reach the provider byte-identical to the
// registered value. State carries the chat id and round-trips through
// the redirect.
func (s *OAuthService) BuildAuthorizationURL(ctx context.Context, chatID int64) (string, error) {
	doc, err := s.discover(ctx)
	if err != nil {
		return "", err
	}

	nonce := uuid.NewString()
	params := []string{
		"client_id=" + url.QueryEscape(s.cfg.ClientID),
		"response_type=code",
		"nonce=" + url.QueryEscape(nonce),
		"redirect_uri=" + s.cfg.RedirectURI,
		"scope=" + url.QueryEscape(s.cfg.Scope),
		"state=" + strconv.FormatInt(chatID, 10),
	}

	return doc.AuthorizationEndpoint + "?" + strings.Join(params, "&"), nil
}

// ParseState recovers the chat id a BuildAuthorizationURL call embedded.
func ParseState(state string) (int64, error) {
	chatID, err := strconv.ParseInt(state, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed state parameter: %w", err)
	}
	return chatID, nil
}

// Exchange trades an authorization code for a token set. A provider
// rejection maps to OAuthExchange without leaking the upstream body.
func (s *OAuthService) Exchange(ctx context.Context, code string) (models.TokenSet, error) {
	doc, err := s.discover(ctx)
	if err != nil {
		return models.TokenSet{}, err
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", s.cfg.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, doc.TokenEndpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return models.TokenSet{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.TokenSet{}, apperrors.Wrap(err, apperrors.ErrCodeUpstreamUnavailable, "token request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		logger.Warn().Int("status", resp.StatusCode).Str("body", string(body)).
			Msg("Token exchange rejected")
		return models.TokenSet{}, apperrors.New(apperrors.ErrCodeOAuthExchange,
			fmt.Sprintf("token endpoint returned status %d", resp.StatusCode))
	}

	var tokens models.TokenSet
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return models.TokenSet{}, apperrors.Wrap(err, apperrors.ErrCodeOAuthExchange, "failed to decode token response")
	}

	return tokens, nil
}
