// Package auth acquires OAuth2 client-credentials tokens from Azure AD and
// caches one token per audience for the lifetime of the process.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sdko-org/graph-proxy/internal/config"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Audience selects which upstream resource a token is requested for.
type Audience string

const (
	AudienceGraph      Audience = "graph"
	AudienceSharePoint Audience = "sharepoint"
)

// refreshMargin is how much remaining lifetime a cached token must have to be
// reused. Below this a fresh token is fetched before the caller proceeds.
const refreshMargin = 60 * time.Second

// Error is a failed token exchange for a given audience.
type Error struct {
	Audience Audience
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("auth: token exchange for audience %q failed: %v", e.Audience, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Provider exchanges and caches client-credentials tokens. It is injected
// into every upstream client rather than living in package-level state.
type Provider struct {
	mu      sync.Mutex
	configs map[Audience]*clientcredentials.Config
	tokens  map[Audience]*oauth2.Token
	log     *logrus.Entry

	// now is stubbed in tests to control expiry.
	now func() time.Time
}

func NewProvider(logger *logrus.Logger, cfg *config.Config) *Provider {
	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", cfg.LoginBaseURL, cfg.TenantID)
	newConfig := func(scope string) *clientcredentials.Config {
		return &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{scope},
			AuthStyle:    oauth2.AuthStyleInParams,
		}
	}

	return &Provider{
		configs: map[Audience]*clientcredentials.Config{
			AudienceGraph:      newConfig("https://graph.microsoft.com/.default"),
			AudienceSharePoint: newConfig(fmt.Sprintf("https://%s/.default", cfg.SPHost)),
		},
		tokens: make(map[Audience]*oauth2.Token),
		log:    logger.WithField("component", "token_provider"),
		now:    time.Now,
	}
}

// Token returns a bearer token for the audience, reusing the cached one while
// it has more than refreshMargin of lifetime left. A failed exchange is not
// retried; the error propagates to the caller.
func (p *Provider) Token(ctx context.Context, audience Audience) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if tok, ok := p.tokens[audience]; ok && tok.Expiry.Sub(p.now()) > refreshMargin {
		return tok.AccessToken, nil
	}

	cc, ok := p.configs[audience]
	if !ok {
		return "", &Error{Audience: audience, Err: fmt.Errorf("unknown audience")}
	}

	start := time.Now()
	tok, err := cc.Token(ctx)
	if err != nil {
		p.log.WithField("audience", audience).WithError(err).Error("Token exchange failed")
		return "", &Error{Audience: audience, Err: err}
	}

	p.tokens[audience] = tok
	p.log.WithFields(logrus.Fields{
		"audience": audience,
		"duration": time.Since(start),
		"expiry":   tok.Expiry,
	}).Debug("Acquired access token")
	return tok.AccessToken, nil
}

// Source is a single-audience view of the provider, satisfying the
// TokenSource interfaces the upstream clients declare.
type Source struct {
	provider *Provider
	audience Audience
}

func (p *Provider) Source(audience Audience) *Source {
	return &Source{provider: p, audience: audience}
}

func (s *Source) Token(ctx context.Context) (string, error) {
	return s.provider.Token(ctx, s.audience)
}
