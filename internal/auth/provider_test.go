package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sdko-org/graph-proxy/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTokenServer(t *testing.T, fetches *atomic.Int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/test-tenant/oauth2/v2.0/token", r.URL.Path)

		n := fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token-%d","token_type":"Bearer","expires_in":3600}`, n)
	}))
}

func newTestProvider(srvURL string) *Provider {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return NewProvider(logger, &config.Config{
		TenantID:     "test-tenant",
		ClientID:     "client",
		ClientSecret: "secret",
		SPHost:       "contoso.sharepoint.com",
		LoginBaseURL: srvURL,
	})
}

func TestToken_CachedWithinWindow(t *testing.T) {
	var fetches atomic.Int32
	srv := newTokenServer(t, &fetches)
	defer srv.Close()

	p := newTestProvider(srv.URL)
	ctx := context.Background()

	first, err := p.Token(ctx, AudienceGraph)
	require.NoError(t, err)

	second, err := p.Token(ctx, AudienceGraph)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), fetches.Load(), "second call within the window must reuse the cache")
}

func TestToken_RefetchesAfterExpiry(t *testing.T) {
	var fetches atomic.Int32
	srv := newTokenServer(t, &fetches)
	defer srv.Close()

	p := newTestProvider(srv.URL)
	ctx := context.Background()

	first, err := p.Token(ctx, AudienceGraph)
	require.NoError(t, err)

	// Jump to 30s before expiry, inside the 60s refresh margin.
	p.now = func() time.Time { return time.Now().Add(3570 * time.Second) }

	second, err := p.Token(ctx, AudienceGraph)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, int32(2), fetches.Load(), "expiry must trigger exactly one new fetch")
}

func TestToken_AudiencesCachedIndependently(t *testing.T) {
	var fetches atomic.Int32
	srv := newTokenServer(t, &fetches)
	defer srv.Close()

	p := newTestProvider(srv.URL)
	ctx := context.Background()

	_, err := p.Token(ctx, AudienceGraph)
	require.NoError(t, err)
	_, err = p.Token(ctx, AudienceSharePoint)
	require.NoError(t, err)

	assert.Equal(t, int32(2), fetches.Load())
}

func TestToken_ExchangeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer srv.Close()

	p := newTestProvider(srv.URL)

	_, err := p.Token(context.Background(), AudienceGraph)
	require.Error(t, err)

	var authErr *Error
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, AudienceGraph, authErr.Audience)

	var retrieveErr *oauth2.RetrieveError
	assert.True(t, errors.As(err, &retrieveErr), "provider response should be preserved")
}

func TestToken_UnknownAudience(t *testing.T) {
	p := newTestProvider("http://127.0.0.1:0")

	_, err := p.Token(context.Background(), Audience("bogus"))
	var authErr *Error
	require.ErrorAs(t, err, &authErr)
}

func TestSource_DelegatesToProvider(t *testing.T) {
	var fetches atomic.Int32
	srv := newTokenServer(t, &fetches)
	defer srv.Close()

	p := newTestProvider(srv.URL)
	src := p.Source(AudienceGraph)

	tok, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok)
}
