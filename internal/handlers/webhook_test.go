package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postWebhook(t *testing.T, push *fakePush, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := newTestRouter(t, testConfig(), &fakeGraph{}, &fakePages{}, push, nil)
	req := httptest.NewRequest(http.MethodPost, "/graph-webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandleWebhook_EchoesQueryToken(t *testing.T) {
	r := newTestRouter(t, testConfig(), &fakeGraph{}, &fakePages{}, &fakePush{}, nil)

	rec := doRequest(r, http.MethodPost, "/graph-webhook?validationToken=abc%20123")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "abc 123", rec.Body.String())
}

func TestHandleWebhook_EchoesBodyToken(t *testing.T) {
	rec := postWebhook(t, &fakePush{}, `{"validationToken":"body-token"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body-token", rec.Body.String())
}

func TestHandleWebhook_AnyMethod(t *testing.T) {
	r := newTestRouter(t, testConfig(), &fakeGraph{}, &fakePages{}, &fakePush{}, nil)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut} {
		rec := doRequest(r, method, "/graph-webhook?validationToken=tok")
		assert.Equal(t, http.StatusOK, rec.Code, method)
	}
}

func TestHandleWebhook_RelaysBatch(t *testing.T) {
	push := &fakePush{}

	rec := postWebhook(t, push, `{"value":[
		{"subscriptionId":"s1","changeType":"updated","resource":"drives/d/items/1"},
		{"subscriptionId":"s1","changeType":"created","resource":"drives/d/items/2"}
	]}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 2, push.calls)
}

func TestHandleWebhook_PartialFailureStillAccepted(t *testing.T) {
	push := &fakePush{}
	push.notify = func(_ context.Context, _, _ string) error {
		if push.calls == 2 {
			return errors.New("push rejected")
		}
		return nil
	}

	rec := postWebhook(t, push, `{"value":[
		{"changeType":"updated","resource":"r1"},
		{"changeType":"updated","resource":"r2"},
		{"changeType":"updated","resource":"r3"}
	]}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 3, push.calls, "a failed push must not stop the batch")
}

func TestHandleWebhook_InvalidPayload(t *testing.T) {
	rec := postWebhook(t, &fakePush{}, `not-json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleWebhook_EmptyBody(t *testing.T) {
	push := &fakePush{}
	rec := postWebhook(t, push, "")

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 0, push.calls)
}

func TestHandleWebhook_EmptyBatch(t *testing.T) {
	push := &fakePush{}
	rec := postWebhook(t, push, `{"value":[]}`)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 0, push.calls)
}
