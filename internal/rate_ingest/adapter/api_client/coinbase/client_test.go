package coinbase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/langowen/converter/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "USD", r.URL.Query().Get("currency"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestFetchRate(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"data":{"currency":"USD","rates":{"BTC":"0.0000148","EUR":"0.92"}}}`)

	rate, err := NewHTTPClient(srv.Client(), srv.URL+"/v2/exchange-rates").FetchRate(context.Background(), "USD", "BTC")
	require.NoError(t, err)
	assert.InDelta(t, 0.0000148, rate, 1e-12)
}

func TestFetchRateMissingCode(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"data":{"currency":"USD","rates":{"EUR":"0.92"}}}`)

	_, err := NewHTTPClient(srv.Client(), srv.URL).FetchRate(context.Background(), "USD", "BTC")
	assert.ErrorIs(t, err, entities.ErrNoData)
}

func TestFetchRateNotFinite(t *testing.T) {
	for _, raw := range []string{"NaN", "Inf", "-Inf"} {
		t.Run(raw, func(t *testing.T) {
			srv := newServer(t, http.StatusOK, `{"data":{"currency":"USD","rates":{"BTC":"`+raw+`"}}}`)

			_, err := NewHTTPClient(srv.Client(), srv.URL).FetchRate(context.Background(), "USD", "BTC")
			assert.ErrorIs(t, err, entities.ErrNoData)
		})
	}
}

func TestFetchRateBadInput(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "bad status", status: http.StatusTooManyRequests, body: `{}`},
		{name: "not a number", status: http.StatusOK, body: `{"data":{"rates":{"BTC":"n/a"}}}`},
		{name: "bad json", status: http.StatusOK, body: `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.status, tt.body)

			_, err := NewHTTPClient(srv.Client(), srv.URL).FetchRate(context.Background(), "USD", "BTC")
			assert.Error(t, err)
		})
	}
}
