package exchangerate_api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/langowen/converter/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchFiat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/latest/USD", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","time_last_updated":1717200000,"rates":{"USD":1,"EUR":0.92,"JPY":157.1}}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.Client(), srv.URL+"/v4/latest")

	table, err := c.FetchFiat(context.Background(), "USD")
	require.NoError(t, err)

	assert.Equal(t, "USD", table.Base)
	assert.Equal(t, int64(1717200000), table.UpdatedUnix)
	assert.Equal(t, map[string]float64{"USD": 1, "EUR": 0.92, "JPY": 157.1}, table.Rates)
}

func TestFetchFiatErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "bad status", status: http.StatusServiceUnavailable, body: `{}`},
		{name: "bad json", status: http.StatusOK, body: `{"rates":`},
		{name: "no rates", status: http.StatusOK, body: `{"base":"USD","rates":{}}`, wantErr: entities.ErrNoData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPClient(srv.Client(), srv.URL).FetchFiat(context.Background(), "USD")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
