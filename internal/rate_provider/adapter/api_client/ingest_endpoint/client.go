package ingest_endpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/langowen/converter/internal/entities"
	"github.com/pkg/errors"
)

type HTTPClient struct {
	client *http.Client
	url    string
	apiKey string
	now    func() time.Time
}

func NewHTTPClient(client *http.Client, url, apiKey string) *HTTPClient {
	if client == nil {
		client = &http.Client{}
	}

	return &HTTPClient{
		client: client,
		url:    url,
		apiKey: apiKey,
		now:    time.Now,
	}
}

type response struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    *struct {
		Base      string             `json:"base"`
		Rates     map[string]float64 `json:"rates"`
		Timestamp int64              `json:"timestamp"`
	} `json:"data"`
}

// Fetch triggers an ingestion run and returns the snapshot it produced,
// stamped with the time it was received.
func (c *HTTPClient) Fetch(ctx context.Context) (*entities.RateSnapshot, error) {
	const op = "ingest_endpoint.Fetch"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrap(fmt.Errorf("failed to fetch from API: %s", resp.Status), op)
	}

	var result response
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, op)
	}

	if !result.Success {
		return nil, errors.Wrap(fmt.Errorf("%w: %s", entities.ErrSourceUnavailable, result.Error), op)
	}
	if result.Data == nil {
		return nil, errors.Wrap(entities.ErrNoData, op)
	}

	snap, err := entities.NewSnapshot(result.Data.Base, result.Data.Rates, c.now())
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	return snap, nil
}
