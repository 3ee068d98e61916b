package exchangerate_api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/langowen/converter/internal/entities"
	"github.com/pkg/errors"
)

type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func NewHTTPClient(client *http.Client, baseURL string) *HTTPClient {
	if client == nil {
		client = &http.Client{}
	}

	return &HTTPClient{
		client:  client,
		baseURL: baseURL,
	}
}

type latestResponse struct {
	Base            string             `json:"base"`
	Rates           map[string]float64 `json:"rates"`
	TimeLastUpdated int64              `json:"time_last_updated"`
}

// FetchFiat returns the full fiat table quoted against base.
func (c *HTTPClient) FetchFiat(ctx context.Context, base string) (*entities.FiatTable, error) {
	const op = "exchangerate_api.FetchFiat"

	endpoint, err := url.JoinPath(c.baseURL, base)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: failed to fetch fiat exchange rates: %s", op, resp.Status)
	}

	var result latestResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, op)
	}

	if len(result.Rates) == 0 {
		return nil, errors.Wrap(entities.ErrNoData, op)
	}

	if result.Base == "" {
		result.Base = base
	}

	return &entities.FiatTable{
		Base:        result.Base,
		Rates:       result.Rates,
		UpdatedUnix: result.TimeLastUpdated,
	}, nil
}
