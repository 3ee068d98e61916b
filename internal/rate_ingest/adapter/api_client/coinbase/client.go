package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

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

// Coinbase quotes every rate as a decimal string.
type exchangeRatesResponse struct {
	Data struct {
		Currency string            `json:"currency"`
		Rates    map[string]string `json:"rates"`
	} `json:"data"`
}

// FetchRate returns how many units of code one unit of base buys.
func (c *HTTPClient) FetchRate(ctx context.Context, base, code string) (float64, error) {
	const op = "coinbase.FetchRate"

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return 0, errors.Wrap(err, op)
	}
	q := u.Query()
	q.Set("currency", base)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, errors.Wrap(err, op)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, op)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%s: bad status: %s", op, resp.Status)
	}

	var result exchangeRatesResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, errors.Wrap(err, op)
	}

	raw, ok := result.Data.Rates[code]
	if !ok || raw == "" {
		return 0, errors.Wrapf(entities.ErrNoData, "%s: %s", op, code)
	}

	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Wrap(err, op)
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, errors.Wrapf(entities.ErrNoData, "%s: %s is %q", op, code, raw)
	}

	return rate, nil
}
