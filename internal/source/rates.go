package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RatesClient fetches the exchange-rate table over HTTP.
type RatesClient struct {
	client  *http.Client
	url     string
	timeout time.Duration
	log     *zap.Logger
}

func NewRatesClient(client *http.Client, url string, timeout time.Duration, log *zap.Logger) *RatesClient {
	return &RatesClient{
		client:  client,
		url:     url,
		timeout: timeout,
		log:     log.Named("source.rates"),
	}
}

func (c *RatesClient) FetchRates(ctx context.Context) (RateTable, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &Error{Source: NameRates, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, translateFetchError(NameRates, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Source: NameRates, Err: fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)}
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &Error{Source: NameRates, Err: fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)}
	}

	c.log.Debug("fetched exchange rates", zap.Int("count", len(payload.Rates)))
	return RateTable(payload.Rates), nil
}
