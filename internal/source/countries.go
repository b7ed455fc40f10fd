package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// CountriesClient fetches country reference data over HTTP.
type CountriesClient struct {
	client  *http.Client
	url     string
	timeout time.Duration
	log     *zap.Logger
}

func NewCountriesClient(client *http.Client, url string, timeout time.Duration, log *zap.Logger) *CountriesClient {
	return &CountriesClient{
		client:  client,
		url:     url,
		timeout: timeout,
		log:     log.Named("source.countries"),
	}
}

func (c *CountriesClient) FetchCountries(ctx context.Context) ([]RawCountry, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &Error{Source: NameCountries, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, translateFetchError(NameCountries, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Source: NameCountries, Err: fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)}
	}

	var countries []RawCountry
	if err := json.NewDecoder(resp.Body).Decode(&countries); err != nil {
		return nil, &Error{Source: NameCountries, Err: fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)}
	}

	c.log.Debug("fetched countries", zap.Int("count", len(countries)))
	return countries, nil
}

// translateFetchError maps transport failures into the source error taxonomy.
func translateFetchError(name string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Source: name, Err: ErrTimeout}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Source: name, Err: ErrTimeout}
	default:
		return &Error{Source: name, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
}
