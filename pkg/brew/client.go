// client.go
package brew

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ErrNotInCoreAPI is returned for tap-qualified formulas, which the
// formulae.brew.sh API does not serve
var ErrNotInCoreAPI = errors.New("formula not in core API")

// ErrNotFound is returned when the API has no such formula
var ErrNotFound = errors.New("formula not found in API")

// Client handles HTTP requests to Homebrew services
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a new Homebrew HTTP client with default timeout
func NewClient(baseURL string) *Client {
	return newClientWithTimeout(baseURL, DefaultTimeout)
}

// newClientWithTimeout creates a new Homebrew HTTP client with custom timeout
func newClientWithTimeout(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: "homebrew-tap/1.0",
	}
}

// GetFormulaInfo retrieves formula information from the API
func (c *Client) GetFormulaInfo(ctx context.Context, name string) (*FormulaInfo, error) {
	if strings.Contains(name, "/") {
		return nil, eris.Wrapf(ErrNotInCoreAPI, "%s", name)
	}

	url := fmt.Sprintf("%s/formula/%s.json", c.baseURL, name)

	var info FormulaInfo
	if err := c.getJSON(ctx, url, &info); err != nil {
		return nil, eris.Wrapf(err, "fetching %s", name)
	}
	return &info, nil
}

// getJSON fetches a URL and unmarshals the JSON response
func (c *Client) getJSON(ctx context.Context, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrap(err, "creating request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "performing request")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return eris.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return eris.Wrap(err, "decoding JSON")
	}
	return nil
}
