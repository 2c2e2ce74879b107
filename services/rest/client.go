package restsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/cache"
)

// APIError is a non-2xx upstream response. The status and message are carried
// so the HTTP layer can map it back to the caller.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.StatusCode, e.Message)
}

// Client reads from the backend REST services, forwarding the caller's bearer
// token as-is. Endpoints are routed to a base URL by prefix. No retries here;
// retrying, if any, is the caller's call.
type Client struct {
	http *http.Client
	conf core.UpstreamConfig
}

var _ cache.Upstream = (*Client)(nil)

func NewClient(conf core.UpstreamConfig) *Client {
	return &Client{
		http: &http.Client{Timeout: conf.Timeout},
		conf: conf,
	}
}

func (c *Client) Get(ctx context.Context, endpoint string, params url.Values, token string) (json.RawMessage, error) {
	u := c.baseURL(endpoint) + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building upstream request")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "calling %s", endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s response", endpoint)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body, resp.Status)}
	}
	return body, nil
}

func (c *Client) baseURL(endpoint string) string {
	switch {
	case strings.HasPrefix(endpoint, "/organization"):
		return c.conf.OrganizationURL
	case strings.HasPrefix(endpoint, "/payments"):
		return c.conf.PaymentsURL
	default:
		return c.conf.AcademicsURL
	}
}

// errorMessage pulls a human-readable message out of an upstream error body.
func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fallback
}
