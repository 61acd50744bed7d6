package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

// ErrUnexpectedStatus is wrapped by every non-2xx response error.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// HTTPClient holds the base URL and the resty client used for upstream calls.
type HTTPClient struct {
	BaseURL string
	client  *resty.Client
}

// NewHTTPClient creates a JSON client for baseURL. retries of 0 disables retrying.
func NewHTTPClient(baseURL string, timeout time.Duration, retries int) *HTTPClient {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	client.SetRetryCount(retries)
	client.SetRetryWaitTime(time.Second)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")
	client.SetJSONMarshaler(json.Marshal)
	client.SetJSONUnmarshaler(json.Unmarshal)

	return &HTTPClient{
		BaseURL: baseURL,
		client:  client,
	}
}

// Request makes an HTTP request and decodes the JSON response into response.
func (c *HTTPClient) Request(ctx context.Context, method, endpoint string, headers map[string]string, body interface{}, response interface{}) error {
	resBody, err := c.RequestRaw(ctx, method, endpoint, headers, body)
	if err != nil {
		return err
	}
	if response != nil {
		if err := json.Unmarshal(resBody, response); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
		}
	}
	return nil
}

// RequestRaw makes an HTTP request and returns the response body untouched.
func (c *HTTPClient) RequestRaw(ctx context.Context, method, endpoint string, headers map[string]string, body interface{}) ([]byte, error) {
	req := c.client.R().SetContext(ctx).SetHeaders(headers)
	if body != nil {
		req.SetBody(body)
	}

	res, err := req.Execute(method, endpoint)
	if err != nil {
		return nil, err
	}

	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, res.Status())
	}
	return res.Body(), nil
}
