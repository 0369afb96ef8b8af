package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"scribe/internal/config"
)

// Option configures a repository.
type Option func(*restClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *restClient) {
		c.client = httpClient
	}
}

// WithLogger sets the logger that receives debug records for every response.
func WithLogger(logger *slog.Logger) Option {
	return func(c *restClient) {
		c.logger = logger
	}
}

// restClient carries the connection context shared by every call of a
// repository: base URL, auth header and HTTP client.
type restClient struct {
	service   string
	baseURL   string
	authToken string
	client    *http.Client
	logger    *slog.Logger
}

func newRESTClient(service string, cfg config.ClientConfig, opts []Option) (*restClient, error) {
	if err := cfg.Validate(service); err != nil {
		return nil, err
	}

	c := &restClient{
		service:   service,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		authToken: cfg.AuthToken,
		client: &http.Client{
			Timeout: cfg.Timeout(),
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// newJSONRequest creates a request with a JSON body and the auth header.
func (c *restClient) newJSONRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := c.newRequest(ctx, method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// newRequest creates a request with an arbitrary body and the auth header.
func (c *restClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+c.authToken)

	return req, nil
}

// do executes req and returns the status code and response body. Any
// non-2xx status is returned as a *RemoteRequestError.
func (c *restClient) do(req *http.Request) (int, []byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug(c.service+" response",
		"method", req.Method,
		"endpoint", req.URL.Path,
		"status", resp.StatusCode,
		"body", string(body),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, body, &RemoteRequestError{
			Service:    c.service,
			Method:     req.Method,
			Endpoint:   req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return resp.StatusCode, body, nil
}

// decode unmarshals a response body into target.
func decode(body []byte, target any) error {
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
