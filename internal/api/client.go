// Package api is a client for the issue server's web services: issue search,
// changelog, issue mutations, user and tag lookup, and raw sources.
package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client handles communication with the issue server's web API.
type Client struct {
	BaseURL *url.URL     // Server root; always ends with a slash
	Client  *http.Client // Underlying HTTP client
	auth    AuthFunc
}

// NewClient returns a client for the server at baseURL. Every request is
// bounded by timeout in addition to its context.
func NewClient(baseURL *url.URL, auth AuthFunc, timeout time.Duration, skipVerify bool) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: skipVerify,
		},
	}
	if auth == nil {
		auth = Anonymous
	}
	return &Client{
		BaseURL: withTrailingSlash(baseURL),
		Client:  &http.Client{Transport: tr, Timeout: timeout},
		auth:    auth,
	}
}

// ParseServerURL validates a configured server URL.
func ParseServerURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q must use http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server url %q has no host", raw)
	}
	return u, nil
}

func withTrailingSlash(u *url.URL) *url.URL {
	c := *u
	if !strings.HasSuffix(c.Path, "/") {
		c.Path += "/"
	}
	return &c
}

// get performs a GET with params in the query string and decodes the JSON
// response into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	body, _, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decode(path, body, out)
}

// post performs a form POST and decodes the JSON response into out when out
// is not nil.
func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	body, _, err := c.doRequest(ctx, http.MethodPost, path, form)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	return decode(path, body, out)
}

func decode(path string, body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", strings.SplitN(path, "?", 2)[0], err)
	}
	return nil
}

// doRequest performs an authenticated HTTP request and returns the response
// body and status. Form values, when present, are sent url-encoded. A status
// of 400 or above is returned as an *APIError.
func (c *Client) doRequest(ctx context.Context, method, path string, form url.Values) (response []byte, statusCode int, err error) {
	var bodyReader io.Reader
	if form != nil {
		bodyReader = strings.NewReader(form.Encode())
	}

	relURL, err := url.Parse(path)
	if err != nil {
		return nil, 0, fmt.Errorf("parse path: %w", err)
	}
	fullURL := c.BaseURL.ResolveReference(relURL).String()

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	c.auth(req)

	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	start := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", method, relURL.Path, err)
	}
	defer resp.Body.Close() // nolint:errcheck

	slog.Debug("api request",
		"method", method,
		"path", relURL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return respBody, resp.StatusCode, newAPIError(resp.StatusCode, respBody)
	}
	return respBody, resp.StatusCode, nil
}

// APIError is a non-successful response from the server.
type APIError struct {
	Status   int
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("server returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, strings.Join(e.Messages, "; "))
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Errors []struct {
			Msg string `json:"msg"`
		} `json:"errors"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, e := range payload.Errors {
			if e.Msg != "" {
				apiErr.Messages = append(apiErr.Messages, e.Msg)
			}
		}
	}
	return apiErr
}

// StatusCode returns the HTTP status carried by err, or 0 when err did not
// come from a server response.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
