// Package client implements the collection client: an HTTP client for
// the books API that keeps the last fetched collection in memory and
// derives read-only views from it without further network calls.
//
// The client is an explicit owned state object: callers construct one
// and pass it around, there is no package-level instance.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/triill/shelf/data"
)

// Client holds the local copy of the collection. The list is kept
// sorted by title at all times; mutations reconcile it in place so the
// UI never needs a full refetch.
type Client struct {
	baseURL string
	http    *http.Client

	mu      sync.Mutex
	books   []data.Book
	loading bool
}

// New creates a collection client for the API at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          25,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
			Timeout: 30 * time.Second,
		},
	}
}

// APIError carries the server's error message for a failed request, so
// the caller can surface it and offer a manual retry. Requests are never
// retried automatically.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// do issues a single request and decodes the response into dst when dst
// is non-nil. Error responses are decoded into an APIError.
func (c *Client) do(ctx context.Context, method, path string, body, dst interface{}) error {
	var reader io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(js)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if dst != nil {
		return json.NewDecoder(resp.Body).Decode(dst)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}
	var env struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && len(env.Error) > 0 {
		var message string
		if json.Unmarshal(env.Error, &message) == nil {
			apiErr.Message = message
		} else {
			// Validation errors arrive as a field map; keep it verbatim.
			apiErr.Message = string(env.Error)
		}
	}
	return apiErr
}
