package httpstages

import (
	"fmt"
	"io"
	"net/http"
)

// RequestOptions are the keyword parameters of a Fetcher callable. Non-empty
// values are sent as request headers.
type RequestOptions struct {
	Accept    string
	UserAgent string `kw:"user_agent"`
}

// Fetcher returns a callable that performs an HTTP GET to the URL it receives
// and returns the response body. If client is nil, http.DefaultClient is used;
// pass a client with a Timeout for production use. Register the callable to use
// it as a pipeline stage; header options bind through metadata or a config
// `with` map.
func Fetcher(client *http.Client) func(url string, opts RequestOptions) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	return func(url string, opts RequestOptions) ([]byte, error) {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("fetch: new request: %w", err)
		}
		if opts.Accept != "" {
			req.Header.Set("Accept", opts.Accept)
		}
		if opts.UserAgent != "" {
			req.Header.Set("User-Agent", opts.UserAgent)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch %q: %w", url, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("fetch %q: status %d", url, resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("fetch %q: read body: %w", url, err)
		}
		return body, nil
	}
}
