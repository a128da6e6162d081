package pogo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxFeedBytes caps how much of an upstream response is read.
const maxFeedBytes = 32 << 20

// fetchJSON performs one GET against url, requires a 2xx status, parses the
// body as JSON into out and, if validate is non-nil, rejects payloads the
// predicate refuses ("invalid data structure"). Failures are returned, never
// panicked; callers log and substitute a safe default.
func fetchJSON(ctx context.Context, client *http.Client, url string, out any, validate func() bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", url, err)
	}

	if validate != nil && !validate() {
		return fmt.Errorf("GET %s: invalid data structure", url)
	}
	return nil
}

func newFeedClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
