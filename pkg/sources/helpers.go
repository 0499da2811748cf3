package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samvad-hq/scholarship-directory/pkg/httpclient"
)

// ErrEmptyBody is returned when a source answers 2xx with nothing in it.
var ErrEmptyBody = errors.New("response is empty")

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// fetchBody performs a GET and rejects transport errors, non-2xx statuses and
// blank bodies.
func fetchBody(ctx context.Context, client httpclient.Client, url, label string, headers map[string]string) ([]byte, error) {
	resp, err := client.Get(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", label, err)
	}

	body := resp.Body()
	if !httpclient.IsSuccess(resp) {
		return nil, fmt.Errorf("%s returned status %d body: %s", label, resp.StatusCode(), responseSnippet(body))
	}
	if strings.TrimSpace(string(body)) == "" {
		return nil, fmt.Errorf("%s: %w", label, ErrEmptyBody)
	}
	return body, nil
}

func mergeHeaders(base map[string]string, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
