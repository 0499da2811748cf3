package sources

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/samvad-hq/scholarship-directory/pkg/httpclient"
)

type mockResponse struct {
	body       []byte
	statusCode int
}

func (r mockResponse) Body() []byte    { return r.body }
func (r mockResponse) StatusCode() int { return r.statusCode }

type stubReply struct {
	status int
	body   string
	err    error
}

// mockHTTPClient answers by exact URL and records request headers.
type mockHTTPClient struct {
	t       *testing.T
	replies map[string]stubReply
	expect  map[string]string

	mu   sync.Mutex
	urls []string
}

func (m *mockHTTPClient) Get(_ context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	m.mu.Lock()
	m.urls = append(m.urls, url)
	m.mu.Unlock()

	for key, want := range m.expect {
		if got := headers[key]; got != want {
			m.t.Fatalf("expected header %s=%q, got %q", key, want, got)
		}
	}
	reply, ok := m.replies[url]
	if !ok {
		m.t.Fatalf("unexpected url %q", url)
	}
	if reply.err != nil {
		return nil, reply.err
	}
	status := reply.status
	if status == 0 {
		status = 200
	}
	return mockResponse{body: []byte(reply.body), statusCode: status}, nil
}

var errTransport = errors.New("connection refused")
