package httpx

import (
	"net/http"
	"net/http/httptest"
)

// TestServer wraps httptest.Server so callers don't import net/http/httptest.
type TestServer struct{ *httptest.Server }

func NewTestServer(handler http.Handler) *TestServer {
	return &TestServer{httptest.NewServer(handler)}
}

// NewAppTestServer serves a directly, without the Server middleware stack.
func NewAppTestServer(a *App) *TestServer {
	if a == nil {
		return nil
	}
	return &TestServer{httptest.NewServer(a.e)}
}

func (ts *TestServer) BaseURL() string {
	if ts == nil || ts.Server == nil {
		return ""
	}
	return ts.URL
}
