package auth

import (
	"net/http"
)

// Handler adapts the guard to net/http middleware. Suspended navigations get
// 503 with Retry-After; redirects answer 302.
func (g *Guard) Handler(required ...string) func(http.Handler) http.Handler {
	if g == nil {
		panic("auth: guard is nil")
	}
	roles := append([]string(nil), required...)
	return func(next http.Handler) http.Handler {
		if next == nil {
			next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := g.Decide(r.Context(), r.URL.Path, roles...)
			switch decision.Outcome {
			case Render:
				next.ServeHTTP(w, r)
			case Suspend:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "session loading", http.StatusServiceUnavailable)
			default:
				http.Redirect(w, r, decision.URL(), http.StatusFound)
			}
		})
	}
}
