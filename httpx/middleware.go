package httpx

import (
	"github.com/intelliquiz/iqclient/auth"
)

// GuardMiddleware admits requests through guard. A handler error that left the
// session logged out (the API rejected the token mid-request) is answered with
// a redirect to the login view instead of the error.
func GuardMiddleware(guard *auth.Guard, required ...string) MiddlewareFunc {
	if guard == nil {
		return func(next HandlerFunc) HandlerFunc {
			return func(c Context) error {
				return HTTPError(StatusServiceUnavailable, "guard missing")
			}
		}
	}
	roles := append([]string(nil), required...)
	return func(next HandlerFunc) HandlerFunc {
		return func(c Context) error {
			req := c.Request()
			decision := guard.Decide(req.Context(), req.URL.Path, roles...)
			switch decision.Outcome {
			case auth.Render:
			case auth.Suspend:
				c.Response().Header().Set("Retry-After", "1")
				return HTTPError(StatusServiceUnavailable, "session loading")
			default:
				return c.Redirect(StatusFound, decision.URL())
			}

			err := next(c)
			if err != nil && !c.Response().Committed && !guard.Store().Current().IsAuthenticated {
				return c.Redirect(StatusFound, auth.LoginPath)
			}
			return err
		}
	}
}
