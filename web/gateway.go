// Package web is the local gateway: the IntelliQuiz views served as JSON
// behind the route guard. The gateway holds one process-wide session.
package web

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/intelliquiz/iqclient/api"
	"github.com/intelliquiz/iqclient/auth"
	"github.com/intelliquiz/iqclient/httpx"
)

type Gateway struct {
	api    *api.Client
	guard  *auth.Guard
	logger *zap.Logger
}

type Option func(*Gateway)

func WithLogger(logger *zap.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func New(client *api.Client, guard *auth.Guard, opts ...Option) *Gateway {
	g := &Gateway{api: client, guard: guard, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Register installs the gateway routes on a.
func (g *Gateway) Register(a *httpx.App) {
	anyRole := httpx.GuardMiddleware(g.guard)
	guarded := func(roles ...string) httpx.MiddlewareFunc {
		return httpx.GuardMiddleware(g.guard, roles...)
	}

	a.GET(auth.LoginPath, g.loginView)
	a.POST(auth.LoginPath, g.login)
	a.POST("/register", g.register)
	a.POST("/logout", g.logout)

	a.GET("/dashboard", g.dashboard, anyRole)
	a.GET(auth.StudentHome, g.studentDashboard, guarded(auth.RoleStudent))
	a.GET(auth.TeacherHome, g.teacherDashboard, guarded(auth.RoleTeacher))
	a.GET(auth.AdminHome, g.adminDashboard, guarded(auth.RoleAdmin))

	a.GET("/quiz", g.generateQuiz, anyRole)
	a.POST("/quiz/submit", g.submitQuiz, anyRole)
	a.GET("/leaderboard", g.leaderboard, anyRole)

	resources := httpx.NewRouter(a, "/resources")
	resources.GET("", g.listResources, guarded(auth.RoleStudent, auth.RoleTeacher))
	resources.POST("", g.uploadResource, guarded(auth.RoleStudent, auth.RoleTeacher))
	resources.DELETE("/:id", g.deleteResource, guarded(auth.RoleStudent, auth.RoleTeacher, auth.RoleAdmin))
}

// upstream maps an API failure onto a gateway response.
func upstream(err error) error {
	var se *httpx.StatusError
	switch {
	case errors.As(err, &se):
		if se.StatusCode >= http.StatusInternalServerError {
			return httpx.HTTPErrorf(httpx.StatusBadGateway, "intelliquiz api: http %d", se.StatusCode)
		}
		return httpx.HTTPError(se.StatusCode, upstreamMessage(se))
	case errors.Is(err, api.ErrNotPDF):
		return httpx.HTTPError(httpx.StatusUnsupportedMedia, "only PDF files are allowed")
	case errors.Is(err, api.ErrNoAnswers), errors.Is(err, api.ErrNoUser):
		return httpx.HTTPError(httpx.StatusBadRequest, err.Error())
	default:
		return httpx.HTTPErrorf(httpx.StatusBadGateway, "intelliquiz api: %v", err)
	}
}

func upstreamMessage(se *httpx.StatusError) string {
	if se.Body == "" {
		return http.StatusText(se.StatusCode)
	}
	return se.Body
}

// safeReturn reports whether from is a local path fit for a post-login redirect.
func safeReturn(from string) bool {
	return strings.HasPrefix(from, "/") && !strings.HasPrefix(from, "//") && from != auth.LoginPath
}
