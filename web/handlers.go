package web

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/intelliquiz/iqclient/api"
	"github.com/intelliquiz/iqclient/auth"
	"github.com/intelliquiz/iqclient/httpx"
)

type loginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	From     string `json:"from" form:"from" query:"from"`
}

type loginView struct {
	Expired       bool   `json:"expired"`
	From          string `json:"from,omitempty"`
	Authenticated bool   `json:"authenticated"`
}

func (g *Gateway) loginView(c httpx.Context) error {
	g.guard.Store().Navigator().Visit(auth.LoginPath)
	return c.JSON(httpx.StatusOK, loginView{
		Expired:       c.QueryParam("expired") == "1",
		From:          c.QueryParam("from"),
		Authenticated: g.guard.Store().Current().IsAuthenticated,
	})
}

func (g *Gateway) login(c httpx.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return httpx.HTTPError(httpx.StatusBadRequest, "invalid login form")
	}
	if form.Username == "" || form.Password == "" {
		return httpx.HTTPError(httpx.StatusBadRequest, "username and password are required")
	}

	out, err := g.api.Login(c.Request().Context(), form.Username, form.Password)
	if err != nil {
		if httpx.IsStatus(err, httpx.StatusUnauthorized) || httpx.IsStatus(err, httpx.StatusForbidden) {
			return httpx.HTTPError(httpx.StatusUnauthorized, "invalid username or password")
		}
		return upstream(err)
	}

	target, ok := auth.HomeFor(out.Roles)
	if !ok {
		target = "/dashboard"
	}
	if safeReturn(form.From) {
		target = form.From
	}
	return c.Redirect(httpx.StatusSeeOther, target)
}

func (g *Gateway) register(c httpx.Context) error {
	var req api.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return httpx.HTTPError(httpx.StatusBadRequest, "invalid registration")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return httpx.HTTPError(httpx.StatusBadRequest, "username, email and password are required")
	}
	msg, err := g.api.Register(c.Request().Context(), req)
	if err != nil {
		return upstream(err)
	}
	return c.JSON(httpx.StatusCreated, msg)
}

func (g *Gateway) logout(c httpx.Context) error {
	if err := g.api.Logout(c.Request().Context()); err != nil {
		g.logger.Warn("logout", zap.Error(err))
	}
	return c.Redirect(httpx.StatusSeeOther, auth.LoginPath)
}

func (g *Gateway) dashboard(c httpx.Context) error {
	home, ok := auth.HomeFor(g.guard.Store().Current().Roles)
	if !ok {
		return c.Redirect(httpx.StatusFound, auth.LoginPath)
	}
	return c.Redirect(httpx.StatusFound, home)
}

func (g *Gateway) studentDashboard(c httpx.Context) error {
	ctx := c.Request().Context()
	stats, err := g.api.StudentAnalytics(ctx, "")
	if err != nil {
		return upstream(err)
	}
	attempts, err := g.api.Attempts(ctx, "")
	if err != nil {
		return upstream(err)
	}
	return c.JSON(httpx.StatusOK, map[string]any{
		"user":      g.guard.Store().Current().Username,
		"analytics": stats,
		"attempts":  attempts,
	})
}

func (g *Gateway) teacherDashboard(c httpx.Context) error {
	ctx := c.Request().Context()
	data, err := g.api.TeacherDashboard(ctx)
	if err != nil {
		return upstream(err)
	}
	resources, err := g.api.ListResources(ctx)
	if err != nil {
		return upstream(err)
	}
	return c.JSON(httpx.StatusOK, map[string]any{"dashboard": data, "resources": resources})
}

func (g *Gateway) adminDashboard(c httpx.Context) error {
	ctx := c.Request().Context()
	data, err := g.api.AdminDashboard(ctx)
	if err != nil {
		return upstream(err)
	}
	resources, err := g.api.AllResources(ctx)
	if err != nil {
		return upstream(err)
	}
	return c.JSON(httpx.StatusOK, map[string]any{"dashboard": data, "resources": resources})
}

func (g *Gateway) generateQuiz(c httpx.Context) error {
	quiz, err := g.api.GenerateQuiz(c.Request().Context(), c.QueryParam("topic"), c.QueryParam("difficulty"))
	if err != nil {
		return upstream(err)
	}
	return c.JSON(httpx.StatusOK, quiz)
}

func (g *Gateway) submitQuiz(c httpx.Context) error {
	var sub api.Submission
	if err := c.Bind(&sub); err != nil {
		return httpx.HTTPError(httpx.StatusBadRequest, "invalid submission")
	}
	res, err := g.api.SubmitQuiz(c.Request().Context(), sub)
	if err != nil {
		return upstream(err)
	}
	return c.JSON(httpx.StatusOK, res)
}

func (g *Gateway) leaderboard(c httpx.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return httpx.HTTPError(httpx.StatusBadRequest, "limit must be a positive number")
		}
		limit = n
	}
	entries, err := g.api.Leaderboard(c.Request().Context(), limit)
	if err != nil {
		return upstream(err)
	}
	return c.JSON(httpx.StatusOK, entries)
}

func (g *Gateway) listResources(c httpx.Context) error {
	list, err := g.api.ListResources(c.Request().Context())
	if err != nil {
		return upstream(err)
	}
	return c.JSON(httpx.StatusOK, list)
}

func (g *Gateway) uploadResource(c httpx.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return httpx.HTTPError(httpx.StatusBadRequest, "file is required")
	}
	file, err := fh.Open()
	if err != nil {
		return httpx.HTTPError(httpx.StatusBadRequest, "unreadable file")
	}
	defer file.Close()

	msg, err := g.api.UploadResource(c.Request().Context(), api.Upload{
		FileName: fh.Filename,
		Content:  file,
		Topic:    c.FormValue("topic"),
		Progress: func(p int) {
			g.logger.Debug("upload progress", zap.String("file", fh.Filename), zap.Int("percent", p))
		},
	})
	if err != nil {
		return upstream(err)
	}
	return c.JSON(httpx.StatusCreated, msg)
}

func (g *Gateway) deleteResource(c httpx.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return httpx.HTTPError(http.StatusBadRequest, "invalid resource id")
	}
	msg, err := g.api.DeleteResource(c.Request().Context(), id)
	if err != nil {
		return upstream(err)
	}
	return c.JSON(httpx.StatusOK, msg)
}
