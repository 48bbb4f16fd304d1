package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/intelliquiz/iqclient/api"
	"github.com/intelliquiz/iqclient/auth"
	"github.com/intelliquiz/iqclient/cache/memory"
	"github.com/intelliquiz/iqclient/httpx"
)

type env struct {
	store   *auth.Store
	nav     *auth.Tracker
	gateway string
	hc      *http.Client
}

func token(t *testing.T, exp time.Time) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice", "exp": exp.Unix()}).SignedString([]byte("web-test-secret"))
	require.NoError(t, err)
	return raw
}

// backend fakes the IntelliQuiz API. Logins for "teacher" get ROLE_TEACHER,
// everything else ROLE_STUDENT.
func backend(t *testing.T) func(a *httpx.App) {
	return func(a *httpx.App) {
		a.POST("/auth/login", func(c httpx.Context) error {
			var body map[string]string
			if err := c.Bind(&body); err != nil {
				return err
			}
			if body["password"] != "pw" {
				return c.JSON(http.StatusUnauthorized, api.Message{Message: "Invalid username or password"})
			}
			role := auth.RoleStudent
			if body["username"] == "teacher" {
				role = auth.RoleTeacher
			}
			return c.JSON(http.StatusOK, map[string]any{
				"token": token(t, time.Now().Add(time.Hour)), "refreshToken": "r", "id": 7,
				"username": body["username"], "email": "x@example.com", "roles": []string{role},
			})
		})
		a.POST("/auth/register", func(c httpx.Context) error {
			return c.JSON(http.StatusOK, api.Message{Message: "User registered successfully!"})
		})
		a.POST("/auth/logout", func(c httpx.Context) error {
			return c.JSON(http.StatusOK, api.Message{Message: "User logged out successfully."})
		})
		a.GET("/analytics/student/:id", func(c httpx.Context) error {
			return c.JSON(http.StatusOK, api.StudentAnalytics{UserID: 7, AverageScore: 80, Points: 50})
		})
		a.GET("/quiz/attempts/:id", func(c httpx.Context) error {
			return c.JSON(http.StatusOK, []api.Attempt{{ID: 1, Topic: "AI", Score: 80}})
		})
		a.GET("/teacher/dashboard", func(c httpx.Context) error {
			return c.JSON(http.StatusOK, map[string]any{"message": "Welcome Teacher!"})
		})
		a.GET("/resources/list", func(c httpx.Context) error {
			return c.JSON(http.StatusOK, []api.Resource{{ID: 3, FileName: "a.pdf"}})
		})
		a.POST("/resources/upload", func(c httpx.Context) error {
			if _, err := c.FormFile("file"); err != nil {
				return c.JSON(http.StatusBadRequest, api.Message{Message: "missing file"})
			}
			return c.JSON(http.StatusOK, api.Message{Message: "File uploaded successfully"})
		})
		a.DELETE("/resources/:id", func(c httpx.Context) error {
			return c.JSON(http.StatusOK, api.Message{Message: "Resource deleted successfully"})
		})
		a.GET("/quiz/generate", func(c httpx.Context) error {
			return c.JSON(http.StatusOK, api.Quiz{Topic: c.QueryParam("topic"), Difficulty: c.QueryParam("difficulty")})
		})
		a.POST("/quiz/submit", func(c httpx.Context) error {
			return c.JSON(http.StatusOK, api.Result{ScorePercentage: 100, NextLevel: "hard"})
		})
		a.GET("/analytics/leaderboard", func(c httpx.Context) error {
			if c.QueryParam("limit") == "99" {
				return c.NoContent(http.StatusUnauthorized)
			}
			return c.JSON(http.StatusOK, []api.LeaderboardEntry{{Username: "alice", Points: 50}})
		})
	}
}

func newEnv(t *testing.T) env {
	t.Helper()
	be := httpx.NewServer()
	be.RegisterRoutes(backend(t))
	beTS := httpx.NewTestServer(be.Handler())
	t.Cleanup(beTS.Close)

	nav := auth.NewTracker("/")
	store := auth.NewStore(memory.NewStore(), nav)
	require.NoError(t, store.Hydrate(context.Background()))
	client := api.New(httpx.NewClient(httpx.WithBaseURL(beTS.BaseURL()), httpx.WithSession(store)), store)
	gw := New(client, auth.NewGuard(store))

	srv := httpx.NewServer()
	srv.RegisterRoutes(gw.Register)
	ts := httpx.NewTestServer(srv.Handler())
	t.Cleanup(ts.Close)

	hc := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	return env{store: store, nav: nav, gateway: ts.URL, hc: hc}
}

func (e env) do(t *testing.T, method, path string, body io.Reader, contentType string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, e.gateway+path, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := e.hc.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (e env) login(t *testing.T, username string) *http.Response {
	t.Helper()
	form := url.Values{"username": {username}, "password": {"pw"}}
	resp, _ := e.do(t, http.MethodPost, "/login", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	return resp
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	e := newEnv(t)

	resp, _ := e.do(t, http.MethodGet, "/quiz", nil, "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login?from=%2Fquiz", resp.Header.Get("Location"))

	resp, body := e.do(t, http.MethodGet, "/login?from=%2Fquiz", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view loginView
	require.NoError(t, json.Unmarshal(body, &view))
	require.Equal(t, "/quiz", view.From)
	require.False(t, view.Authenticated)
}

func TestLoginRedirectsToRoleHome(t *testing.T) {
	e := newEnv(t)

	resp := e.login(t, "teacher")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, auth.TeacherHome, resp.Header.Get("Location"))

	resp, body := e.do(t, http.MethodGet, auth.TeacherHome, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "Welcome Teacher!")
	require.Contains(t, string(body), "a.pdf")

	resp, _ = e.do(t, http.MethodGet, "/dashboard", nil, "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, auth.TeacherHome, resp.Header.Get("Location"))
}

func TestLoginReturnsToRequestedPage(t *testing.T) {
	e := newEnv(t)
	form := url.Values{"username": {"alice"}, "password": {"pw"}, "from": {"/leaderboard"}}
	resp, _ := e.do(t, http.MethodPost, "/login", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/leaderboard", resp.Header.Get("Location"))

	form.Set("from", "//evil.example.com")
	resp, _ = e.do(t, http.MethodPost, "/login", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, auth.StudentHome, resp.Header.Get("Location"))
}

func TestLoginFailure(t *testing.T) {
	e := newEnv(t)
	form := url.Values{"username": {"alice"}, "password": {"nope"}}
	resp, _ := e.do(t, http.MethodPost, "/login", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Zero(t, e.nav.Redirects())

	resp, _ = e.do(t, http.MethodPost, "/login", strings.NewReader(url.Values{"username": {"alice"}}.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoleMismatchRedirectsHome(t *testing.T) {
	e := newEnv(t)
	e.login(t, "alice")

	resp, _ := e.do(t, http.MethodGet, auth.TeacherHome, nil, "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, auth.StudentHome, resp.Header.Get("Location"))

	resp, body := e.do(t, http.MethodGet, auth.StudentHome, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `"attempts"`)
}

func TestExpiredSessionRedirectsWithFlag(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.store.Save(context.Background(), auth.SaveInput{
		Token: token(t, time.Now().Add(-time.Minute)),
		Roles: []string{auth.RoleStudent},
	}))

	resp, _ := e.do(t, http.MethodGet, "/leaderboard", nil, "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, auth.LoginPath, loc.Path)
	require.Equal(t, "1", loc.Query().Get("expired"))
	require.False(t, e.store.Current().IsAuthenticated)
}

func TestRejectedMidRequestRedirectsToLogin(t *testing.T) {
	e := newEnv(t)
	e.login(t, "alice")

	resp, _ := e.do(t, http.MethodGet, "/leaderboard?limit=99", nil, "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, auth.LoginPath, resp.Header.Get("Location"))
	require.False(t, e.store.Current().IsAuthenticated)
	require.Equal(t, 1, e.nav.Redirects())
}

func TestQuizFlow(t *testing.T) {
	e := newEnv(t)
	e.login(t, "alice")

	resp, body := e.do(t, http.MethodGet, "/quiz?topic=AI", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var quiz api.Quiz
	require.NoError(t, json.Unmarshal(body, &quiz))
	require.Equal(t, "AI", quiz.Topic)
	require.Equal(t, api.DefaultDifficulty, quiz.Difficulty)

	resp, _ = e.do(t, http.MethodPost, "/quiz/submit", strings.NewReader(`{"answers":[]}`), "application/json")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = e.do(t, http.MethodPost, "/quiz/submit", strings.NewReader(`{"answers":[{"isCorrect":true}],"topic":"AI"}`), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res api.Result
	require.NoError(t, json.Unmarshal(body, &res))
	require.Equal(t, "hard", res.NextLevel)

	resp, _ = e.do(t, http.MethodGet, "/leaderboard?limit=x", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func multipartBody(t *testing.T, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "notes.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.WriteField("topic", "AI"))
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestResources(t *testing.T) {
	e := newEnv(t)
	e.login(t, "teacher")

	body, ct := multipartBody(t, "%PDF-1.4\nhello")
	resp, _ := e.do(t, http.MethodPost, "/resources", body, ct)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body, ct = multipartBody(t, "just text")
	resp, _ = e.do(t, http.MethodPost, "/resources", body, ct)
	require.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

	resp, data := e.do(t, http.MethodGet, "/resources", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(data), "a.pdf")

	resp, _ = e.do(t, http.MethodDelete, "/resources/3", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.do(t, http.MethodDelete, "/resources/abc", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterAndLogout(t *testing.T) {
	e := newEnv(t)

	resp, _ := e.do(t, http.MethodPost, "/register", strings.NewReader(`{"username":"bob","email":"b@example.com","password":"pw"}`), "application/json")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = e.do(t, http.MethodPost, "/register", strings.NewReader(`{"username":"bob"}`), "application/json")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	e.login(t, "alice")
	require.True(t, e.store.Current().IsAuthenticated)

	resp, _ = e.do(t, http.MethodPost, "/logout", nil, "")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, auth.LoginPath, resp.Header.Get("Location"))
	require.False(t, e.store.Current().IsAuthenticated)
}

func TestLogoutFromLoginView(t *testing.T) {
	badLogin := func(t *testing.T, e env) {
		form := url.Values{"username": {"alice"}, "password": {"wrong"}}
		resp, _ := e.do(t, http.MethodPost, "/login", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	tests := []struct {
		name   string
		before func(t *testing.T, e env)
	}{
		{"after opening the login view", func(t *testing.T, e env) {
			resp, _ := e.do(t, http.MethodGet, "/login", nil, "")
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}},
		{"after a rejected login", badLogin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			e.login(t, "alice")
			tt.before(t, e)
			require.Equal(t, auth.LoginPath, e.nav.Location())
			require.True(t, e.store.Current().IsAuthenticated)

			resp, _ := e.do(t, http.MethodPost, "/logout", nil, "")
			require.Equal(t, http.StatusSeeOther, resp.StatusCode)
			require.Equal(t, auth.LoginPath, resp.Header.Get("Location"))
			require.False(t, e.store.Current().IsAuthenticated)
			require.Empty(t, e.store.Token(context.Background()))
		})
	}
}
