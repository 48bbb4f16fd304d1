package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/intelliquiz/iqclient/httpx"
)

func (c *Client) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	var out []LeaderboardEntry
	if _, err := c.http.Get(ctx, "/analytics/leaderboard", &out, httpx.WithQuery(map[string]string{"limit": strconv.Itoa(limit)})); err != nil {
		return nil, fmt.Errorf("api: leaderboard: %w", err)
	}
	return out, nil
}

// StudentAnalytics returns the analytics of userID, or of the session's user
// when empty.
func (c *Client) StudentAnalytics(ctx context.Context, userID string) (StudentAnalytics, error) {
	id, err := c.userID(userID)
	if err != nil {
		return StudentAnalytics{}, err
	}
	var out StudentAnalytics
	if _, err := c.http.Get(ctx, "/analytics/student/"+url.PathEscape(id), &out); err != nil {
		return StudentAnalytics{}, fmt.Errorf("api: student analytics: %w", err)
	}
	return out, nil
}

func (c *Client) ClassroomLeaderboard(ctx context.Context, classroomID int64) ([]ClassroomEntry, error) {
	var out []ClassroomEntry
	if _, err := c.http.Get(ctx, "/analytics/classroom/"+formatID(classroomID), &out); err != nil {
		return nil, fmt.Errorf("api: classroom leaderboard: %w", err)
	}
	return out, nil
}

func (c *Client) TeacherDashboard(ctx context.Context) (Dashboard, error) {
	return c.dashboard(ctx, "/teacher/dashboard")
}

func (c *Client) AdminDashboard(ctx context.Context) (Dashboard, error) {
	return c.dashboard(ctx, "/admin/dashboard")
}

func (c *Client) dashboard(ctx context.Context, path string) (Dashboard, error) {
	out := Dashboard{}
	if _, err := c.http.Get(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("api: %s: %w", path, err)
	}
	return out, nil
}
