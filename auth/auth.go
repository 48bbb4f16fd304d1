package auth

import (
	"slices"
	"time"
)

// Role identifiers issued by the IntelliQuiz API.
const (
	RoleStudent = "ROLE_STUDENT"
	RoleTeacher = "ROLE_TEACHER"
	RoleAdmin   = "ROLE_ADMIN"
)

// Navigation targets the guard and the session store redirect to.
const (
	LoginPath   = "/login"
	LogoutPath  = "/logout"
	AdminHome   = "/admin/dashboard"
	TeacherHome = "/teacher/dashboard"
	StudentHome = "/student/dashboard"
)

// Persistent keys of the session. Clear removes every one of them.
const (
	KeyToken        = "token"
	KeyRoles        = "roles"
	KeyUserID       = "userId"
	KeyUsername     = "username"
	KeyEmail        = "email"
	KeyRefreshToken = "refreshToken"
)

var sessionKeys = []string{KeyToken, KeyRoles, KeyUserID, KeyUsername, KeyEmail, KeyRefreshToken}

// Claims is the successfully decoded payload of a bearer credential.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
	Roles     []string
}

// Session is a snapshot of the process-wide authentication state.
//
// IsAuthenticated means a token is held; whether that token is still usable
// is a separate, time-dependent question answered by ValidAt.
type Session struct {
	Token           string
	Roles           []string
	UserID          string
	Username        string
	Email           string
	RefreshToken    string
	IsAuthenticated bool
}

// HasAnyRole reports whether the session holds at least one of roles.
func (s Session) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(s.Roles, r) {
			return true
		}
	}
	return false
}

// SaveInput carries the fields of a login response. Empty strings and a nil
// Roles slice mean "not provided"; an empty non-nil Roles slice is saved.
// UserID may be a string, any integer or float kind, json.Number or a
// fmt.Stringer and is stored in string form.
type SaveInput struct {
	Token        string
	Roles        []string
	UserID       any
	Username     string
	Email        string
	RefreshToken string
}

// Navigator tracks the current navigation location of the client.
type Navigator interface {
	Location() string
	// Visit records a soft, in-app navigation.
	Visit(path string)
	// Redirect performs a hard redirect, discarding in-memory view state.
	Redirect(path string)
}

// HomeFor returns the default view for the highest-priority known role
// (admin, then teacher, then student).
func HomeFor(roles []string) (string, bool) {
	switch {
	case slices.Contains(roles, RoleAdmin):
		return AdminHome, true
	case slices.Contains(roles, RoleTeacher):
		return TeacherHome, true
	case slices.Contains(roles, RoleStudent):
		return StudentHome, true
	default:
		return "", false
	}
}
