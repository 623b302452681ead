package middleware

import (
	"net/http"
	"net/url"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/chefhut/storefront/internal/model"
)

type AuthState int

const (
	AuthLoading AuthState = iota
	AuthAnonymous
	AuthSignedIn
)

func (a AuthState) String() string {
	switch a {
	case AuthLoading:
		return "loading"
	case AuthAnonymous:
		return "anonymous"
	case AuthSignedIn:
		return "signed-in"
	}
	return "unknown"
}

type RoleState struct {
	Loading bool
	Role    model.Role
}

type Decision int

const (
	Loading Decision = iota
	Authorized
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case Authorized:
		return "authorized"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

func EvaluatePrivate(auth AuthState) Decision {
	switch auth {
	case AuthSignedIn:
		return Authorized
	case AuthAnonymous:
		return Unauthenticated
	default:
		return Loading
	}
}

// EvaluateRole decides access to a page that needs required. A role mismatch
// is Forbidden, never a redirect.
func EvaluateRole(auth AuthState, role RoleState, required model.Role) Decision {
	if d := EvaluatePrivate(auth); d != Authorized {
		return d
	}
	if role.Loading {
		return Loading
	}
	if role.Role != required {
		return Forbidden
	}
	return Authorized
}

// Pages renders the guard outcomes that are not a redirect.
type Pages interface {
	Loading(c *gin.Context)
	Forbidden(c *gin.Context)
}

// LoginURL is the login page that returns to target after sign-in.
func LoginURL(target string) string {
	return "/login?redirect=" + url.QueryEscape(target)
}

// SafeRedirect reports whether target is a same-site path.
func SafeRedirect(target string) bool {
	return len(target) > 0 && target[0] == '/' && (len(target) == 1 || (target[1] != '/' && target[1] != '\\'))
}

// ReturnTarget is where the browser should land after sign-in. Form posts
// cannot be replayed, so they return to the same-site page that sent them,
// or to the parent path.
func ReturnTarget(r *http.Request) string {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return r.URL.RequestURI()
	}
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path != "" && (ref.Host == "" || ref.Host == r.Host) {
		if target := ref.RequestURI(); SafeRedirect(target) {
			return target
		}
	}
	return path.Dir(r.URL.Path)
}

// Private sends anonymous visitors to the login page, remembering where they
// were going.
func Private(pages Pages) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch EvaluatePrivate(GetAuthState(c)) {
		case Authorized:
			c.Next()
		case Unauthenticated:
			c.Redirect(http.StatusFound, LoginURL(ReturnTarget(c.Request)))
			c.Abort()
		default:
			pages.Loading(c)
			c.Abort()
		}
	}
}

// RequireRole admits only sessions whose resolved role is required.
func RequireRole(roles *Roles, required model.Role, pages Pages) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := roles.Load(c)
		switch EvaluateRole(GetAuthState(c), state, required) {
		case Authorized:
			c.Next()
		case Unauthenticated:
			c.Redirect(http.StatusFound, LoginURL(ReturnTarget(c.Request)))
			c.Abort()
		case Forbidden:
			pages.Forbidden(c)
			c.Abort()
		default:
			pages.Loading(c)
			c.Abort()
		}
	}
}
