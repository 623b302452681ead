package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chefhut/storefront/internal/apiclient"
	"github.com/chefhut/storefront/internal/dialog"
	"github.com/chefhut/storefront/internal/dto"
	"github.com/chefhut/storefront/internal/middleware"
	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/service"
	"github.com/chefhut/storefront/internal/session"
	"github.com/chefhut/storefront/internal/view"
)

const (
	themeCookie = "theme"
	themeDark   = "dark"
	themeLight  = "light"
)

// Renderer fills in the data every page shares (theme, session, notices,
// dashboard menu) and renders the guard and error views.
type Renderer struct {
	menu     *view.Menu
	sessions *session.Store
	roles    *middleware.Roles
	theme    string
	log      *slog.Logger
}

func NewRenderer(menu *view.Menu, sessions *session.Store, roles *middleware.Roles, defaultTheme string, log *slog.Logger) *Renderer {
	if defaultTheme != themeLight {
		defaultTheme = themeDark
	}
	return &Renderer{menu: menu, sessions: sessions, roles: roles, theme: defaultTheme, log: log}
}

func (r *Renderer) Theme(c *gin.Context) string {
	switch v, _ := c.Cookie(themeCookie); v {
	case themeDark, themeLight:
		return v
	}
	return r.theme
}

func (r *Renderer) HTML(c *gin.Context, status int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["Theme"] = r.Theme(c)
	data["Path"] = c.Request.URL.RequestURI()
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = dto.FieldErrors{}
	}
	profile, ok := middleware.GetProfile(c)
	if !ok {
		profile = service.Profile{Role: model.RoleUser}
	}
	data["Profile"] = profile
	if sess := middleware.GetSession(c); sess != nil {
		data["Session"] = sess
		data["Notices"] = r.sessions.PopNotices(c.Request.Context(), sess)
	}
	c.HTML(status, name, data)
}

// Dashboard renders a page inside the dashboard layout, with the sidebar
// for the user's role.
func (r *Renderer) Dashboard(c *gin.Context, status int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	role := model.RoleUser
	if st := r.roles.Load(c); !st.Loading {
		role = st.Role
	}
	data["Menu"] = r.menu.For(role)
	r.HTML(c, status, name, title, data)
}

func (r *Renderer) Loading(c *gin.Context) {
	c.Header("Refresh", "2")
	r.HTML(c, http.StatusOK, "loading.html", "Loading", nil)
}

func (r *Renderer) Forbidden(c *gin.Context) {
	r.HTML(c, http.StatusForbidden, "forbidden.html", "Forbidden", nil)
}

func (r *Renderer) NotFound(c *gin.Context) {
	r.HTML(c, http.StatusNotFound, "not_found.html", "Not found", nil)
}

// Fail renders the error page for a failed load. Backend errors are a 502.
func (r *Renderer) Fail(c *gin.Context, err error, retry string) {
	status := http.StatusInternalServerError
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		status = http.StatusBadGateway
	}
	r.log.Error("request failed", "path", c.Request.URL.Path, "error", err)
	r.HTML(c, status, "error.html", "Error", gin.H{
		"Message": service.UserMessage(err, ""),
		"Retry":   retry,
	})
}

// Confirm renders an open confirmation dialog.
func (r *Renderer) Confirm(c *gin.Context, d dialog.Confirm) {
	data := gin.H{"Dialog": d}
	if strings.HasPrefix(c.Request.URL.Path, "/dashboard") {
		r.Dashboard(c, http.StatusOK, "confirm.html", d.Title, data)
		return
	}
	r.HTML(c, http.StatusOK, "confirm.html", d.Title, data)
}

// Flash queues n for the next page the current session renders.
func (r *Renderer) Flash(c *gin.Context, n dialog.Notice) {
	if sess := middleware.GetSession(c); sess != nil {
		r.push(c.Request.Context(), sess, n)
	}
}

func (r *Renderer) push(ctx context.Context, sess *session.Session, n dialog.Notice) {
	if err := r.sessions.PushNotice(ctx, sess, n); err != nil {
		r.log.Warn("queue notice", "error", err)
	}
}

// resolve reads the dialog answer posted with the form.
func resolve(c *gin.Context, d dialog.Confirm) dialog.Confirm {
	return d.Resolve(c.PostForm(dialog.Field))
}

// seeOther redirects after a form post.
func seeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// safeRedirect returns target when it stays on this site, otherwise "".
func safeRedirect(target string) string {
	if middleware.SafeRedirect(target) {
		return target
	}
	return ""
}
