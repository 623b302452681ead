package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chefhut/storefront/internal/dialog"
	"github.com/chefhut/storefront/internal/dto"
	"github.com/chefhut/storefront/internal/identity"
	"github.com/chefhut/storefront/internal/middleware"
	"github.com/chefhut/storefront/internal/service"
)

type AuthHandler struct {
	auth     *service.AuthService
	sessions *middleware.Sessions
	render   *Renderer
	log      *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, sessions *middleware.Sessions, render *Renderer, log *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, render: render, log: log}
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	redirect := safeRedirect(c.Query("redirect"))
	if middleware.GetSession(c) != nil {
		c.Redirect(http.StatusFound, landing(redirect))
		return
	}
	h.render.HTML(c, http.StatusOK, "login.html", "Login", gin.H{
		"Redirect": redirect,
		"Form":     dto.LoginForm{},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	bindErr := c.ShouldBind(&form)
	errs := form.Validate(bindErr)
	redirect := safeRedirect(form.Redirect)
	page := gin.H{"Redirect": redirect, "Form": form, "Errors": errs}
	if errs.Any() {
		h.render.HTML(c, http.StatusUnprocessableEntity, "login.html", "Login", page)
		return
	}

	sess, err := h.auth.SignIn(c.Request.Context(), form)
	if err != nil {
		status := http.StatusUnauthorized
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			page["Error"] = "Invalid email or password"
		case errors.Is(err, identity.ErrAccountDisabled):
			page["Error"] = "This account has been disabled"
		default:
			h.log.Error("sign in", "error", err)
			status = http.StatusBadGateway
			page["Error"] = service.MsgGeneric
		}
		h.render.HTML(c, status, "login.html", "Login", page)
		return
	}

	if err := h.sessions.SetCookie(c, sess); err != nil {
		h.render.Fail(c, err, "/login")
		return
	}
	seeOther(c, landing(redirect))
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	redirect := safeRedirect(c.Query("redirect"))
	if middleware.GetSession(c) != nil {
		c.Redirect(http.StatusFound, landing(redirect))
		return
	}
	h.render.HTML(c, http.StatusOK, "register.html", "Register", gin.H{
		"Redirect": redirect,
		"Form":     dto.RegisterForm{},
	})
}

// Register validates the form, including the password confirmation, before
// any account is created.
func (h *AuthHandler) Register(c *gin.Context) {
	var form dto.RegisterForm
	bindErr := c.ShouldBind(&form)
	errs := form.Validate(bindErr)
	redirect := safeRedirect(form.Redirect)
	shown := form
	shown.Password, shown.ConfirmPassword = "", ""
	page := gin.H{"Redirect": redirect, "Form": shown, "Errors": errs}
	if errs.Any() {
		h.render.HTML(c, http.StatusUnprocessableEntity, "register.html", "Register", page)
		return
	}

	sess, err := h.auth.Register(c.Request.Context(), form)
	if err != nil {
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			errs["ConfirmPassword"] = dto.MsgPasswordMismatch
		case errors.Is(err, identity.ErrEmailTaken):
			errs["Email"] = "This email is already registered"
		default:
			h.log.Error("register", "error", err)
			status = http.StatusBadGateway
			page["Error"] = service.UserMessage(err, "")
		}
		h.render.HTML(c, status, "register.html", "Register", page)
		return
	}

	if err := h.sessions.SetCookie(c, sess); err != nil {
		h.render.Fail(c, err, "/register")
		return
	}
	h.render.push(c.Request.Context(), sess, dialog.Success("Welcome", "Your account has been created."))
	seeOther(c, landing(redirect))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if sess := middleware.GetSession(c); sess != nil {
		if err := h.auth.SignOut(c.Request.Context(), sess); err != nil {
			h.log.Warn("sign out", "error", err)
		}
	}
	h.sessions.ClearCookie(c)
	seeOther(c, "/")
}

func landing(redirect string) string {
	if redirect == "" {
		return "/"
	}
	return redirect
}
