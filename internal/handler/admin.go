package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chefhut/storefront/internal/dialog"
	"github.com/chefhut/storefront/internal/repository"
	"github.com/chefhut/storefront/internal/service"
	"github.com/chefhut/storefront/internal/session"
)

type AdminHandler struct {
	admin    *service.AdminService
	sessions *session.Store
	render   *Renderer
	log      *slog.Logger
}

func NewAdminHandler(admin *service.AdminService, sessions *session.Store, render *Renderer, log *slog.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, sessions: sessions, render: render, log: log}
}

func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	data := gin.H{"Users": users}
	status := http.StatusOK
	if err != nil {
		h.log.Error("list users", "error", err)
		status = http.StatusBadGateway
		data["Error"] = service.UserMessage(err, "Could not load users.")
	}
	h.render.Dashboard(c, status, "manage_users.html", "Manage Users", data)
}

// MarkFraud restricts an account after confirmation. Admin accounts are refused.
func (h *AdminHandler) MarkFraud(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	user, err := h.admin.FindUser(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			h.render.NotFound(c)
			return
		}
		h.render.Fail(c, err, "/dashboard/manage-users")
		return
	}

	confirm := dialog.NewConfirm("Mark "+user.DisplayName+" as fraud?",
		user.Email+" will no longer be able to order or add meals.",
		"/dashboard/manage-users/"+id+"/fraud").
		Labels("Yes, mark as fraud", "").
		CancelTo("/dashboard/manage-users")
	if c.Request.Method == http.MethodGet {
		h.render.Confirm(c, confirm)
		return
	}
	if !resolve(c, confirm).IsConfirmed() {
		seeOther(c, confirm.CancelURL)
		return
	}

	switch user, err := h.admin.MarkFraud(ctx, id); {
	case err == nil:
		h.sessions.Touch(ctx, user.Email)
		h.render.Flash(c, dialog.Success("User restricted", user.Email+" is now marked as fraud."))
	case errors.Is(err, service.ErrCannotRestrictAdmin):
		h.render.Flash(c, dialog.Warning("Not allowed", "Admins cannot be marked as fraud."))
	default:
		h.log.Error("mark fraud", "user_id", id, "error", err)
		h.render.Flash(c, dialog.Error("User not updated", service.UserMessage(err, "")))
	}
	seeOther(c, "/dashboard/manage-users")
}

func (h *AdminHandler) Requests(c *gin.Context) {
	reqs, err := h.admin.ListRequests(c.Request.Context())
	data := gin.H{"Requests": reqs}
	status := http.StatusOK
	if err != nil {
		h.log.Error("list role requests", "error", err)
		status = http.StatusBadGateway
		data["Error"] = service.UserMessage(err, "Could not load requests.")
	}
	h.render.Dashboard(c, status, "manage_requests.html", "Manage Requests", data)
}

// ResolveRequest approves or rejects a role request after confirmation.
func (h *AdminHandler) ResolveRequest(c *gin.Context) {
	id := c.Param("id")
	action := repository.RequestAction(c.Param("action"))
	title := "Approve this request?"
	switch action {
	case repository.ActionApprove:
	case repository.ActionReject:
		title = "Reject this request?"
	default:
		h.render.NotFound(c)
		return
	}

	confirm := dialog.NewConfirm(title, "The user's role changes as soon as the request is approved.",
		"/dashboard/manage-request/"+id+"/"+string(action)).
		Labels("Yes, "+string(action), "").
		CancelTo("/dashboard/manage-request")
	if c.Request.Method == http.MethodGet {
		h.render.Confirm(c, confirm)
		return
	}
	if !resolve(c, confirm).IsConfirmed() {
		seeOther(c, confirm.CancelURL)
		return
	}

	ctx := c.Request.Context()
	req, err := h.admin.ResolveRequest(ctx, id, action)
	if err != nil {
		h.log.Error("resolve role request", "request_id", id, "action", action, "error", err)
		h.render.Flash(c, dialog.Error("Request not updated", service.UserMessage(err, "")))
		seeOther(c, "/dashboard/manage-request")
		return
	}
	if req != nil {
		h.sessions.Touch(ctx, req.UserEmail)
	}
	text := "The request was rejected."
	if action == repository.ActionApprove {
		text = "The request was approved."
	}
	h.render.Flash(c, dialog.Success("Request updated", text))
	seeOther(c, "/dashboard/manage-request")
}

func (h *AdminHandler) Statistics(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	data := gin.H{"Stats": stats}
	status := http.StatusOK
	if err != nil {
		h.log.Error("load platform stats", "error", err)
		status = http.StatusBadGateway
		data["Error"] = service.UserMessage(err, "Could not load statistics.")
	}
	h.render.Dashboard(c, status, "statistics.html", "Platform Statistics", data)
}
