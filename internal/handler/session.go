package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chefhut/storefront/internal/dto"
	"github.com/chefhut/storefront/internal/middleware"
	"github.com/chefhut/storefront/internal/model"
)

type SessionHandler struct {
	roles *middleware.Roles
}

func NewSessionHandler(roles *middleware.Roles) *SessionHandler {
	return &SessionHandler{roles: roles}
}

// Current reports who is signed in and with which role.
func (h *SessionHandler) Current(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess == nil {
		c.JSON(http.StatusOK, dto.SessionResponse{Role: model.RoleUser})
		return
	}

	resp := dto.SessionResponse{
		User: &dto.SessionUser{
			UID:         sess.UID,
			Email:       sess.Email,
			DisplayName: sess.DisplayName,
			PhotoURL:    sess.PhotoURL,
		},
		Role: model.RoleUser,
	}
	if st := h.roles.Load(c); !st.Loading {
		resp.Role = st.Role
	}
	if p, ok := middleware.GetProfile(c); ok {
		resp.Status = string(p.Status)
	}
	c.JSON(http.StatusOK, resp)
}
