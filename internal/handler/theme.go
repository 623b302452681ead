package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const themeMaxAge = 365 * 24 * 60 * 60

type ThemeHandler struct {
	render *Renderer
}

func NewThemeHandler(render *Renderer) *ThemeHandler {
	return &ThemeHandler{render: render}
}

// Toggle flips between the dark and light theme and returns to the page the
// form was posted from.
func (h *ThemeHandler) Toggle(c *gin.Context) {
	next := themeLight
	if h.render.Theme(c) == themeLight {
		next = themeDark
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(themeCookie, next, themeMaxAge, "/", "", false, false)
	seeOther(c, landing(safeRedirect(c.PostForm("back"))))
}
