package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/service"
)

// Roles resolves the signed-in user's profile once per request.
type Roles struct {
	resolver *service.RoleResolver
	log      *slog.Logger
}

func NewRoles(resolver *service.RoleResolver, log *slog.Logger) *Roles {
	return &Roles{resolver: resolver, log: log}
}

// Load returns the role state for the request, caching the profile on the
// gin context. A lookup failure leaves the role loading.
func (r *Roles) Load(c *gin.Context) RoleState {
	if p, ok := GetProfile(c); ok {
		return RoleState{Role: p.Role}
	}
	sess := GetSession(c)
	if sess == nil {
		return RoleState{Role: model.RoleUser}
	}
	p, err := r.resolver.Resolve(c.Request.Context(), sess.Email)
	if err != nil {
		r.log.Warn("resolve role", "email", sess.Email, "error", err)
		return RoleState{Loading: true}
	}
	c.Set(keyProfile, p)
	return RoleState{Role: p.Role}
}

// Profile preloads the profile for pages that show it without requiring a role.
func (r *Roles) Profile() gin.HandlerFunc {
	return func(c *gin.Context) {
		r.Load(c)
		c.Next()
	}
}
