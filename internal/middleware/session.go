package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chefhut/storefront/internal/service"
	"github.com/chefhut/storefront/internal/session"
)

const (
	keySession   = "session"
	keyAuthState = "authState"
	keyProfile   = "profile"
)

type SessionConfig struct {
	CookieName string
	Secure     bool
}

// Sessions loads the session named by the cookie and writes the cookie back
// on sign-in and sign-out.
type Sessions struct {
	store *session.Store
	codec *session.CookieCodec
	auth  *service.AuthService
	cfg   SessionConfig
	log   *slog.Logger
}

func NewSessions(store *session.Store, codec *session.CookieCodec, auth *service.AuthService, cfg SessionConfig, log *slog.Logger) *Sessions {
	return &Sessions{store: store, codec: codec, auth: auth, cfg: cfg, log: log}
}

// Load resolves the auth state of the request: anonymous when there is no
// usable cookie, loading when the session store cannot be reached.
func (s *Sessions) Load() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(keyAuthState, AuthAnonymous)

		raw, err := c.Cookie(s.cfg.CookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}
		sid, err := s.codec.Decode(raw)
		if err != nil {
			s.ClearCookie(c)
			c.Next()
			return
		}

		ctx := c.Request.Context()
		sess, err := s.store.Get(ctx, sid)
		switch {
		case errors.Is(err, session.ErrNotFound):
			s.ClearCookie(c)
			c.Next()
			return
		case err != nil:
			s.log.Error("load session", "error", err)
			c.Set(keyAuthState, AuthLoading)
			c.Next()
			return
		}

		if s.auth != nil {
			if err := s.auth.EnsureFresh(ctx, sess); err != nil {
				s.ClearCookie(c)
				c.Next()
				return
			}
		}

		c.Set(keySession, sess)
		c.Set(keyAuthState, AuthSignedIn)
		c.Request = c.Request.WithContext(session.WithSession(ctx, sess))
		c.Next()
	}
}

func (s *Sessions) SetCookie(c *gin.Context, sess *session.Session) error {
	value, err := s.codec.Encode(sess.ID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.CookieName, value, int(s.codec.TTL().Seconds()), "/", "", s.cfg.Secure, true)
	return nil
}

func (s *Sessions) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.cfg.CookieName, "", -1, "/", "", s.cfg.Secure, true)
}

// Store exposes the session store to handlers that queue notices.
func (s *Sessions) Store() *session.Store { return s.store }

func GetSession(c *gin.Context) *session.Session {
	v, _ := c.Get(keySession)
	sess, _ := v.(*session.Session)
	return sess
}

func GetAuthState(c *gin.Context) AuthState {
	v, ok := c.Get(keyAuthState)
	if !ok {
		return AuthAnonymous
	}
	st, _ := v.(AuthState)
	return st
}

// GetProfile returns the profile resolved earlier in the chain, if any.
func GetProfile(c *gin.Context) (service.Profile, bool) {
	v, ok := c.Get(keyProfile)
	if !ok {
		return service.Profile{}, false
	}
	p, ok := v.(service.Profile)
	return p, ok
}
