package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chefhut/storefront/internal/dto"
	"github.com/chefhut/storefront/internal/identity"
	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/repository"
	"github.com/chefhut/storefront/internal/session"
)

// refreshWindow is how close to expiry an ID token gets refreshed.
const refreshWindow = 5 * time.Minute

type AuthService struct {
	provider identity.Provider
	users    repository.UserRepository
	sessions *session.Store
	log      *slog.Logger
}

func NewAuthService(provider identity.Provider, users repository.UserRepository, sessions *session.Store, log *slog.Logger) *AuthService {
	return &AuthService{provider: provider, users: users, sessions: sessions, log: log}
}

// Register creates the identity, signs it in and saves the user record.
// Mismatched passwords fail before the provider is contacted.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterForm) (*session.Session, error) {
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	acct, err := s.provider.CreateAccount(ctx, identity.SignUp{
		Email:       strings.TrimSpace(req.Email),
		Password:    req.Password,
		DisplayName: strings.TrimSpace(req.Name),
		PhotoURL:    strings.TrimSpace(req.PhotoURL),
	})
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	sess, err := s.sessions.Create(ctx, identityOf(acct))
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:       acct.Email,
		DisplayName: strings.TrimSpace(req.Name),
		PhotoURL:    strings.TrimSpace(req.PhotoURL),
		Address:     strings.TrimSpace(req.Address),
		Role:        model.RoleUser,
		Status:      model.StatusActive,
	}
	if err := s.users.Create(session.WithSession(ctx, sess), user); err != nil {
		if delErr := s.sessions.Delete(ctx, sess); delErr != nil {
			s.log.Error("drop session after failed registration", "error", delErr)
		}
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.log.Info("user registered", "email", acct.Email)
	return sess, nil
}

func (s *AuthService) SignIn(ctx context.Context, req dto.LoginForm) (*session.Session, error) {
	acct, err := s.provider.SignIn(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return s.sessions.Create(ctx, identityOf(acct))
}

// SignOut revokes the provider tokens and drops the session. A revoke failure
// is logged; the local session is removed regardless.
func (s *AuthService) SignOut(ctx context.Context, sess *session.Session) error {
	if err := s.provider.SignOut(ctx, sess.UID); err != nil {
		s.log.Warn("revoke tokens", "uid", sess.UID, "error", err)
	}
	return s.sessions.Delete(ctx, sess)
}

func (s *AuthService) UpdateProfile(ctx context.Context, sess *session.Session, displayName, photoURL string) error {
	displayName = strings.TrimSpace(displayName)
	photoURL = strings.TrimSpace(photoURL)
	if err := s.provider.UpdateProfile(ctx, sess.UID, displayName, photoURL); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	upd := repository.UserUpdate{DisplayName: &displayName}
	if photoURL != "" {
		upd.PhotoURL = &photoURL
	}
	if err := s.users.Update(session.WithSession(ctx, sess), sess.Email, upd); err != nil {
		return err
	}
	return s.sessions.UpdateProfile(ctx, sess, displayName, photoURL)
}

// EnsureFresh refreshes the ID token when it is about to expire. When the
// refresh fails the session is removed and ErrSessionExpired returned.
func (s *AuthService) EnsureFresh(ctx context.Context, sess *session.Session) error {
	if time.Until(sess.TokenExpiry) > refreshWindow {
		return nil
	}
	creds, err := s.provider.Refresh(ctx, sess.UID)
	if err != nil {
		s.log.Warn("refresh id token", "uid", sess.UID, "error", err)
		if delErr := s.sessions.Delete(ctx, sess); delErr != nil && !errors.Is(delErr, session.ErrNotFound) {
			s.log.Error("drop expired session", "error", delErr)
		}
		return ErrSessionExpired
	}
	sess.IDToken = creds.IDToken
	sess.TokenExpiry = creds.ExpiresAt
	return s.sessions.Update(ctx, sess)
}

func identityOf(acct *identity.Account) session.Identity {
	return session.Identity{
		UID:         acct.UID,
		Email:       acct.Email,
		DisplayName: acct.DisplayName,
		PhotoURL:    acct.PhotoURL,
		IDToken:     acct.IDToken,
		TokenExpiry: acct.ExpiresAt,
	}
}
