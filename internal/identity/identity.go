// Package identity wraps the identity provider (Firebase Authentication).
//
// Account administration goes through the Admin SDK; password sign-in and
// token refresh go through the Identity Toolkit API with the project's web key.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/auth"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already in use")
	ErrAccountDisabled    = errors.New("account disabled")
)

// Account is a signed-in identity with a fresh ID token.
type Account struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	IDToken     string
	ExpiresAt   time.Time
}

type Credentials struct {
	IDToken   string
	ExpiresAt time.Time
}

type SignUp struct {
	Email       string
	Password    string
	DisplayName string
	PhotoURL    string
}

type Provider interface {
	CreateAccount(ctx context.Context, req SignUp) (*Account, error)
	SignIn(ctx context.Context, email, password string) (*Account, error)
	SignOut(ctx context.Context, uid string) error
	UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error
	Refresh(ctx context.Context, uid string) (*Credentials, error)
}

type Options struct {
	ProjectID       string
	CredentialsFile string
	APIKey          string
}

type firebaseProvider struct {
	auth    *auth.Client
	toolkit *identitytoolkit.Service
}

func NewFirebase(ctx context.Context, opts Options) (Provider, error) {
	var fbCfg *firebase.Config
	if opts.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: opts.ProjectID}
	}
	app, err := firebase.NewApp(ctx, fbCfg, option.WithCredentialsFile(opts.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("init identity toolkit: %w", err)
	}
	return &firebaseProvider{auth: authClient, toolkit: toolkit}, nil
}

func (p *firebaseProvider) CreateAccount(ctx context.Context, req SignUp) (*Account, error) {
	params := (&auth.UserToCreate{}).
		Email(req.Email).
		Password(req.Password).
		DisplayName(req.DisplayName)
	if req.PhotoURL != "" {
		params = params.PhotoURL(req.PhotoURL)
	}
	if _, err := p.auth.CreateUser(ctx, params); err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return p.SignIn(ctx, req.Email, req.Password)
}

func (p *firebaseProvider) SignIn(ctx context.Context, email, password string) (*Account, error) {
	resp, err := p.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}
	return &Account{
		UID:         resp.LocalId,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		PhotoURL:    resp.PhotoUrl,
		IDToken:     resp.IdToken,
		ExpiresAt:   TokenExpiry(resp.IdToken, resp.ExpiresIn),
	}, nil
}

// SignOut revokes the user's refresh tokens at the provider.
func (p *firebaseProvider) SignOut(ctx context.Context, uid string) error {
	if err := p.auth.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

func (p *firebaseProvider) UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error {
	params := (&auth.UserToUpdate{}).DisplayName(displayName)
	if photoURL != "" {
		params = params.PhotoURL(photoURL)
	}
	if _, err := p.auth.UpdateUser(ctx, uid, params); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// Refresh mints a custom token for uid and exchanges it for a new ID token.
func (p *firebaseProvider) Refresh(ctx context.Context, uid string) (*Credentials, error) {
	custom, err := p.auth.CustomToken(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("mint custom token: %w", err)
	}
	resp, err := p.toolkit.Relyingparty.VerifyCustomToken(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyCustomTokenRequest{
		Token:             custom,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("exchange custom token: %w", classify(err))
	}
	return &Credentials{IDToken: resp.IdToken, ExpiresAt: TokenExpiry(resp.IdToken, resp.ExpiresIn)}, nil
}

func classify(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return fmt.Errorf("identity provider: %w", err)
	}
	msg := gerr.Message
	switch {
	case strings.HasPrefix(msg, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(msg, "INVALID_PASSWORD"),
		strings.HasPrefix(msg, "INVALID_LOGIN_CREDENTIALS"),
		strings.HasPrefix(msg, "INVALID_EMAIL"):
		return ErrInvalidCredentials
	case strings.HasPrefix(msg, "USER_DISABLED"):
		return ErrAccountDisabled
	case strings.HasPrefix(msg, "EMAIL_EXISTS"):
		return ErrEmailTaken
	}
	return fmt.Errorf("identity provider: %w", err)
}

// TokenExpiry reads the exp claim of an ID token without verifying it, since
// the token comes straight from the provider. expiresIn (seconds) is the fallback.
func TokenExpiry(idToken string, expiresIn int64) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}
	if expiresIn > 0 {
		return time.Now().Add(time.Duration(expiresIn) * time.Second)
	}
	return time.Now().Add(time.Hour)
}
