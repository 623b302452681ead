package identity

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		msg  string
		want error
	}{
		{"INVALID_PASSWORD", ErrInvalidCredentials},
		{"EMAIL_NOT_FOUND", ErrInvalidCredentials},
		{"INVALID_LOGIN_CREDENTIALS", ErrInvalidCredentials},
		{"USER_DISABLED: The user account has been disabled", ErrAccountDisabled},
		{"EMAIL_EXISTS", ErrEmailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := classify(&googleapi.Error{Code: 400, Message: tt.msg})
			assert.ErrorIs(t, err, tt.want)
		})
	}

	other := classify(errors.New("dial tcp: timeout"))
	assert.NotErrorIs(t, other, ErrInvalidCredentials)
	assert.ErrorContains(t, other, "identity provider")
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(42 * time.Minute).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	assert.True(t, exp.Equal(TokenExpiry(token, 3600)))

	fallback := TokenExpiry("not-a-jwt", 120)
	assert.WithinDuration(t, time.Now().Add(2*time.Minute), fallback, 5*time.Second)

	assert.WithinDuration(t, time.Now().Add(time.Hour), TokenExpiry("not-a-jwt", 0), 5*time.Second)
}
