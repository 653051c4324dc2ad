package utils

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompareSecret(t *testing.T) {
	HashCost = bcrypt.MinCost

	hash, err := HashSecret("t1")
	require.NoError(t, err)
	assert.True(t, CompareSecret(hash, "t1"))
	assert.False(t, CompareSecret(hash, "t2"))
	assert.False(t, CompareSecret(hash, ""))
	assert.False(t, CompareSecret("", "t1"))
}

func TestNewTokenIsUnique(t *testing.T) {
	assert.NotEqual(t, NewToken(), NewToken())
}

func TestInviteTokenRoundTrip(t *testing.T) {
	token, err := GenerateInviteToken(7, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseInviteToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.TeamID)
}

func TestInviteTokenRejected(t *testing.T) {
	good, err := GenerateInviteToken(7, "secret", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateInviteToken(7, "secret", -time.Minute)
	require.NoError(t, err)
	otherSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &InviteClaims{
		TeamID:           7,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "session"},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]struct {
		token  string
		secret string
	}{
		"wrong secret":  {good, "other"},
		"expired":       {expired, "secret"},
		"wrong subject": {otherSubject, "secret"},
		"garbage":       {"not-a-token", "secret"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseInviteToken(tt.token, tt.secret)
			assert.ErrorIs(t, err, ErrInvalidInvite)
		})
	}
}

func TestSendError(t *testing.T) {
	app := fiber.New()
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return SendError(c, Invalid("title", "Task title cannot be empty.", CodeBlank))
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return SendError(c, NotFound("team_id", "Team not found."))
	})
	app.Get("/denied", func(c *fiber.Ctx) error {
		return SendError(c, ErrAuthorization)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return SendError(c, errors.New("boom"))
	})

	for path, status := range map[string]int{
		"/invalid": fiber.StatusBadRequest,
		"/missing": fiber.StatusNotFound,
		"/denied":  fiber.StatusForbidden,
		"/boom":    fiber.StatusInternalServerError,
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, status, resp.StatusCode, path)
	}
}
