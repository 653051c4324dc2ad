package controller_test

import (
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/models"
	"taskboard/testutil"
	"taskboard/utils"
)

func register(username, invite string) map[string]any {
	body := map[string]any{
		"username":              username,
		"password":              "correct horse",
		"password_confirmation": "correct horse",
	}
	if invite != "" {
		body["invite_token"] = invite
	}
	return body
}

func TestRegisterFoundsTeam(t *testing.T) {
	f := newFixture(t)

	status, body := testutil.Request(t, f.app, "POST", "/register/", register("dave", ""), "", "")
	require.Equal(t, fiber.StatusCreated, status, "%v", body)
	assert.Equal(t, "dave", body["username"])
	assert.Equal(t, true, body["is_admin"])
	assert.NotEmpty(t, body["token"])

	teamID := uint(body["team_id"].(float64))
	assert.NotEqual(t, f.team.ID, teamID)
	assert.NotEqual(t, f.otherTeam.ID, teamID)

	// The returned token is immediately usable.
	status, me := testutil.Request(t, f.app, "GET", "/me/", nil, "dave", body["token"].(string))
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, map[string]any{"username": "dave", "is_admin": true, "team_id": idOf(teamID)}, me)

	var stored models.User
	require.NoError(t, f.db.Where("username = ?", "dave").First(&stored).Error)
	assert.NotEqual(t, body["token"], stored.TokenHash)
	assert.NotEqual(t, "correct horse", stored.Password)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	mismatch := register("erin", "")
	mismatch["password_confirmation"] = "something else"
	short := register("erin", "")
	short["password"], short["password_confirmation"] = "short", "short"
	wide := register("erin", "")
	wide["password"] = strings.Repeat("é", 60)
	wide["password_confirmation"] = wide["password"]

	tests := []struct {
		name  string
		body  any
		field string
		code  string
	}{
		{"taken", register("alice", ""), "username", utils.CodeUnique},
		{"blank username", register("", ""), "username", utils.CodeBlank},
		{"bad characters", register("e r!n", ""), "username", utils.CodeInvalid},
		{"mismatch", mismatch, "password_confirmation", utils.CodeMismatch},
		{"short password", short, "password", utils.CodeMinLength},
		{"password over 72 bytes", wide, "password", utils.CodeMaxLength},
		{"bad invite", register("erin", "not-a-token"), "invite_token", utils.CodeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := testutil.Request(t, f.app, "POST", "/register/", tt.body, "", "")
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, tt.code, testutil.ErrorCode(body, tt.field), "%v", body)
		})
	}
	assert.Equal(t, int64(3), count(t, f.db, &models.User{}))
	assert.Equal(t, int64(2), count(t, f.db, &models.Team{}))
}

func TestRegisterWithInviteJoinsTeam(t *testing.T) {
	f := newFixture(t)

	status, _ := f.do(t, f.bob, "GET", "/teams/invite/", nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := f.do(t, f.alice, "GET", "/teams/invite/", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["expires_at"])
	invite := body["invite_token"].(string)

	status, body = testutil.Request(t, f.app, "POST", "/register/", register("frank", invite), "", "")
	require.Equal(t, fiber.StatusCreated, status, "%v", body)
	assert.Equal(t, false, body["is_admin"])
	assert.Equal(t, idOf(f.team.ID), body["team_id"])

	status, body = f.do(t, f.alice, "GET", "/users/", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["users"], 3)
}

func TestRegisterWithInviteOfAnotherSecret(t *testing.T) {
	f := newFixture(t)
	forged, err := utils.GenerateInviteToken(f.team.ID, "not-the-secret", time.Hour)
	require.NoError(t, err)

	status, body := testutil.Request(t, f.app, "POST", "/register/", register("mallory", forged), "", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, utils.CodeInvalid, testutil.ErrorCode(body, "invite_token"))
}

func TestLoginRotatesToken(t *testing.T) {
	f := newFixture(t)

	status, body := testutil.Request(t, f.app, "POST", "/login/", map[string]any{
		"username": "bob",
		"password": "password",
	}, "", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Login successful.", body["msg"])
	assert.Equal(t, false, body["is_admin"])
	fresh := body["token"].(string)
	assert.NotEqual(t, f.bob.token, fresh)

	status, _ = f.do(t, f.bob, "GET", "/me/", nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = testutil.Request(t, f.app, "GET", "/me/", nil, "bob", fresh)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)

	for _, creds := range []map[string]any{
		{"username": "bob", "password": "wrong password"},
		{"username": "nobody", "password": "password"},
	} {
		status, body := testutil.Request(t, f.app, "POST", "/login/", creds, "", "")
		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, map[string]any{"string": "Invalid username or password.", "code": "invalid"}, body["detail"])
	}

	status, body := testutil.Request(t, f.app, "POST", "/login/", map[string]any{"username": "bob"}, "", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, utils.CodeBlank, testutil.ErrorCode(body, "password"))

	// A failed login leaves the current token alone.
	status, _ = f.do(t, f.bob, "GET", "/me/", nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, f.alice, "POST", "/me/logout/", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Logout successful.", body["msg"])

	status, body = f.do(t, f.alice, "GET", "/me/", nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, utils.CodeNotAuthenticated, testutil.ErrorCode(body, "detail"))
}
