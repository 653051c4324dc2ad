// Package testutil holds fixtures shared by the package tests: an in-memory
// database with the schema applied, seeded entities and a ready Fiber app.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskboard/config"
	"taskboard/events"
	"taskboard/middleware"
	"taskboard/models"
	"taskboard/routes"
	"taskboard/utils"
)

const InviteSecret = "test-invite-secret"

// NewDB opens a private in-memory sqlite database and migrates it.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.HashCost = bcrypt.MinCost

	db, err := config.Open(config.Config{DBDriver: "sqlite", SQLitePath: "file::memory:"})
	require.NoError(t, err)
	require.NoError(t, config.MigrateDB(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateTeam(t *testing.T, db *gorm.DB, name string) models.Team {
	t.Helper()
	team := models.Team{Name: name}
	require.NoError(t, db.Create(&team).Error)
	return team
}

// CreateUser stores a user with password "password" and returns the login
// token that authenticates them.
func CreateUser(t *testing.T, db *gorm.DB, teamID uint, username string, isAdmin bool) (models.User, string) {
	t.Helper()
	password, err := utils.HashSecret("password")
	require.NoError(t, err)
	token := utils.NewToken()
	tokenHash, err := utils.HashSecret(token)
	require.NoError(t, err)

	user := models.User{
		Username:  username,
		Password:  password,
		TokenHash: tokenHash,
		IsAdmin:   isAdmin,
		TeamID:    teamID,
	}
	require.NoError(t, db.Create(&user).Error)
	return user, token
}

// CreateBoard stores a board with the default columns.
func CreateBoard(t *testing.T, db *gorm.DB, teamID uint, name string) models.Board {
	t.Helper()
	board, err := models.CreateBoard(db, teamID, name)
	require.NoError(t, err)
	return *board
}

func CreateColumn(t *testing.T, db *gorm.DB, boardID uint, name string, order int) models.Column {
	t.Helper()
	column := models.Column{Name: name, Order: order, BoardID: boardID}
	require.NoError(t, db.Create(&column).Error)
	return column
}

// CreateTask stores a task at the given order, bypassing the front insert.
func CreateTask(t *testing.T, db *gorm.DB, columnID uint, title string, order int) models.Task {
	t.Helper()
	task := models.Task{Title: title, Order: order, ColumnID: columnID}
	require.NoError(t, db.Create(&task).Error)
	return task
}

func CreateSubtask(t *testing.T, db *gorm.DB, taskID uint, title string, order int) models.Subtask {
	t.Helper()
	subtask := models.Subtask{Title: title, Order: order, TaskID: taskID}
	require.NoError(t, db.Create(&subtask).Error)
	return subtask
}

// NewApp builds the full application over db with in-memory limiter storage.
func NewApp(t *testing.T, db *gorm.DB, hub *events.Hub) *fiber.App {
	t.Helper()
	if hub == nil {
		hub = events.NewHub()
	}
	return routes.NewApp(routes.Dependencies{
		DB:             db,
		Hub:            hub,
		InviteSecret:   InviteSecret,
		LoginRateLimit: 100,
	})
}

// Request performs a request against app as username/token (both may be
// empty) and decodes the JSON answer.
func Request(t *testing.T, app *fiber.App, method, target string, body any, username, token string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if username != "" {
		req.Header.Set(middleware.HeaderAuthUser, username)
	}
	if token != "" {
		req.Header.Set(middleware.HeaderAuthToken, token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 && resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

// ErrorCode pulls body[field].code out of an error response.
func ErrorCode(body map[string]any, field string) string {
	detail, _ := body[field].(map[string]any)
	code, _ := detail["code"].(string)
	return code
}
