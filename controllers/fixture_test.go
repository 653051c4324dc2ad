package controller_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"taskboard/events"
	"taskboard/models"
	"taskboard/testutil"
)

type actor struct {
	username string
	token    string
}

// fixture is team A with admin alice and member bob, plus team B with its
// own admin carol and board.
type fixture struct {
	db  *gorm.DB
	app *fiber.App
	hub *events.Hub

	team      models.Team
	otherTeam models.Team

	alice actor
	bob   actor
	carol actor

	otherBoard models.Board
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	hub := events.NewHub()

	f := &fixture{
		db:        db,
		hub:       hub,
		app:       testutil.NewApp(t, db, hub),
		team:      testutil.CreateTeam(t, db, "A"),
		otherTeam: testutil.CreateTeam(t, db, "B"),
	}

	_, token := testutil.CreateUser(t, db, f.team.ID, "alice", true)
	f.alice = actor{"alice", token}
	_, token = testutil.CreateUser(t, db, f.team.ID, "bob", false)
	f.bob = actor{"bob", token}
	_, token = testutil.CreateUser(t, db, f.otherTeam.ID, "carol", true)
	f.carol = actor{"carol", token}

	f.otherBoard = testutil.CreateBoard(t, db, f.otherTeam.ID, "Theirs")
	return f
}

func (f *fixture) do(t *testing.T, as actor, method, target string, body any) (int, map[string]any) {
	t.Helper()
	return testutil.Request(t, f.app, method, target, body, as.username, as.token)
}

func (f *fixture) board(t *testing.T) models.Board {
	t.Helper()
	return testutil.CreateBoard(t, f.db, f.team.ID, "Ours")
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func idOf(v uint) float64 { return float64(v) }
