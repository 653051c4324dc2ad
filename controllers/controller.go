package controller

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskboard/events"
	"taskboard/models"
	"taskboard/utils"
)

var errBadBody = utils.Invalid("detail", "Request body must be a JSON object.", utils.CodeInvalid)

// Base carries what every resource controller needs.
type Base struct {
	DB     *gorm.DB
	Logger *logrus.Entry
	Events events.Publisher
}

func newBase(db *gorm.DB, logger *logrus.Entry, pub events.Publisher) Base {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return Base{DB: db, Logger: logger, Events: pub}
}

// teamOf resolves the owning team of an entity, turning a missing entity
// into a 404 reported under field.
func (b Base) teamOf(db *gorm.DB, kind models.Kind, id uint, field, message string) (uint, error) {
	teamID, err := models.TeamOf(db, kind, id)
	if isNotFound(err) {
		return 0, utils.NotFound(field, message)
	}
	return teamID, err
}

// publish tells the team's clients about a change. Failing to publish never
// fails the request.
func (b Base) publish(c *fiber.Ctx, resource, action string, id, teamID uint) {
	if b.Events == nil {
		return
	}
	e := events.New(resource, action, id, teamID)
	if err := b.Events.Publish(c.UserContext(), e); err != nil {
		b.Logger.WithError(err).WithField("event", e.Type).Warn("Failed to publish event")
	}
}

// parsePatch decodes the body as a JSON object.
func parsePatch(c *fiber.Ctx) (utils.Patch, error) {
	var p utils.Patch
	if err := json.Unmarshal(c.Body(), &p); err != nil || p == nil {
		return nil, errBadBody
	}
	return p, nil
}

// checkLength enforces the column size of a text field.
func checkLength(field, label, value string, max int) error {
	if len([]rune(value)) > max {
		return utils.Invalid(field, label+" cannot be longer than "+strconv.Itoa(max)+" characters.", utils.CodeMaxLength)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
