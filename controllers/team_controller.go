package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"taskboard/middleware"
	"taskboard/utils"
)

type TeamController struct {
	Logger    *logrus.Entry
	Secret    string
	InviteTTL time.Duration
}

func NewTeamController(logger *logrus.Entry, secret string, ttl time.Duration) *TeamController {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &TeamController{Logger: logger, Secret: secret, InviteTTL: ttl}
}

// GetInvite issues a token that lets a new user register into the caller's
// team.
func (tc *TeamController) GetInvite(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	token, err := utils.GenerateInviteToken(user.TeamID, tc.Secret, tc.InviteTTL)
	if err != nil {
		return utils.SendError(c, err)
	}

	tc.Logger.WithFields(logrus.Fields{
		"team_id":  user.TeamID,
		"username": user.Username,
	}).Info("Invite token issued")
	return c.JSON(fiber.Map{
		"invite_token": token,
		"expires_at":   time.Now().Add(tc.InviteTTL).UTC().Format(time.RFC3339),
	})
}
