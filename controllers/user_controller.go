package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskboard/events"
	"taskboard/middleware"
	"taskboard/models"
	"taskboard/utils"
)

const resourceUser = "user"

type UserController struct {
	Base
}

func NewUserController(db *gorm.DB, logger *logrus.Entry, pub events.Publisher) *UserController {
	return &UserController{Base: newBase(db, logger, pub)}
}

type userView struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// GetUsers lists the members of the caller's team, admins first.
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var users []models.User
	if err := uc.DB.Where("team_id = ?", user.TeamID).
		Order("is_admin DESC, username ASC").
		Find(&users).Error; err != nil {
		return utils.SendError(c, err)
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{Username: u.Username, IsAdmin: u.IsAdmin})
	}
	return c.JSON(fiber.Map{"users": views})
}

// DeleteUser removes a member from the caller's team. Admins cannot be
// removed this way.
func (uc *UserController) DeleteUser(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	username := strings.TrimSpace(c.Query("username"))
	if username == "" {
		return utils.SendError(c, utils.Invalid("username", "Username cannot be empty.", utils.CodeBlank))
	}

	var target models.User
	if err := uc.DB.Where("username = ?", username).First(&target).Error; err != nil {
		if isNotFound(err) {
			return utils.SendError(c, utils.NotFound("username", "User not found."))
		}
		return utils.SendError(c, err)
	}
	if err := middleware.Authorize(user, target.TeamID); err != nil {
		return utils.SendError(c, err)
	}
	if target.IsAdmin {
		return utils.SendError(c, utils.Forbidden("username", "Admins cannot be deleted from their teams."))
	}

	if err := uc.DB.Delete(&target).Error; err != nil {
		return utils.SendError(c, err)
	}

	utils.LogEvent("member_deleted", map[string]interface{}{
		"username":   target.Username,
		"team_id":    target.TeamID,
		"deleted_by": user.Username,
	})
	uc.publish(c, resourceUser, events.ActionDeleted, 0, target.TeamID)
	return c.JSON(utils.SuccessResponse("Member has been deleted successfully.", fiber.Map{
		"username": target.Username,
	}))
}
