package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"taskboard/models"
	"taskboard/utils"
)

const (
	HeaderAuthUser  = "Auth-User"
	HeaderAuthToken = "Auth-Token"

	// UserKey is the locals key holding the authenticated *models.User.
	UserKey = "user"
)

// Authenticated resolves the Auth-User/Auth-Token pair into the acting user
// and stores it in the request locals.
func Authenticated(db *gorm.DB) fiber.Handler {
	return authenticate(db, false)
}

// AuthenticatedUpgrade is Authenticated for websocket upgrades, where browsers
// cannot set headers; the credentials may come as auth_user/auth_token query
// parameters instead.
func AuthenticatedUpgrade(db *gorm.DB) fiber.Handler {
	return authenticate(db, true)
}

func authenticate(db *gorm.DB, allowQuery bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := c.Get(HeaderAuthUser)
		token := c.Get(HeaderAuthToken)
		if allowQuery {
			if username == "" {
				username = c.Query("auth_user")
			}
			if token == "" {
				token = c.Query("auth_token")
			}
		}

		user, err := Authenticate(db, username, token)
		if err != nil {
			return utils.SendError(c, err)
		}

		c.Locals(UserKey, user)
		return c.Next()
	}
}

// Authenticate looks the user up and checks token against the stored hash.
func Authenticate(db *gorm.DB, username, token string) (*models.User, error) {
	if username == "" || token == "" {
		return nil, utils.ErrAuthentication
	}

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrAuthentication
		}
		return nil, err
	}

	if !utils.CompareSecret(user.TokenHash, token) {
		return nil, utils.ErrAuthentication
	}
	return &user, nil
}

// CurrentUser returns the user stored by Authenticated, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(UserKey).(*models.User)
	return user
}

// AdminOnly rejects members before any request validation takes place.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin {
			return utils.SendError(c, utils.ErrAuthorization)
		}
		return c.Next()
	}
}

// Authorize allows a mutation only for an admin of the entity's team.
// Lack of admin rights and a foreign team are indistinguishable.
func Authorize(user *models.User, teamID uint) error {
	if user == nil || !user.IsAdmin || user.TeamID != teamID {
		return utils.ErrAuthorization
	}
	return nil
}

// AuthorizeRead allows any member of the entity's team.
func AuthorizeRead(user *models.User, teamID uint) error {
	if user == nil || user.TeamID != teamID {
		return utils.ErrAuthorization
	}
	return nil
}
