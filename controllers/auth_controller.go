package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskboard/middleware"
	"taskboard/models"
	"taskboard/utils"
)

type RegisterRequest struct {
	Username             string `json:"username" validate:"required,min=3,max=35,alphanum"`
	Password             string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	InviteToken          string `json:"invite_token"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login. Token is only ever shown
// here; the server keeps its hash.
type AuthResponse struct {
	Msg      string `json:"msg"`
	Username string `json:"username"`
	Token    string `json:"token"`
	IsAdmin  bool   `json:"is_admin"`
	TeamID   uint   `json:"team_id"`
}

var (
	errBadCredentials = utils.Invalid("detail", "Invalid username or password.", utils.CodeInvalid)
	errUsernameTaken  = utils.Invalid("username", "Username already exists.", utils.CodeUnique)
	errBadInvite      = utils.Invalid("invite_token", "Invite token is invalid or has expired.", utils.CodeInvalid)

	errPasswordTooLong = utils.Invalid("password", "Password cannot be longer than 72 bytes.", utils.CodeMaxLength)
)

type AuthController struct {
	DB           *gorm.DB
	Logger       *logrus.Entry
	InviteSecret string
}

func NewAuthController(db *gorm.DB, logger *logrus.Entry, inviteSecret string) *AuthController {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &AuthController{DB: db, Logger: logger, InviteSecret: inviteSecret}
}

// Register creates a user. Without an invite the user founds a new team and
// becomes its admin; with one they join the inviting team as a member.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errBadBody)
	}
	req.Username = strings.TrimSpace(req.Username)
	req.InviteToken = strings.TrimSpace(req.InviteToken)

	if err := utils.ValidateStruct(req); err != nil {
		return utils.SendError(c, err)
	}
	// The tag counts characters; bcrypt counts bytes.
	if len(req.Password) > utils.MaxSecretBytes {
		return utils.SendError(c, errPasswordTooLong)
	}

	var inviteTeam uint
	if req.InviteToken != "" {
		claims, err := utils.ParseInviteToken(req.InviteToken, ac.InviteSecret)
		if err != nil {
			return utils.SendError(c, errBadInvite)
		}
		inviteTeam = claims.TeamID
	}

	passwordHash, err := utils.HashSecret(req.Password)
	if err != nil {
		return utils.SendError(c, err)
	}
	token := utils.NewToken()
	tokenHash, err := utils.HashSecret(token)
	if err != nil {
		return utils.SendError(c, err)
	}

	user := models.User{
		Username:  req.Username,
		Password:  passwordHash,
		TokenHash: tokenHash,
	}
	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("username = ?", req.Username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return errUsernameTaken
		}

		if inviteTeam != 0 {
			var team models.Team
			if err := tx.First(&team, inviteTeam).Error; err != nil {
				if isNotFound(err) {
					return errBadInvite
				}
				return err
			}
			user.TeamID = team.ID
		} else {
			team := models.Team{Name: req.Username + "'s team"}
			if err := tx.Create(&team).Error; err != nil {
				return err
			}
			user.TeamID = team.ID
			user.IsAdmin = true
		}

		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errUsernameTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return utils.SendError(c, err)
	}

	utils.LogEvent("user_registered", map[string]interface{}{
		"username": user.Username,
		"team_id":  user.TeamID,
		"is_admin": user.IsAdmin,
		"invited":  inviteTeam != 0,
	})
	return c.Status(fiber.StatusCreated).JSON(AuthResponse{
		Msg:      "Registration successful.",
		Username: user.Username,
		Token:    token,
		IsAdmin:  user.IsAdmin,
		TeamID:   user.TeamID,
	})
}

// Login checks the password and issues a new token, invalidating the old one.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errBadBody)
	}
	req.Username = strings.TrimSpace(req.Username)

	if err := utils.ValidateStruct(req); err != nil {
		return utils.SendError(c, err)
	}

	var user models.User
	if err := ac.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if isNotFound(err) {
			return utils.SendError(c, errBadCredentials)
		}
		return utils.SendError(c, err)
	}
	if !utils.CompareSecret(user.Password, req.Password) {
		ac.Logger.WithFields(logrus.Fields{
			"username": req.Username,
			"ip":       c.IP(),
		}).Warn("Failed login attempt")
		return utils.SendError(c, errBadCredentials)
	}

	token := utils.NewToken()
	tokenHash, err := utils.HashSecret(token)
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := ac.DB.Model(&user).UpdateColumn("token_hash", tokenHash).Error; err != nil {
		return utils.SendError(c, err)
	}

	ac.Logger.WithField("username", user.Username).Info("User logged in")
	return c.JSON(AuthResponse{
		Msg:      "Login successful.",
		Username: user.Username,
		Token:    token,
		IsAdmin:  user.IsAdmin,
		TeamID:   user.TeamID,
	})
}

// Logout revokes the caller's token.
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if err := ac.DB.Model(&models.User{}).
		Where("username = ?", user.Username).
		UpdateColumn("token_hash", "").Error; err != nil {
		return utils.SendError(c, err)
	}
	return c.JSON(utils.SuccessResponse("Logout successful.", nil))
}

// GetCurrentUser describes the authenticated user.
func (ac *AuthController) GetCurrentUser(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(fiber.Map{
		"username": user.Username,
		"is_admin": user.IsAdmin,
		"team_id":  user.TeamID,
	})
}
