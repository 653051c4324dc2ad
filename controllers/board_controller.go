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

const resourceBoard = "board"

type BoardController struct {
	Base
}

func NewBoardController(db *gorm.DB, logger *logrus.Entry, pub events.Publisher) *BoardController {
	return &BoardController{Base: newBase(db, logger, pub)}
}

type boardView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func toBoardViews(boards []models.Board) []boardView {
	views := make([]boardView, 0, len(boards))
	for _, b := range boards {
		views = append(views, boardView{ID: b.ID, Name: b.Name})
	}
	return views
}

// GetBoards lists a team's boards. An admin asking for a team without boards
// gets a freshly provisioned default board and a 201.
func (bc *BoardController) GetBoards(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	teamID, err := utils.ParseID("team_id", c.Query("team_id"), "Team ID")
	if err != nil {
		return utils.SendError(c, err)
	}

	var team models.Team
	if err := bc.DB.First(&team, teamID).Error; err != nil {
		if isNotFound(err) {
			return utils.SendError(c, utils.NotFound("team_id", "Team not found."))
		}
		return utils.SendError(c, err)
	}
	if err := middleware.AuthorizeRead(user, team.ID); err != nil {
		return utils.SendError(c, err)
	}

	var boards []models.Board
	if err := bc.DB.Where("team_id = ?", team.ID).Order("id ASC").Find(&boards).Error; err != nil {
		return utils.SendError(c, err)
	}
	if len(boards) > 0 {
		return c.JSON(fiber.Map{"boards": toBoardViews(boards)})
	}

	if !user.IsAdmin {
		return utils.SendError(c, utils.NotFound("team_id", "Boards not found."))
	}

	boards, created, err := models.ProvisionDefaultBoard(bc.DB, team.ID)
	if err != nil {
		return utils.SendError(c, err)
	}
	if !created {
		return c.JSON(fiber.Map{"boards": toBoardViews(boards)})
	}

	utils.LogEvent("board_provisioned", map[string]interface{}{
		"team_id":  team.ID,
		"board_id": boards[0].ID,
		"username": user.Username,
	})
	bc.publish(c, resourceBoard, events.ActionCreated, boards[0].ID, team.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"boards": toBoardViews(boards)})
}

// CreateBoard adds a board with the default columns to the admin's team.
func (bc *BoardController) CreateBoard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		Name   string `json:"name" validate:"required,max=35"`
		TeamID uint   `json:"team_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.SendError(c, errBadBody)
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.TeamID == 0 {
		input.TeamID = user.TeamID
	}

	if err := middleware.Authorize(user, input.TeamID); err != nil {
		return utils.SendError(c, err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.SendError(c, err)
	}

	board, err := models.CreateBoard(bc.DB, input.TeamID, input.Name)
	if err != nil {
		return utils.SendError(c, err)
	}

	bc.publish(c, resourceBoard, events.ActionCreated, board.ID, board.TeamID)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse("Board creation successful.", fiber.Map{
		"id": board.ID,
	}))
}

// UpdateBoard renames a board.
func (bc *BoardController) UpdateBoard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := utils.ParseID("id", c.Query("id"), "Board ID")
	if err != nil {
		return utils.SendError(c, err)
	}
	teamID, err := bc.teamOf(bc.DB, models.KindBoard, id, "id", "Board not found.")
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := middleware.Authorize(user, teamID); err != nil {
		return utils.SendError(c, err)
	}

	patch, err := parsePatch(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := patch.CheckNotBlank(utils.FieldRule{Key: "name", Field: "name", Message: "Board name cannot be empty."}); err != nil {
		return utils.SendError(c, err)
	}

	if patch.Has("name") {
		name, err := patch.Text("name", "name")
		if err != nil {
			return utils.SendError(c, err)
		}
		name = strings.TrimSpace(name)
		if err := checkLength("name", "Board name", name, 35); err != nil {
			return utils.SendError(c, err)
		}
		if err := bc.DB.Model(&models.Board{}).Where("id = ?", id).Update("name", name).Error; err != nil {
			return utils.SendError(c, err)
		}
	}

	bc.publish(c, resourceBoard, events.ActionUpdated, id, teamID)
	return c.JSON(utils.SuccessResponse("Board update successful.", fiber.Map{"id": id}))
}

// DeleteBoard removes a board with its columns, tasks and subtasks.
func (bc *BoardController) DeleteBoard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := utils.ParseID("id", c.Query("id"), "Board ID")
	if err != nil {
		return utils.SendError(c, err)
	}
	teamID, err := bc.teamOf(bc.DB, models.KindBoard, id, "id", "Board not found.")
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := middleware.Authorize(user, teamID); err != nil {
		return utils.SendError(c, err)
	}

	if err := bc.DB.Delete(&models.Board{}, id).Error; err != nil {
		return utils.SendError(c, err)
	}

	bc.publish(c, resourceBoard, events.ActionDeleted, id, teamID)
	return c.JSON(utils.SuccessResponse("Board deleted successfully.", fiber.Map{"id": id}))
}
