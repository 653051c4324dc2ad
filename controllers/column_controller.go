package controller

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskboard/events"
	"taskboard/middleware"
	"taskboard/models"
	"taskboard/utils"
)

const resourceColumn = "column"

type ColumnController struct {
	Base
}

func NewColumnController(db *gorm.DB, logger *logrus.Entry, pub events.Publisher) *ColumnController {
	return &ColumnController{Base: newBase(db, logger, pub)}
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// GetColumns returns a board's columns with their tasks and subtasks, each
// level sorted by order.
func (cc *ColumnController) GetColumns(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	boardID, err := utils.ParseID("board_id", c.Query("board_id"), "Board ID")
	if err != nil {
		return utils.SendError(c, err)
	}
	teamID, err := cc.teamOf(cc.DB, models.KindBoard, boardID, "board_id", "Board not found.")
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := middleware.AuthorizeRead(user, teamID); err != nil {
		return utils.SendError(c, err)
	}

	var columns []models.Column
	if err := cc.DB.
		Preload("Tasks", byPosition).
		Preload("Tasks.Subtasks", byPosition).
		Where("board_id = ?", boardID).
		Order("position ASC, id ASC").
		Find(&columns).Error; err != nil {
		return utils.SendError(c, err)
	}

	return c.JSON(fiber.Map{"columns": toColumnViews(columns)})
}

// UpdateColumn takes the full list of the column's tasks with their new
// orders, optionally renaming them on the way. Listing a task from another
// column of the board moves it here.
func (cc *ColumnController) UpdateColumn(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := utils.ParseID("id", c.Query("id"), "Column ID")
	if err != nil {
		return utils.SendError(c, err)
	}
	teamID, err := cc.teamOf(cc.DB, models.KindColumn, id, "id", "Column not found.")
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := middleware.Authorize(user, teamID); err != nil {
		return utils.SendError(c, err)
	}

	var items []utils.Patch
	if err := json.Unmarshal(c.Body(), &items); err != nil {
		return utils.SendError(c, utils.Invalid("tasks", "Tasks must be a list.", utils.CodeInvalid))
	}

	updates := make([]models.OrderUpdate, 0, len(items))
	for _, item := range items {
		update, err := parseTaskOrder(item)
		if err != nil {
			return utils.SendError(c, err)
		}
		updates = append(updates, update)
	}

	err = cc.DB.Transaction(func(tx *gorm.DB) error {
		return models.ReplaceOrdering(tx, models.TaskScope(id), updates)
	})
	switch {
	case errors.Is(err, models.ErrNotSibling):
		return utils.SendError(c, utils.Invalid("tasks", "Every task must belong to the column's board.", utils.CodeInvalid))
	case errors.Is(err, models.ErrDuplicateID):
		return utils.SendError(c, utils.Invalid("tasks", "A task cannot be listed more than once.", utils.CodeInvalid))
	case err != nil:
		return utils.SendError(c, err)
	}

	cc.publish(c, resourceColumn, events.ActionUpdated, id, teamID)
	return c.JSON(utils.SuccessResponse("Column and all its tasks updated successfully.", fiber.Map{"id": id}))
}

func parseTaskOrder(item utils.Patch) (models.OrderUpdate, error) {
	taskID, err := item.ID("id", "tasks", "Task ID")
	if err != nil {
		return models.OrderUpdate{}, err
	}
	if !item.Has("order") || item.Blank("order") {
		return models.OrderUpdate{}, utils.Invalid("tasks", "Task order cannot be empty.", utils.CodeBlank)
	}
	order, err := item.Int("order", "order")
	if err != nil {
		return models.OrderUpdate{}, err
	}

	update := models.OrderUpdate{ID: taskID, Order: order}
	if item.Has("title") {
		if item.Blank("title") {
			return models.OrderUpdate{}, utils.Invalid("tasks", "Task title cannot be empty.", utils.CodeBlank)
		}
		title, err := item.Text("title", "title")
		if err != nil {
			return models.OrderUpdate{}, err
		}
		title = strings.TrimSpace(title)
		if err := checkLength("tasks", "Task title", title, 50); err != nil {
			return models.OrderUpdate{}, err
		}
		update.Columns = map[string]any{"title": title}
	}
	return update, nil
}
