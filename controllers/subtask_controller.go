package controller

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskboard/events"
	"taskboard/middleware"
	"taskboard/models"
	"taskboard/utils"
)

const resourceSubtask = "subtask"

var errBlankData = utils.Invalid("data", "Data cannot be empty.", utils.CodeBlank)

type SubtaskController struct {
	Base
}

func NewSubtaskController(db *gorm.DB, logger *logrus.Entry, pub events.Publisher) *SubtaskController {
	return &SubtaskController{Base: newBase(db, logger, pub)}
}

// GetSubtasks lists a task's subtasks. A deleted task still resolves and
// simply has none.
func (sc *SubtaskController) GetSubtasks(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	taskID, err := utils.ParseID("task_id", c.Query("task_id"), "Task ID")
	if err != nil {
		return utils.SendError(c, err)
	}
	teamID, err := sc.teamOf(sc.DB.Unscoped(), models.KindTask, taskID, "task_id", "Task not found.")
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := middleware.AuthorizeRead(user, teamID); err != nil {
		return utils.SendError(c, err)
	}

	var subtasks []models.Subtask
	if err := byPosition(sc.DB).Where("task_id = ?", taskID).Find(&subtasks).Error; err != nil {
		return utils.SendError(c, err)
	}
	return c.JSON(fiber.Map{"subtasks": toSubtaskViews(subtasks)})
}

// CreateSubtask puts a new subtask at the top of its task.
func (sc *SubtaskController) CreateSubtask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	patch, err := parsePatch(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	taskID, err := patch.ID("task", "task", "Task ID")
	if err != nil {
		return utils.SendError(c, err)
	}
	teamID, err := sc.teamOf(sc.DB, models.KindTask, taskID, "task", "Task not found.")
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := middleware.Authorize(user, teamID); err != nil {
		return utils.SendError(c, err)
	}

	if !patch.Has("title") || patch.Blank("title") {
		return utils.SendError(c, utils.Invalid("title", "Subtask title cannot be empty.", utils.CodeBlank))
	}
	title, err := patch.Text("title", "title")
	if err != nil {
		return utils.SendError(c, err)
	}
	title = strings.TrimSpace(title)
	if err := checkLength("title", "Subtask title", title, 50); err != nil {
		return utils.SendError(c, err)
	}

	subtask := models.Subtask{Title: title, TaskID: taskID}
	if err := sc.DB.Transaction(func(tx *gorm.DB) error {
		return models.InsertAtFront(tx, &subtask)
	}); err != nil {
		return utils.SendError(c, err)
	}

	sc.publish(c, resourceSubtask, events.ActionCreated, subtask.ID, teamID)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse("Subtask creation successful.", fiber.Map{
		"id": subtask.ID,
	}))
}

// UpdateSubtask takes {id, data:{title?, done?, order?}}. Every key present
// in data must carry a value.
func (sc *SubtaskController) UpdateSubtask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	patch, err := parsePatch(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	id, err := patch.ID("id", "id", "Subtask ID")
	if err != nil {
		return utils.SendError(c, err)
	}
	if !patch.Has("data") || patch.Blank("data") {
		return utils.SendError(c, errBlankData)
	}
	var data utils.Patch
	if err := json.Unmarshal(patch["data"], &data); err != nil {
		return utils.SendError(c, utils.Invalid("data", "Data must be an object.", utils.CodeInvalid))
	}
	if len(data) == 0 {
		return utils.SendError(c, errBlankData)
	}
	if err := data.CheckNotBlank(
		utils.FieldRule{Key: "title", Field: "data.title", Message: "Title cannot be empty."},
		utils.FieldRule{Key: "done", Field: "data.done", Message: "Done cannot be empty."},
		utils.FieldRule{Key: "order", Field: "data.order", Message: "Order cannot be empty."},
	); err != nil {
		return utils.SendError(c, err)
	}

	teamID, err := sc.teamOf(sc.DB, models.KindSubtask, id, "id", "Subtask not found.")
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := middleware.Authorize(user, teamID); err != nil {
		return utils.SendError(c, err)
	}

	values := map[string]any{}
	if data.Has("title") {
		title, err := data.Text("title", "data.title")
		if err != nil {
			return utils.SendError(c, err)
		}
		title = strings.TrimSpace(title)
		if err := checkLength("data.title", "Title", title, 50); err != nil {
			return utils.SendError(c, err)
		}
		values["title"] = title
	}
	if data.Has("done") {
		done, err := data.Bool("done", "data.done")
		if err != nil {
			return utils.SendError(c, err)
		}
		values["done"] = done
	}
	if data.Has("order") {
		order, err := data.Int("order", "data.order")
		if err != nil {
			return utils.SendError(c, err)
		}
		values["position"] = order
	}

	if len(values) > 0 {
		if err := sc.DB.Model(&models.Subtask{}).Where("id = ?", id).UpdateColumns(values).Error; err != nil {
			return utils.SendError(c, err)
		}
	}

	sc.publish(c, resourceSubtask, events.ActionUpdated, id, teamID)
	return c.JSON(utils.SuccessResponse("Subtask update successful.", fiber.Map{"id": id}))
}

func (sc *SubtaskController) DeleteSubtask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := utils.ParseID("id", c.Query("id"), "Subtask ID")
	if err != nil {
		return utils.SendError(c, err)
	}
	teamID, err := sc.teamOf(sc.DB, models.KindSubtask, id, "id", "Subtask not found.")
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := middleware.Authorize(user, teamID); err != nil {
		return utils.SendError(c, err)
	}

	result := sc.DB.Delete(&models.Subtask{}, id)
	if result.Error != nil {
		return utils.SendError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.SendError(c, utils.NotFound("id", "Subtask not found."))
	}

	sc.publish(c, resourceSubtask, events.ActionDeleted, id, teamID)
	return c.JSON(utils.SuccessResponse("Subtask deleted successfully.", fiber.Map{"id": id}))
}
