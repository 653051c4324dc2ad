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

const resourceTask = "task"

type TaskController struct {
	Base
}

func NewTaskController(db *gorm.DB, logger *logrus.Entry, pub events.Publisher) *TaskController {
	return &TaskController{Base: newBase(db, logger, pub)}
}

type CreateTaskRequest struct {
	Title       string   `json:"title" validate:"required,max=50"`
	Description *string  `json:"description"`
	Subtasks    []string `json:"subtasks"`
}

// GetTasks lists the live tasks of a column with their subtasks.
func (tc *TaskController) GetTasks(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	columnID, err := utils.ParseID("column_id", c.Query("column_id"), "Column ID")
	if err != nil {
		return utils.SendError(c, err)
	}
	teamID, err := tc.teamOf(tc.DB, models.KindColumn, columnID, "column_id", "Column not found.")
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := middleware.AuthorizeRead(user, teamID); err != nil {
		return utils.SendError(c, err)
	}

	var tasks []models.Task
	if err := byPosition(tc.DB.Preload("Subtasks", byPosition)).
		Where("column_id = ?", columnID).
		Find(&tasks).Error; err != nil {
		return utils.SendError(c, err)
	}
	return c.JSON(fiber.Map{"tasks": toTaskViews(tasks)})
}

// CreateTask puts a new task at the top of its column together with its
// initial subtasks. Nothing is written unless all of it is.
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	patch, err := parsePatch(c)
	if err != nil {
		return utils.SendError(c, err)
	}
	columnID, err := patch.ID("column", "column", "Column ID")
	if err != nil {
		return utils.SendError(c, err)
	}
	teamID, err := tc.teamOf(tc.DB, models.KindColumn, columnID, "column", "Column not found.")
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := middleware.Authorize(user, teamID); err != nil {
		return utils.SendError(c, err)
	}

	var input CreateTaskRequest
	if err := json.Unmarshal(c.Body(), &input); err != nil {
		return utils.SendError(c, errBadBody)
	}
	input.Title = strings.TrimSpace(input.Title)
	if err := utils.ValidateStruct(input); err != nil {
		return utils.SendError(c, err)
	}
	for i, title := range input.Subtasks {
		title = strings.TrimSpace(title)
		if err := checkSubtaskTitle(title); err != nil {
			return utils.SendError(c, err)
		}
		input.Subtasks[i] = title
	}

	task := models.Task{
		Title:       input.Title,
		Description: input.Description,
		ColumnID:    columnID,
	}
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := models.InsertAtFront(tx, &task); err != nil {
			return err
		}
		if len(input.Subtasks) == 0 {
			return nil
		}
		subtasks := make([]models.Subtask, 0, len(input.Subtasks))
		for i, title := range input.Subtasks {
			subtasks = append(subtasks, models.Subtask{Title: title, Order: i, TaskID: task.ID})
		}
		return tx.Create(&subtasks).Error
	})
	if err != nil {
		return utils.SendError(c, err)
	}

	tc.publish(c, resourceTask, events.ActionCreated, task.ID, teamID)
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse("Task creation successful.", fiber.Map{
		"task_id": task.ID,
	}))
}

// UpdateTask applies a partial update. A subtasks list, when given, replaces
// every existing subtask of the task.
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := utils.ParseID("id", c.Query("id"), "Task ID")
	if err != nil {
		return utils.SendError(c, err)
	}
	teamID, err := tc.teamOf(tc.DB, models.KindTask, id, "id", "Task not found.")
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
	if err := patch.CheckNotBlank(
		utils.FieldRule{Key: "title", Field: "title", Message: "Task title cannot be empty."},
		utils.FieldRule{Key: "order", Field: "order", Message: "Task order cannot be empty."},
		utils.FieldRule{Key: "column", Field: "column", Message: "Column ID cannot be empty."},
	); err != nil {
		return utils.SendError(c, err)
	}

	values := map[string]any{}
	if patch.Has("title") {
		title, err := patch.Text("title", "title")
		if err != nil {
			return utils.SendError(c, err)
		}
		title = strings.TrimSpace(title)
		if err := checkLength("title", "Task title", title, 50); err != nil {
			return utils.SendError(c, err)
		}
		values["title"] = title
	}
	if patch.Has("description") {
		description, err := patch.OptionalText("description", "description")
		if err != nil {
			return utils.SendError(c, err)
		}
		values["description"] = description
	}
	if patch.Has("order") {
		order, err := patch.Int("order", "order")
		if err != nil {
			return utils.SendError(c, err)
		}
		values["position"] = order
	}
	if patch.Has("column") {
		columnID, err := patch.ID("column", "column", "Column ID")
		if err != nil {
			return utils.SendError(c, err)
		}
		columnTeam, err := tc.teamOf(tc.DB, models.KindColumn, columnID, "column", "Column not found.")
		if err != nil {
			return utils.SendError(c, err)
		}
		if err := middleware.Authorize(user, columnTeam); err != nil {
			return utils.SendError(c, err)
		}
		values["column_id"] = columnID
	}

	var (
		replaceSubtasks bool
		subtasks        []models.Subtask
	)
	if patch.Has("subtasks") && !patch.Blank("subtasks") {
		replaceSubtasks = true
		subtasks, err = parseSubtaskList(patch["subtasks"], id)
		if err != nil {
			return utils.SendError(c, err)
		}
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if len(values) > 0 {
			if err := tx.Model(&models.Task{}).Where("id = ?", id).UpdateColumns(values).Error; err != nil {
				return err
			}
		}
		if !replaceSubtasks {
			return nil
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.Subtask{}).Error; err != nil {
			return err
		}
		if len(subtasks) == 0 {
			return nil
		}
		return tx.Create(&subtasks).Error
	})
	if err != nil {
		return utils.SendError(c, err)
	}

	tc.publish(c, resourceTask, events.ActionUpdated, id, teamID)
	return c.JSON(utils.SuccessResponse("Task update successful.", fiber.Map{"id": id}))
}

// DeleteTask soft-deletes the task and removes its subtasks.
func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := utils.ParseID("id", c.Query("id"), "Task ID")
	if err != nil {
		return utils.SendError(c, err)
	}
	teamID, err := tc.teamOf(tc.DB, models.KindTask, id, "task_id", "Task not found.")
	if err != nil {
		return utils.SendError(c, err)
	}
	if err := middleware.Authorize(user, teamID); err != nil {
		return utils.SendError(c, err)
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Subtask{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, id).Error
	})
	if err != nil {
		return utils.SendError(c, err)
	}

	utils.LogEvent("task_deleted", map[string]interface{}{
		"task_id":  id,
		"username": user.Username,
	})
	tc.publish(c, resourceTask, events.ActionDeleted, id, teamID)
	return c.JSON(utils.SuccessResponse("Task deleted successfully.", fiber.Map{"id": id}))
}

func checkSubtaskTitle(title string) error {
	if title == "" {
		return utils.Invalid("subtasks", "Subtask title cannot be empty.", utils.CodeBlank)
	}
	return checkLength("subtasks", "Subtask title", title, 50)
}

// parseSubtaskList decodes [{title, order, done}, ...]. A missing order falls
// back to the item's position in the list and a missing done to false.
func parseSubtaskList(raw json.RawMessage, taskID uint) ([]models.Subtask, error) {
	var items []utils.Patch
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, utils.Invalid("subtasks", "Subtasks must be a list.", utils.CodeInvalid)
	}

	subtasks := make([]models.Subtask, 0, len(items))
	for i, item := range items {
		if item == nil {
			return nil, utils.Invalid("subtasks", "Subtasks must be objects.", utils.CodeInvalid)
		}
		var title string
		if item.Has("title") && !item.Blank("title") {
			t, err := item.Text("title", "subtasks")
			if err != nil {
				return nil, err
			}
			title = strings.TrimSpace(t)
		}
		if err := checkSubtaskTitle(title); err != nil {
			return nil, err
		}

		subtask := models.Subtask{Title: title, Order: i, TaskID: taskID}
		if item.Has("order") && !item.Blank("order") {
			order, err := item.Int("order", "subtasks")
			if err != nil {
				return nil, err
			}
			subtask.Order = order
		}
		if item.Has("done") && !item.Blank("done") {
			done, err := item.Bool("done", "subtasks")
			if err != nil {
				return nil, err
			}
			subtask.Done = done
		}
		subtasks = append(subtasks, subtask)
	}
	return subtasks, nil
}
