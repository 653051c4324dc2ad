package controller

import "taskboard/models"

// Response shapes. Lists are always present, never null.

type subtaskView struct {
	ID    uint   `json:"id"`
	Order int    `json:"order"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

type taskView struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Order       int           `json:"order"`
	Column      uint          `json:"column"`
	Subtasks    []subtaskView `json:"subtasks"`
}

type columnView struct {
	ID    uint       `json:"id"`
	Name  string     `json:"name"`
	Order int        `json:"order"`
	Tasks []taskView `json:"tasks"`
}

func toSubtaskViews(subtasks []models.Subtask) []subtaskView {
	views := make([]subtaskView, 0, len(subtasks))
	for _, s := range subtasks {
		views = append(views, subtaskView{ID: s.ID, Order: s.Order, Title: s.Title, Done: s.Done})
	}
	return views
}

func toTaskViews(tasks []models.Task) []taskView {
	views := make([]taskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, taskView{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Order:       t.Order,
			Column:      t.ColumnID,
			Subtasks:    toSubtaskViews(t.Subtasks),
		})
	}
	return views
}

func toColumnViews(columns []models.Column) []columnView {
	views := make([]columnView, 0, len(columns))
	for _, col := range columns {
		views = append(views, columnView{
			ID:    col.ID,
			Name:  col.Name,
			Order: col.Order,
			Tasks: toTaskViews(col.Tasks),
		})
	}
	return views
}
