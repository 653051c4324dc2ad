package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Kind names an entity that sits on the Team→Board→Column→Task→Subtask chain.
type Kind string

const (
	KindBoard   Kind = "board"
	KindColumn  Kind = "column"
	KindTask    Kind = "task"
	KindSubtask Kind = "subtask"
)

// TeamOf walks the ownership chain of the entity and returns its team id.
// A missing entity yields gorm.ErrRecordNotFound. Soft-deleted tasks count as
// missing unless db is Unscoped.
func TeamOf(db *gorm.DB, kind Kind, id uint) (uint, error) {
	liveTasks := " AND tasks.deleted_at IS NULL"
	if db.Statement.Unscoped {
		liveTasks = ""
	}

	var q *gorm.DB
	switch kind {
	case KindBoard:
		q = db.Table("boards").
			Where("boards.id = ?", id)
	case KindColumn:
		q = db.Table("columns").
			Joins("JOIN boards ON boards.id = columns.board_id").
			Where("columns.id = ?", id)
	case KindTask:
		q = db.Table("tasks").
			Joins("JOIN columns ON columns.id = tasks.column_id").
			Joins("JOIN boards ON boards.id = columns.board_id").
			Where("tasks.id = ?"+liveTasks, id)
	case KindSubtask:
		q = db.Table("subtasks").
			Joins("JOIN tasks ON tasks.id = subtasks.task_id"+liveTasks).
			Joins("JOIN columns ON columns.id = tasks.column_id").
			Joins("JOIN boards ON boards.id = columns.board_id").
			Where("subtasks.id = ?", id)
	default:
		return 0, fmt.Errorf("team of unknown kind %q", kind)
	}

	var teamIDs []uint
	if err := q.Limit(1).Pluck("boards.team_id", &teamIDs).Error; err != nil {
		return 0, err
	}
	if len(teamIDs) == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return teamIDs[0], nil
}
