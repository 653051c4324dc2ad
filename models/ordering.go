package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotSibling  = errors.New("item does not belong to the parent")
	ErrDuplicateID = errors.New("item listed more than once")
)

// Scope is the set of siblings sharing one parent.
type Scope struct {
	Model        any
	ParentColumn string
	ParentID     uint

	// acrossBoard lets a reordering list tasks from any column of the
	// parent's board; they move into the parent.
	acrossBoard bool
}

func ColumnScope(boardID uint) Scope {
	return Scope{Model: &Column{}, ParentColumn: "board_id", ParentID: boardID}
}

func TaskScope(columnID uint) Scope {
	return Scope{Model: &Task{}, ParentColumn: "column_id", ParentID: columnID, acrossBoard: true}
}

func SubtaskScope(taskID uint) Scope {
	return Scope{Model: &Subtask{}, ParentColumn: "task_id", ParentID: taskID}
}

func (s Scope) siblings(tx *gorm.DB) *gorm.DB {
	return tx.Model(s.Model).Where(s.ParentColumn+" = ?", s.ParentID)
}

// listable selects those of ids that a reordering of the parent may list.
func (s Scope) listable(tx *gorm.DB, ids []uint) *gorm.DB {
	if !s.acrossBoard {
		return s.siblings(tx).Where("id IN ?", ids)
	}
	return tx.Model(&Task{}).
		Joins("JOIN columns ON columns.id = tasks.column_id").
		Joins("JOIN columns AS target ON target.board_id = columns.board_id").
		Where("target.id = ? AND tasks.id IN ?", s.ParentID, ids)
}

// Orderable is implemented by every entity kept in a sibling order.
type Orderable interface {
	SiblingScope() Scope
	SetOrder(order int)
}

// InsertAtFront pushes every sibling down by one and stores item at order 0.
// Call it inside a transaction so the shift and the insert land together.
func InsertAtFront(tx *gorm.DB, item Orderable) error {
	if err := item.SiblingScope().siblings(tx).
		UpdateColumn("position", gorm.Expr("position + ?", 1)).Error; err != nil {
		return fmt.Errorf("shift siblings: %w", err)
	}
	item.SetOrder(0)
	if err := tx.Create(item).Error; err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// OrderUpdate is one entry of a client-submitted ordering. Columns carries
// extra fields written alongside the order, keyed by column name.
type OrderUpdate struct {
	ID      uint
	Order   int
	Columns map[string]any
}

// ReplaceOrdering overwrites the order of every listed item and puts it under
// the parent. Tasks may come from any column of the same board. The submitted
// orders are stored as given; only membership and uniqueness of ids are checked.
func ReplaceOrdering(tx *gorm.DB, scope Scope, updates []OrderUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(updates))
	seen := make(map[uint]struct{}, len(updates))
	for _, u := range updates {
		if _, ok := seen[u.ID]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateID, u.ID)
		}
		seen[u.ID] = struct{}{}
		ids = append(ids, u.ID)
	}

	var count int64
	if err := scope.listable(tx, ids).Count(&count).Error; err != nil {
		return fmt.Errorf("count siblings: %w", err)
	}
	if int(count) != len(ids) {
		return ErrNotSibling
	}

	for _, u := range updates {
		values := map[string]any{"position": u.Order, scope.ParentColumn: scope.ParentID}
		for column, value := range u.Columns {
			values[column] = value
		}
		if err := tx.Model(scope.Model).Where("id = ?", u.ID).UpdateColumns(values).Error; err != nil {
			return fmt.Errorf("update order of %d: %w", u.ID, err)
		}
	}
	return nil
}

// CompactOrdering renumbers the siblings to 0..n-1, keeping their current
// relative order (ties broken by id). It returns how many rows moved.
func CompactOrdering(tx *gorm.DB, scope Scope) (int, error) {
	var rows []struct {
		ID       uint
		Position int
	}
	if err := scope.siblings(tx).
		Select("id", "position").
		Order("position ASC, id ASC").
		Scan(&rows).Error; err != nil {
		return 0, fmt.Errorf("load siblings: %w", err)
	}

	moved := 0
	for i, row := range rows {
		if row.Position == i {
			continue
		}
		if err := scope.siblings(tx).Where("id = ?", row.ID).UpdateColumn("position", i).Error; err != nil {
			return moved, fmt.Errorf("renumber %d: %w", row.ID, err)
		}
		moved++
	}
	return moved, nil
}
