package models

import "gorm.io/gorm"

// Task is soft-deleted so that its id stays resolvable after removal; its
// subtasks are removed for real.
type Task struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:50;not null" json:"title"`
	Description *string        `json:"description"`
	Order       int            `gorm:"column:position;not null;default:0" json:"order"`
	ColumnID    uint           `gorm:"not null;index" json:"column"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Subtasks []Subtask `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"subtasks,omitempty"`
}

func (t *Task) SiblingScope() Scope { return TaskScope(t.ColumnID) }
func (t *Task) SetOrder(order int)  { t.Order = order }

type Subtask struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Title  string `gorm:"size:50;not null" json:"title"`
	Order  int    `gorm:"column:position;not null;default:0" json:"order"`
	Done   bool   `gorm:"not null;default:false" json:"done"`
	TaskID uint   `gorm:"not null;index" json:"-"`
}

func (s *Subtask) SiblingScope() Scope { return SubtaskScope(s.TaskID) }
func (s *Subtask) SetOrder(order int)  { s.Order = order }
