package models

// DefaultColumnNames are the columns every new board starts with, in order.
var DefaultColumnNames = []string{"INBOX", "READY", "GO", "DONE"}

// DefaultBoardName names the board provisioned for a team that has none.
const DefaultBoardName = "New Board"

type Board struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:35;not null" json:"name"`
	TeamID uint   `gorm:"not null;index" json:"team_id"`

	Columns []Column `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"columns,omitempty"`
}

type Column struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:35" json:"name"`
	Order   int    `gorm:"column:position;not null;default:0" json:"order"`
	BoardID uint   `gorm:"not null;index" json:"-"`

	Tasks []Task `gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
}

func (c *Column) SiblingScope() Scope { return ColumnScope(c.BoardID) }
func (c *Column) SetOrder(order int)  { c.Order = order }
