package models

import "time"

// Team is the tenant boundary: it owns users and boards.
type Team struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50" json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Users  []User  `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
	Boards []Board `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
}
