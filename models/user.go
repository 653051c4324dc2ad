package models

import "time"

// User is an account belonging to exactly one team. Admins may mutate the
// team's data; members may only read it.
type User struct {
	Username  string    `gorm:"primaryKey;size:35" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	TokenHash string    `json:"-"`
	IsAdmin   bool      `gorm:"default:false" json:"is_admin"`
	TeamID    uint      `gorm:"not null;index" json:"team_id"`
	CreatedAt time.Time `json:"-"`
}
