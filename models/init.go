package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateBoard stores a board for the team together with the default columns.
func CreateBoard(tx *gorm.DB, teamID uint, name string) (*Board, error) {
	board := Board{Name: name, TeamID: teamID}
	for i, columnName := range DefaultColumnNames {
		board.Columns = append(board.Columns, Column{Name: columnName, Order: i})
	}
	if err := tx.Create(&board).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// ProvisionDefaultBoard creates the team's first board unless another request
// got there first, in which case created is false and nothing is written.
func ProvisionDefaultBoard(db *gorm.DB, teamID uint) (boards []Board, created bool, err error) {
	err = db.Transaction(func(tx *gorm.DB) error {
		lock := tx
		if tx.Dialector.Name() == "postgres" {
			lock = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var team Team
		if err := lock.First(&team, teamID).Error; err != nil {
			return err
		}

		if err := tx.Where("team_id = ?", teamID).Order("id ASC").Find(&boards).Error; err != nil {
			return err
		}
		if len(boards) > 0 {
			return nil
		}

		board, err := CreateBoard(tx, teamID, DefaultBoardName)
		if err != nil {
			return err
		}
		boards = []Board{*board}
		created = true
		return nil
	})
	return boards, created, err
}
