package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"taskboard/models"
)

// OrderCompactor periodically closes the gaps that deletes leave in sibling
// orders, so that every parent's children are numbered 0..n-1 again.
type OrderCompactor struct {
	DB       *gorm.DB
	Interval time.Duration
	Logger   *logrus.Entry
}

func NewOrderCompactor(db *gorm.DB, interval time.Duration, logger *logrus.Entry) *OrderCompactor {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &OrderCompactor{
		DB:       db,
		Interval: interval,
		Logger:   logger,
	}
}

// level is one parent/child relation whose children carry an order.
type level struct {
	name   string
	parent any
	scope  func(parentID uint) models.Scope
}

var levels = []level{
	{name: "columns", parent: &models.Board{}, scope: models.ColumnScope},
	{name: "tasks", parent: &models.Column{}, scope: models.TaskScope},
	{name: "subtasks", parent: &models.Task{}, scope: models.SubtaskScope},
}

// Start runs a pass every Interval until ctx is cancelled.
func (oc *OrderCompactor) Start(ctx context.Context) {
	oc.Logger.WithField("interval", oc.Interval.String()).Info("Order compactor started")

	ticker := time.NewTicker(oc.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			oc.Logger.Info("Order compactor shutting down...")
			return
		case <-ticker.C:
			moved, err := oc.CompactAll(ctx)
			if err != nil && ctx.Err() == nil {
				oc.Logger.WithError(err).Error("Order compaction failed")
				continue
			}
			if moved > 0 {
				oc.Logger.WithField("moved", moved).Info("Compacted sibling orders")
			}
		}
	}
}

// CompactAll renumbers the children of every board, column and live task. It
// returns how many rows changed order.
func (oc *OrderCompactor) CompactAll(ctx context.Context) (int, error) {
	total := 0
	for _, lvl := range levels {
		var parentIDs []uint
		if err := oc.DB.WithContext(ctx).Model(lvl.parent).Pluck("id", &parentIDs).Error; err != nil {
			return total, fmt.Errorf("list parents of %s: %w", lvl.name, err)
		}

		for _, parentID := range parentIDs {
			if err := ctx.Err(); err != nil {
				return total, err
			}

			scope := lvl.scope(parentID)
			var moved int
			err := oc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				var err error
				moved, err = models.CompactOrdering(tx, scope)
				return err
			})
			if err != nil {
				return total, fmt.Errorf("compact %s of %d: %w", lvl.name, parentID, err)
			}
			total += moved
		}
	}
	return total, nil
}
