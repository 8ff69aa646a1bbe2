package repository

import (
	"context"

	"banksentinel/internal/model"
	"banksentinel/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepository interface {
	// Insert appends the event unless an identical content hash exists.
	// Returns false when the event was a duplicate no-op.
	Insert(ctx context.Context, event *model.Event, opts ...utils.DBOption) (bool, error)
	Get(ctx context.Context, param model.GetEventParam, opts ...utils.DBOption) ([]model.Event, error)
	Count(ctx context.Context, param model.GetEventParam) (int64, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Insert(ctx context.Context, event *model.Event, opts ...utils.DBOption) (bool, error) {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_hash"}},
		DoNothing: true,
	}).Create(event)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *eventRepository) Get(ctx context.Context, param model.GetEventParam, opts ...utils.DBOption) ([]model.Event, error) {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	db = applyEventFilters(db, param)

	var events []model.Event
	err := db.Order("published_at DESC").Find(&events).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) Count(ctx context.Context, param model.GetEventParam) (int64, error) {
	db := applyEventFilters(r.db.WithContext(ctx).Model(&model.Event{}), param)
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func applyEventFilters(db *gorm.DB, param model.GetEventParam) *gorm.DB {
	if len(param.Types) > 0 {
		db = db.Where("type IN ?", param.Types)
	}
	if param.EntityID != nil {
		db = db.Where("entity_id = ?", *param.EntityID)
	}
	if param.After != nil {
		db = db.Where("published_at >= ?", *param.After)
	}
	if param.Before != nil {
		db = db.Where("published_at <= ?", *param.Before)
	}
	if param.Limit != nil {
		db = db.Limit(*param.Limit)
	}
	return db
}
