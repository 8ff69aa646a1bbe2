package repository

import (
	"context"
	"time"

	"banksentinel/internal/model"
	"banksentinel/pkg/utils"

	"gorm.io/gorm"
)

type CollectorRunRepository interface {
	Create(ctx context.Context, run *model.CollectorRun, opts ...utils.DBOption) error
	Update(ctx context.Context, run *model.CollectorRun, opts ...utils.DBOption) error
	RecentBySource(ctx context.Context, sourceID uint, limit int) ([]model.CollectorRun, error)
	DeleteOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error)
}

type collectorRunRepository struct {
	db *gorm.DB
}

func NewCollectorRunRepository(db *gorm.DB) CollectorRunRepository {
	return &collectorRunRepository{db: db}
}

func (r *collectorRunRepository) Create(ctx context.Context, run *model.CollectorRun, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(run).Error
}

func (r *collectorRunRepository) Update(ctx context.Context, run *model.CollectorRun, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Updates(run).Error
}

func (r *collectorRunRepository) RecentBySource(ctx context.Context, sourceID uint, limit int) ([]model.CollectorRun, error) {
	var runs []model.CollectorRun
	err := r.db.WithContext(ctx).
		Where("source_id = ?", sourceID).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *collectorRunRepository) DeleteOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error) {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("created_at < ?", date).
		Delete(&model.CollectorRun{})
	if db.Error != nil {
		return 0, db.Error
	}
	return db.RowsAffected, nil
}
