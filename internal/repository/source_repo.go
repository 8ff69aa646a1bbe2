package repository

import (
	"context"
	"database/sql"
	"time"

	"banksentinel/internal/model"
	"banksentinel/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SourceRepository interface {
	// Register upserts the source row on name, keeping health counters from
	// previous runs intact.
	Register(ctx context.Context, source *model.Source, opts ...utils.DBOption) error
	Get(ctx context.Context, param model.GetSourceParam, opts ...utils.DBOption) ([]model.Source, error)
	FindByName(ctx context.Context, name string) (*model.Source, error)
	UpdateSchedule(ctx context.Context, source *model.Source, opts ...utils.DBOption) error
	RecordSuccess(ctx context.Context, sourceID uint, at time.Time, opts ...utils.DBOption) error
	RecordFailure(ctx context.Context, sourceID uint, opts ...utils.DBOption) error
}

type sourceRepository struct {
	db *gorm.DB
}

func NewSourceRepository(db *gorm.DB) SourceRepository {
	return &sourceRepository{db: db}
}

func (r *sourceRepository) Register(ctx context.Context, source *model.Source, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"base_identifier", "tier", "cron_expression", "is_active", "updated_at",
		}),
	}).Create(source).Error
}

func (r *sourceRepository) Get(ctx context.Context, param model.GetSourceParam, opts ...utils.DBOption) ([]model.Source, error) {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if len(param.Names) > 0 {
		db = db.Where("name IN ?", param.Names)
	}
	if param.Tier != nil {
		db = db.Where("tier = ?", *param.Tier)
	}
	if param.IsActive != nil {
		db = db.Where("is_active = ?", *param.IsActive)
	}
	if param.DueAt != nil {
		db = db.Where("next_execution IS NULL OR next_execution <= ?", *param.DueAt)
	}

	var sources []model.Source
	err := db.Order("name ASC").Find(&sources).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return sources, nil
}

func (r *sourceRepository) FindByName(ctx context.Context, name string) (*model.Source, error) {
	var source model.Source
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&source).Error; err != nil {
		return nil, err
	}
	return &source, nil
}

func (r *sourceRepository) UpdateSchedule(ctx context.Context, source *model.Source, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return db.Model(&model.Source{}).
		Where("id = ?", source.ID).
		Updates(map[string]interface{}{
			"last_execution": source.LastExecution,
			"next_execution": source.NextExecution,
		}).Error
}

func (r *sourceRepository) RecordSuccess(ctx context.Context, sourceID uint, at time.Time, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return db.Model(&model.Source{}).
		Where("id = ?", sourceID).
		Updates(map[string]interface{}{
			"consecutive_failures": 0,
			"last_success":         sql.NullTime{Time: at, Valid: true},
		}).Error
}

func (r *sourceRepository) RecordFailure(ctx context.Context, sourceID uint, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return db.Model(&model.Source{}).
		Where("id = ?", sourceID).
		Update("consecutive_failures", gorm.Expr("consecutive_failures + 1")).Error
}
