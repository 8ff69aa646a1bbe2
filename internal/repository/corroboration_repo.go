package repository

import (
	"context"

	"banksentinel/internal/model"
	"banksentinel/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CorroborationRepository interface {
	// Upsert inserts or refreshes the (claim, event) link. Confidence only
	// ever moves up, re-processing with a weaker match keeps the stored row.
	Upsert(ctx context.Context, c *model.Corroboration, opts ...utils.DBOption) error
	GetByClaim(ctx context.Context, claimID uint) ([]model.Corroboration, error)
}

type corroborationRepository struct {
	db *gorm.DB
}

func NewCorroborationRepository(db *gorm.DB) CorroborationRepository {
	return &corroborationRepository{db: db}
}

func (r *corroborationRepository) Upsert(ctx context.Context, c *model.Corroboration, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "claim_id"}, {Name: "event_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"confidence": gorm.Expr("GREATEST(corroborations.confidence, EXCLUDED.confidence)"),
			"reason":     c.Reason,
			"updated_at": gorm.Expr("NOW()"),
		}),
	}).Create(c).Error
}

func (r *corroborationRepository) GetByClaim(ctx context.Context, claimID uint) ([]model.Corroboration, error) {
	var links []model.Corroboration
	err := r.db.WithContext(ctx).
		Where("claim_id = ?", claimID).
		Order("confidence DESC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}
