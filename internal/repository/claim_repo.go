package repository

import (
	"context"
	"time"

	"banksentinel/internal/model"
	"banksentinel/pkg/utils"

	"gorm.io/gorm"
)

type ClaimRepository interface {
	Create(ctx context.Context, claim *model.Claim, opts ...utils.DBOption) error
	UpdateStatus(ctx context.Context, claimID uint, status model.ClaimStatus, opts ...utils.DBOption) error
	Get(ctx context.Context, param model.GetClaimParam, opts ...utils.DBOption) ([]model.Claim, error)
	// TriageQueue returns open claims ordered by credibility descending.
	TriageQueue(ctx context.Context, limit int) ([]model.Claim, error)
	FindByID(ctx context.Context, id uint) (*model.Claim, error)
}

type claimRepository struct {
	db *gorm.DB
}

func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) Create(ctx context.Context, claim *model.Claim, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(claim).Error
}

func (r *claimRepository) UpdateStatus(ctx context.Context, claimID uint, status model.ClaimStatus, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return db.Model(&model.Claim{}).
		Where("id = ?", claimID).
		Updates(map[string]interface{}{
			"status":            status,
			"status_changed_at": time.Now(),
		}).Error
}

func (r *claimRepository) Get(ctx context.Context, param model.GetClaimParam, opts ...utils.DBOption) ([]model.Claim, error) {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if len(param.Statuses) > 0 {
		db = db.Where("status IN ?", param.Statuses)
	}
	if len(param.Types) > 0 {
		db = db.Where("type IN ?", param.Types)
	}
	if param.EntityID != nil {
		db = db.Where("entity_id = ?", *param.EntityID)
	}
	if param.After != nil {
		db = db.Where("created_at >= ?", *param.After)
	}
	if param.Before != nil {
		db = db.Where("created_at <= ?", *param.Before)
	}
	if param.Limit != nil {
		db = db.Limit(*param.Limit)
	}

	var claims []model.Claim
	err := db.Order("created_at DESC").Find(&claims).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return claims, nil
}

func (r *claimRepository) TriageQueue(ctx context.Context, limit int) ([]model.Claim, error) {
	var claims []model.Claim
	err := r.db.WithContext(ctx).
		Where("status IN ?", []model.ClaimStatus{model.StatusNew, model.StatusTriage, model.StatusCorroborating}).
		Order("credibility DESC, created_at DESC").
		Limit(limit).
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *claimRepository) FindByID(ctx context.Context, id uint) (*model.Claim, error) {
	var claim model.Claim
	if err := r.db.WithContext(ctx).First(&claim, id).Error; err != nil {
		return nil, err
	}
	return &claim, nil
}
