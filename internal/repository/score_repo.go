package repository

import (
	"context"
	"time"

	"banksentinel/internal/model"
	"banksentinel/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScoreRepository interface {
	UpsertEntityScore(ctx context.Context, score *model.EntityRiskScore, opts ...utils.DBOption) error
	UpsertMarketScore(ctx context.Context, score *model.MarketRiskScore, opts ...utils.DBOption) error
	LatestEntityScores(ctx context.Context) ([]model.EntityRiskScore, error)
	LatestMarketScore(ctx context.Context) (*model.MarketRiskScore, error)
	EntityScoreHistory(ctx context.Context, entityID string, since time.Time) ([]model.EntityRiskScore, error)
}

type scoreRepository struct {
	db *gorm.DB
}

func NewScoreRepository(db *gorm.DB) ScoreRepository {
	return &scoreRepository{db: db}
}

func (r *scoreRepository) UpsertEntityScore(ctx context.Context, score *model.EntityRiskScore, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "score_date"}, {Name: "entity_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"funding_stress", "enforcement_heat", "deliverability_stress",
			"composite", "cascade_level", "explanation", "updated_at",
		}),
	}).Create(score).Error
}

func (r *scoreRepository) UpsertMarketScore(ctx context.Context, score *model.MarketRiskScore, opts ...utils.DBOption) error {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "score_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"funding_stress", "enforcement_heat", "deliverability_stress",
			"composite", "cascade_level", "explanation", "updated_at",
		}),
	}).Create(score).Error
}

func (r *scoreRepository) LatestEntityScores(ctx context.Context) ([]model.EntityRiskScore, error) {
	var scores []model.EntityRiskScore
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (entity_id) * FROM entity_risk_scores
		     ORDER BY entity_id, score_date DESC`).
		Scan(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

func (r *scoreRepository) LatestMarketScore(ctx context.Context) (*model.MarketRiskScore, error) {
	var score model.MarketRiskScore
	err := r.db.WithContext(ctx).Order("score_date DESC").First(&score).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &score, nil
}

func (r *scoreRepository) EntityScoreHistory(ctx context.Context, entityID string, since time.Time) ([]model.EntityRiskScore, error) {
	var scores []model.EntityRiskScore
	err := r.db.WithContext(ctx).
		Where("entity_id = ? AND score_date >= ?", entityID, since).
		Order("score_date ASC").
		Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}
