package model

import (
	"time"

	"gorm.io/datatypes"
)

// EntityRiskScore is the per-entity daily snapshot, upserted on
// (score_date, entity_id).
type EntityRiskScore struct {
	ID                   uint           `gorm:"primaryKey"`
	ScoreDate            time.Time      `gorm:"type:date;not null;uniqueIndex:idx_entity_scores_date_entity"`
	EntityID             string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_entity_scores_date_entity"`
	FundingStress        float64        `gorm:"not null"`
	EnforcementHeat      float64        `gorm:"not null"`
	DeliverabilityStress float64        `gorm:"not null"`
	Composite            float64        `gorm:"not null"`
	CascadeLevel         int            `gorm:"default:0"`
	Explanation          datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt            time.Time      `gorm:"autoCreateTime"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime"`
}

func (EntityRiskScore) TableName() string {
	return "entity_risk_scores"
}

// MarketRiskScore is the market-wide daily snapshot, upserted on score_date.
type MarketRiskScore struct {
	ID                   uint           `gorm:"primaryKey"`
	ScoreDate            time.Time      `gorm:"type:date;not null;uniqueIndex"`
	FundingStress        float64        `gorm:"not null"`
	EnforcementHeat      float64        `gorm:"not null"`
	DeliverabilityStress float64        `gorm:"not null"`
	Composite            float64        `gorm:"not null"`
	CascadeLevel         int            `gorm:"default:0"`
	Explanation          datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt            time.Time      `gorm:"autoCreateTime"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime"`
}

func (MarketRiskScore) TableName() string {
	return "market_risk_scores"
}
