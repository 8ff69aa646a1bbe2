package model

import "time"

// Corroboration links one claim to one supporting event. Unique per
// (claim, event); confidence may only improve on re-processing.
type Corroboration struct {
	ID         uint      `gorm:"primaryKey"`
	ClaimID    uint      `gorm:"not null;uniqueIndex:idx_corroborations_claim_event"`
	EventID    uint      `gorm:"not null;uniqueIndex:idx_corroborations_claim_event"`
	Confidence float64   `gorm:"not null"`
	Reason     string    `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`

	Claim Claim `gorm:"foreignKey:ClaimID"`
	Event Event `gorm:"foreignKey:EventID"`
}

func (Corroboration) TableName() string {
	return "corroborations"
}
