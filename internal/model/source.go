package model

import (
	"database/sql"
	"time"
)

// TrustTier ranks how much a source's output can be taken at face value.
type TrustTier int

const (
	TierOfficial TrustTier = 1 // regulators, exchanges, central banks
	TierPress    TrustTier = 2 // credible press and newswires
	TierSocial   TrustTier = 3 // social media, forums
)

func (t TrustTier) Valid() bool {
	switch t {
	case TierOfficial, TierPress, TierSocial:
		return true
	}
	return false
}

// Source is a registered data producer. Created at collector registration,
// mutated by the scheduler after every run, never deleted.
type Source struct {
	ID                  uint      `gorm:"primaryKey"`
	Name                string    `gorm:"type:varchar(100);not null;uniqueIndex"`
	BaseIdentifier      string    `gorm:"type:varchar(255)"`
	Tier                TrustTier `gorm:"not null"`
	CronExpression      string    `gorm:"type:varchar(100)"`
	IsActive            bool      `gorm:"default:true"`
	ConsecutiveFailures int       `gorm:"default:0"`
	LastSuccess         sql.NullTime
	LastExecution       sql.NullTime
	NextExecution       sql.NullTime
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}

func (Source) TableName() string {
	return "sources"
}

type GetSourceParam struct {
	Names    []string
	Tier     *TrustTier
	IsActive *bool
	DueAt    *time.Time
}
