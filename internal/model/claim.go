package model

import (
	"time"
)

// ClaimType is the closed set of assertions the extractor recognizes.
type ClaimType string

const (
	ClaimNationalization ClaimType = "nationalization"
	ClaimInvestigation   ClaimType = "investigation"
	ClaimLiquidity       ClaimType = "liquidity"
	ClaimDelivery        ClaimType = "delivery"
	ClaimFraud           ClaimType = "fraud"
	ClaimInsider         ClaimType = "insider"
	ClaimPriceTarget     ClaimType = "price_target"
	ClaimOther           ClaimType = "other"
)

// ClaimStatus is the graduation lifecycle state.
type ClaimStatus string

const (
	StatusNew           ClaimStatus = "new"
	StatusTriage        ClaimStatus = "triage"
	StatusCorroborating ClaimStatus = "corroborating"
	StatusConfirmed     ClaimStatus = "confirmed"
	StatusDebunked      ClaimStatus = "debunked"
	StatusStale         ClaimStatus = "stale"
)

// Open reports whether the claim can still transition.
func (s ClaimStatus) Open() bool {
	switch s {
	case StatusNew, StatusTriage, StatusCorroborating:
		return true
	}
	return false
}

type CredibilityLevel string

const (
	CredibilityHigh    CredibilityLevel = "high"
	CredibilityMedium  CredibilityLevel = "medium"
	CredibilityLow     CredibilityLevel = "low"
	CredibilityVeryLow CredibilityLevel = "very_low"
)

// Claim is an unverified assertion. Only Status and StatusChangedAt mutate
// after creation.
type Claim struct {
	ID               uint             `gorm:"primaryKey"`
	Text             string           `gorm:"type:text;not null"`
	Type             ClaimType        `gorm:"type:varchar(30);not null;index"`
	EntityID         *string          `gorm:"type:varchar(64);index"`
	SourceID         uint             `gorm:"not null"`
	URL              string           `gorm:"type:text"`
	Author           string           `gorm:"type:varchar(255)"`
	Engagement       int              `gorm:"default:0"`
	Credibility      int              `gorm:"not null"`
	CredibilityLevel CredibilityLevel `gorm:"type:varchar(20);not null"`
	Status           ClaimStatus      `gorm:"type:varchar(20);not null;index"`
	StatusChangedAt  time.Time        `gorm:"not null"`
	CreatedAt        time.Time        `gorm:"autoCreateTime"`

	Entity *Entity `gorm:"foreignKey:EntityID"`
	Source Source  `gorm:"foreignKey:SourceID"`
}

func (Claim) TableName() string {
	return "claims"
}

type GetClaimParam struct {
	Statuses []ClaimStatus
	Types    []ClaimType
	EntityID *string
	After    *time.Time
	Before   *time.Time
	Limit    *int
}
