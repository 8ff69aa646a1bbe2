package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// EventType is the closed set of verifiable facts the pipeline records.
type EventType string

const (
	EventRegulatorAction   EventType = "regulator_action"
	EventEnforcementAction EventType = "enforcement_action"
	EventBankFailure       EventType = "bank_failure"
	EventWellsNotice       EventType = "wells_notice"
	EventSECFiling         EventType = "sec_filing"
	EventFedIndicator      EventType = "fed_indicator"
	EventDepositFlow       EventType = "deposit_flow"
	EventComexInventory    EventType = "comex_inventory"
	EventDeliveryNotice    EventType = "delivery_notice"
	EventDealerPremium     EventType = "dealer_premium"
	EventNewsReport        EventType = "news_report"
)

// Event is an immutable fact. Rows are append-only, deduplicated on
// ContentHash, and never mutated or deleted.
type Event struct {
	ID          uint           `gorm:"primaryKey"`
	Type        EventType      `gorm:"type:varchar(50);not null;index"`
	EntityID    *string        `gorm:"type:varchar(64);index"`
	SourceID    uint           `gorm:"not null"`
	Payload     datatypes.JSON `gorm:"type:jsonb;not null"`
	PublishedAt time.Time      `gorm:"not null;index"`
	ObservedAt  time.Time      `gorm:"not null"`
	ContentHash string         `gorm:"type:char(64);not null;uniqueIndex"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`

	Entity *Entity `gorm:"foreignKey:EntityID"`
	Source Source  `gorm:"foreignKey:SourceID"`
}

func (Event) TableName() string {
	return "events"
}

// ComputeContentHash derives the deduplication key. ObservedAt is excluded
// on purpose: re-observing the same fact later must hash identically.
func ComputeContentHash(eventType EventType, entityID *string, sourceID uint, payload []byte, publishedAt time.Time) string {
	entity := ""
	if entityID != nil {
		entity = *entityID
	}
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%d|", eventType, entity, sourceID)
	h.Write(payload)
	fmt.Fprintf(h, "|%d", publishedAt.UTC().Unix())
	return hex.EncodeToString(h.Sum(nil))
}

type GetEventParam struct {
	Types    []EventType
	EntityID *string
	After    *time.Time
	Before   *time.Time
	Limit    *int
}
