package dto

import (
	"time"

	"banksentinel/internal/model"
)

// RawItem is one unit of unparsed source output.
type RawItem struct {
	Data      []byte
	FetchedAt time.Time
	FromCache bool
}

// EventDraft is a parsed fact before routing, hashing and persistence.
// Title/Summary/URL feed the mirrored claim for Tier 2 sources.
type EventDraft struct {
	Type        model.EventType
	EntityHint  string
	Payload     map[string]interface{}
	PublishedAt time.Time
	Title       string
	Summary     string
	URL         string
}

// ClaimDraft is an unverified assertion before extraction and scoring.
type ClaimDraft struct {
	Title          string
	Body           string
	EntityHint     string
	URL            string
	Author         string
	Engagement     int
	AccountAgeDays int
	PublishedAt    time.Time
}

// ParsedItem is a closed tagged variant: exactly one of Event or Claim is set.
type ParsedItem struct {
	Event *EventDraft
	Claim *ClaimDraft
}

func NewEventItem(e EventDraft) ParsedItem {
	return ParsedItem{Event: &e}
}

func NewClaimItem(c ClaimDraft) ParsedItem {
	return ParsedItem{Claim: &c}
}

// CollectResult summarizes one collector run. A failing item increments
// Errors without aborting the batch.
type CollectResult struct {
	Created    int `json:"created"`
	Duplicates int `json:"duplicates"`
	Errors     int `json:"errors"`
}

func (r *CollectResult) Add(other CollectResult) {
	r.Created += other.Created
	r.Duplicates += other.Duplicates
	r.Errors += other.Errors
}
