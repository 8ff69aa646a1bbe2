package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"banksentinel/internal/dto"
	"banksentinel/internal/model"
	"banksentinel/pkg/fetcher"
	"banksentinel/pkg/logger"
)

// regulatorFeedCollector ingests the consolidated regulator press-release
// feed (Tier 1). Every release is an immutable fact.
type regulatorFeedCollector struct {
	baseCollector
}

func NewRegulatorFeedCollector(url string, f fetcher.Fetcher, log *logger.Logger) Collector {
	return &regulatorFeedCollector{baseCollector{
		name:      "regulator_press_feed",
		tier:      model.TierOfficial,
		frequency: 30,
		url:       url,
		fetcher:   f,
		log:       log,
	}}
}

type regulatorRelease struct {
	Agency      string    `json:"agency"`
	ActionType  string    `json:"action_type"`
	Institution string    `json:"institution"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
}

type regulatorFeed struct {
	Releases []regulatorRelease `json:"releases"`
}

func (c *regulatorFeedCollector) Fetch(ctx context.Context) ([]dto.RawItem, error) {
	return c.fetchFeed(ctx)
}

func (c *regulatorFeedCollector) Parse(ctx context.Context, raw dto.RawItem) ([]dto.ParsedItem, error) {
	var feed regulatorFeed
	if err := json.Unmarshal(raw.Data, &feed); err != nil {
		return nil, fmt.Errorf("decode regulator feed: %w", err)
	}

	items := make([]dto.ParsedItem, 0, len(feed.Releases))
	for _, release := range feed.Releases {
		if release.Title == "" || release.PublishedAt.IsZero() {
			c.log.Warn("Skipping regulator release with missing fields",
				logger.StringField("agency", release.Agency))
			continue
		}

		items = append(items, dto.NewEventItem(dto.EventDraft{
			Type:       mapActionType(release.ActionType),
			EntityHint: release.Institution,
			Payload: map[string]interface{}{
				"agency":      release.Agency,
				"action_type": release.ActionType,
				"title":       release.Title,
				"summary":     release.Summary,
				"url":         release.URL,
			},
			PublishedAt: release.PublishedAt,
			Title:       release.Title,
			Summary:     release.Summary,
			URL:         release.URL,
		}))
	}
	return items, nil
}

func mapActionType(actionType string) model.EventType {
	switch actionType {
	case "closure", "receivership":
		return model.EventBankFailure
	case "consent_order", "cease_and_desist", "civil_penalty", "enforcement":
		return model.EventEnforcementAction
	case "wells_notice":
		return model.EventWellsNotice
	case "filing":
		return model.EventSECFiling
	default:
		return model.EventRegulatorAction
	}
}
