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

// newswireCollector ingests a credible financial newswire (Tier 2). Each
// article becomes a news event and, through the trust router, a mirrored
// claim queued for corroboration against later official events.
type newswireCollector struct {
	baseCollector
}

func NewNewswireCollector(url string, f fetcher.Fetcher, log *logger.Logger) Collector {
	return &newswireCollector{baseCollector{
		name:      "financial_newswire",
		tier:      model.TierPress,
		frequency: 15,
		url:       url,
		fetcher:   f,
		log:       log,
	}}
}

type newswireArticle struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	Subjects    []string  `json:"subjects"`
	PublishedAt time.Time `json:"published_at"`
}

type newswireFeed struct {
	Articles []newswireArticle `json:"articles"`
}

func (c *newswireCollector) Fetch(ctx context.Context) ([]dto.RawItem, error) {
	return c.fetchFeed(ctx)
}

func (c *newswireCollector) Parse(ctx context.Context, raw dto.RawItem) ([]dto.ParsedItem, error) {
	var feed newswireFeed
	if err := json.Unmarshal(raw.Data, &feed); err != nil {
		return nil, fmt.Errorf("decode newswire feed: %w", err)
	}

	items := make([]dto.ParsedItem, 0, len(feed.Articles))
	for _, article := range feed.Articles {
		if article.Title == "" || article.PublishedAt.IsZero() {
			continue
		}

		entityHint := ""
		if len(article.Subjects) > 0 {
			entityHint = article.Subjects[0]
		}

		items = append(items, dto.NewEventItem(dto.EventDraft{
			Type:       model.EventNewsReport,
			EntityHint: entityHint,
			Payload: map[string]interface{}{
				"title":    article.Title,
				"summary":  article.Summary,
				"url":      article.URL,
				"subjects": article.Subjects,
			},
			PublishedAt: article.PublishedAt,
			Title:       article.Title,
			Summary:     article.Summary,
			URL:         article.URL,
		}))
	}
	return items, nil
}
