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

// socialFirehoseCollector ingests a pre-filtered social-media firehose
// (Tier 3). Posts only ever become claims; the extractor decides which
// posts carry a recognizable assertion at all.
type socialFirehoseCollector struct {
	baseCollector
}

func NewSocialFirehoseCollector(url string, f fetcher.Fetcher, log *logger.Logger) Collector {
	return &socialFirehoseCollector{baseCollector{
		name:      "social_firehose",
		tier:      model.TierSocial,
		frequency: 10,
		url:       url,
		fetcher:   f,
		log:       log,
	}}
}

type socialPost struct {
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	Author         string    `json:"author"`
	AccountAgeDays int       `json:"account_age_days"`
	Upvotes        int       `json:"upvotes"`
	Comments       int       `json:"comments"`
	URL            string    `json:"url"`
	CreatedAt      time.Time `json:"created_at"`
}

type socialFeed struct {
	Posts []socialPost `json:"posts"`
}

func (c *socialFirehoseCollector) Fetch(ctx context.Context) ([]dto.RawItem, error) {
	return c.fetchFeed(ctx)
}

func (c *socialFirehoseCollector) Parse(ctx context.Context, raw dto.RawItem) ([]dto.ParsedItem, error) {
	var feed socialFeed
	if err := json.Unmarshal(raw.Data, &feed); err != nil {
		return nil, fmt.Errorf("decode social feed: %w", err)
	}

	items := make([]dto.ParsedItem, 0, len(feed.Posts))
	for _, post := range feed.Posts {
		if post.Title == "" && post.Body == "" {
			continue
		}
		items = append(items, dto.NewClaimItem(dto.ClaimDraft{
			Title:          post.Title,
			Body:           post.Body,
			Author:         post.Author,
			AccountAgeDays: post.AccountAgeDays,
			Engagement:     post.Upvotes + post.Comments,
			URL:            post.URL,
			PublishedAt:    post.CreatedAt,
		}))
	}
	return items, nil
}
