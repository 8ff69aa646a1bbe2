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

// fedIndicatorCollector ingests macro/liquidity indicator observations
// published by the central bank data service (Tier 1). These feed both the
// funding-stress engine and the regime detector.
type fedIndicatorCollector struct {
	baseCollector
}

func NewFedIndicatorCollector(url string, f fetcher.Fetcher, log *logger.Logger) Collector {
	return &fedIndicatorCollector{baseCollector{
		name:      "fed_indicator_series",
		tier:      model.TierOfficial,
		frequency: 60,
		url:       url,
		useCache:  true,
		fetcher:   f,
		log:       log,
	}}
}

type fedObservation struct {
	SeriesID string    `json:"series_id"`
	Value    float64   `json:"value"`
	Date     time.Time `json:"date"`
}

type fedSeriesFeed struct {
	Observations []fedObservation `json:"observations"`
}

func (c *fedIndicatorCollector) Fetch(ctx context.Context) ([]dto.RawItem, error) {
	return c.fetchFeed(ctx)
}

func (c *fedIndicatorCollector) Parse(ctx context.Context, raw dto.RawItem) ([]dto.ParsedItem, error) {
	var feed fedSeriesFeed
	if err := json.Unmarshal(raw.Data, &feed); err != nil {
		return nil, fmt.Errorf("decode fed series feed: %w", err)
	}

	items := make([]dto.ParsedItem, 0, len(feed.Observations))
	for _, obs := range feed.Observations {
		if obs.SeriesID == "" || obs.Date.IsZero() {
			continue
		}
		items = append(items, dto.NewEventItem(dto.EventDraft{
			Type: model.EventFedIndicator,
			Payload: map[string]interface{}{
				"series_id": obs.SeriesID,
				"value":     obs.Value,
			},
			PublishedAt: obs.Date,
			Title:       fmt.Sprintf("%s observation", obs.SeriesID),
		}))
	}
	return items, nil
}
