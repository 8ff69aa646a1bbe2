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

// comexInventoryCollector ingests the daily COMEX warehouse report (Tier 1).
// Each metal yields an inventory event, plus a delivery-notice event when
// notices were issued that day.
type comexInventoryCollector struct {
	baseCollector
}

func NewComexInventoryCollector(url string, f fetcher.Fetcher, log *logger.Logger) Collector {
	return &comexInventoryCollector{baseCollector{
		name:      "comex_warehouse_report",
		tier:      model.TierOfficial,
		frequency: 120,
		url:       url,
		fetcher:   f,
		log:       log,
	}}
}

type comexMetalReport struct {
	Metal           string  `json:"metal"`
	RegisteredOz    float64 `json:"registered_oz"`
	EligibleOz      float64 `json:"eligible_oz"`
	OpenInterestOz  float64 `json:"open_interest_oz"`
	DeliveryNotices int     `json:"delivery_notices"`
}

type comexReport struct {
	ReportDate time.Time          `json:"report_date"`
	Metals     []comexMetalReport `json:"metals"`
}

func (c *comexInventoryCollector) Fetch(ctx context.Context) ([]dto.RawItem, error) {
	return c.fetchFeed(ctx)
}

func (c *comexInventoryCollector) Parse(ctx context.Context, raw dto.RawItem) ([]dto.ParsedItem, error) {
	var report comexReport
	if err := json.Unmarshal(raw.Data, &report); err != nil {
		return nil, fmt.Errorf("decode comex report: %w", err)
	}
	if report.ReportDate.IsZero() {
		return nil, fmt.Errorf("comex report missing report_date")
	}

	var items []dto.ParsedItem
	for _, metal := range report.Metals {
		if metal.Metal == "" {
			continue
		}
		items = append(items, dto.NewEventItem(dto.EventDraft{
			Type:       model.EventComexInventory,
			EntityHint: metal.Metal,
			Payload: map[string]interface{}{
				"metal":            metal.Metal,
				"registered_oz":    metal.RegisteredOz,
				"eligible_oz":      metal.EligibleOz,
				"open_interest_oz": metal.OpenInterestOz,
			},
			PublishedAt: report.ReportDate,
			Title:       fmt.Sprintf("%s warehouse stocks", metal.Metal),
		}))

		if metal.DeliveryNotices > 0 {
			items = append(items, dto.NewEventItem(dto.EventDraft{
				Type:       model.EventDeliveryNotice,
				EntityHint: metal.Metal,
				Payload: map[string]interface{}{
					"metal":   metal.Metal,
					"notices": metal.DeliveryNotices,
				},
				PublishedAt: report.ReportDate,
				Title:       fmt.Sprintf("%s delivery notices", metal.Metal),
			}))
		}
	}
	return items, nil
}
