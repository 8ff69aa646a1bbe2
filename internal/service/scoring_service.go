package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"banksentinel/internal/dto"
	"banksentinel/internal/model"
	"banksentinel/internal/repository"
	"banksentinel/internal/resolver"
	"banksentinel/pkg/cache"
	"banksentinel/pkg/common"
	"banksentinel/pkg/logger"
	"banksentinel/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// Fed series the funding engine understands. Anything else is ignored.
const (
	seriesCreditSpread = "HY_OAS"
	seriesRateSpread   = "SOFR_IORB_SPREAD"
	seriesFedFacility  = "DISCOUNT_WINDOW_B"
	seriesDepositTrend = "DEPOSITS_WOW_PCT"
	seriesStressIndex  = "STLFSI"
	seriesSilverSpot   = "SILVER_SPOT"
)

type ScoringService interface {
	// RunDaily recomputes and upserts the market-wide and per-bank score
	// snapshots for today.
	RunDaily(ctx context.Context) error
	LatestMarket(ctx context.Context) (*model.MarketRiskScore, error)
	LatestEntities(ctx context.Context) ([]model.EntityRiskScore, error)
	EntityHistory(ctx context.Context, entityID string, since time.Time) ([]model.EntityRiskScore, error)
}

type scoringService struct {
	log       *logger.Logger
	engine    *RiskEngine
	resolver  *resolver.Resolver
	eventRepo repository.EventRepository
	scoreRepo repository.ScoreRepository
	cache     cache.Cache
}

func NewScoringService(
	log *logger.Logger,
	engine *RiskEngine,
	res *resolver.Resolver,
	repo *repository.Repository,
	c cache.Cache,
) ScoringService {
	return &scoringService{
		log:       log,
		engine:    engine,
		resolver:  res,
		eventRepo: repo.EventRepo,
		scoreRepo: repo.ScoreRepo,
		cache:     c,
	}
}

func (s *scoringService) RunDaily(ctx context.Context) error {
	now := time.Now()
	scoreDate := utils.DateOnly(now)

	after := now.Add(-90 * 24 * time.Hour)
	events, err := s.eventRepo.Get(ctx, model.GetEventParam{After: &after})
	if err != nil {
		return fmt.Errorf("failed to load scoring window: %w", err)
	}

	funding := s.engine.FundingStress(buildFundingInputs(events))
	deliverability := s.engine.DeliverabilityStress(buildDeliverabilityInputs(events, now))

	// Market-wide enforcement heat looks at every official action.
	marketEnforcement := s.engine.EnforcementHeat(events, now)
	marketComposite := s.engine.Composite(funding, marketEnforcement, deliverability)

	explanation, err := json.Marshal(marketComposite)
	if err != nil {
		return fmt.Errorf("failed to marshal explanation: %w", err)
	}
	marketScore := &model.MarketRiskScore{
		ScoreDate:            scoreDate,
		FundingStress:        marketComposite.Funding,
		EnforcementHeat:      marketComposite.Enforcement,
		DeliverabilityStress: marketComposite.Deliverability,
		Composite:            marketComposite.Final,
		CascadeLevel:         marketComposite.CascadeLevel,
		Explanation:          explanation,
	}
	if err := s.scoreRepo.UpsertMarketScore(ctx, marketScore); err != nil {
		return fmt.Errorf("failed to upsert market score: %w", err)
	}
	s.cache.Set(common.KEY_LATEST_MARKET, marketScore, 0)

	s.log.InfoContext(ctx, "Market risk score updated",
		logger.Float64Field("composite", marketComposite.Final),
		logger.IntField("cascade_level", marketComposite.CascadeLevel),
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	for _, entity := range s.resolver.All() {
		if entity.Kind != model.EntityBank {
			continue
		}
		group.Go(func() error {
			if err := s.scoreEntity(groupCtx, entity, events, funding, deliverability, scoreDate, now); err != nil {
				s.log.ErrorContext(groupCtx, "Failed to score entity",
					logger.StringField("entity_id", entity.ID),
					logger.ErrorField(err),
				)
			}
			return nil
		})
	}
	return group.Wait()
}

func (s *scoringService) scoreEntity(
	ctx context.Context,
	entity model.Entity,
	events []model.Event,
	funding, deliverability dto.ComponentScore,
	scoreDate time.Time,
	now time.Time,
) error {
	var entityEvents []model.Event
	for _, event := range events {
		if event.EntityID != nil && *event.EntityID == entity.ID {
			entityEvents = append(entityEvents, event)
		}
	}

	enforcement := s.engine.EnforcementHeat(entityEvents, now)
	composite := s.engine.Composite(funding, enforcement, deliverability)

	explanation, err := json.Marshal(composite)
	if err != nil {
		return err
	}
	score := &model.EntityRiskScore{
		ScoreDate:            scoreDate,
		EntityID:             entity.ID,
		FundingStress:        composite.Funding,
		EnforcementHeat:      composite.Enforcement,
		DeliverabilityStress: composite.Deliverability,
		Composite:            composite.Final,
		CascadeLevel:         composite.CascadeLevel,
		Explanation:          explanation,
	}
	if err := s.scoreRepo.UpsertEntityScore(ctx, score); err != nil {
		return err
	}
	s.cache.Set(fmt.Sprintf(common.KEY_LATEST_ENTITY, entity.ID), score, 0)
	return nil
}

func (s *scoringService) LatestMarket(ctx context.Context) (*model.MarketRiskScore, error) {
	if v, ok := s.cache.Get(common.KEY_LATEST_MARKET); ok {
		if score, ok := v.(*model.MarketRiskScore); ok {
			return score, nil
		}
	}
	return s.scoreRepo.LatestMarketScore(ctx)
}

func (s *scoringService) LatestEntities(ctx context.Context) ([]model.EntityRiskScore, error) {
	return s.scoreRepo.LatestEntityScores(ctx)
}

func (s *scoringService) EntityHistory(ctx context.Context, entityID string, since time.Time) ([]model.EntityRiskScore, error) {
	return s.scoreRepo.EntityScoreHistory(ctx, entityID, since)
}

// buildFundingInputs folds the latest observation per Fed series into engine
// inputs. Events arrive ordered, the newest observation per series wins.
func buildFundingInputs(events []model.Event) dto.FundingInputs {
	var in dto.FundingInputs
	latest := make(map[string]time.Time)

	for _, event := range events {
		if event.Type != model.EventFedIndicator && event.Type != model.EventDepositFlow {
			continue
		}
		series := payloadString(event.Payload, "series_id")
		if event.Type == model.EventDepositFlow {
			series = seriesDepositTrend
		}
		if series == "" || !event.PublishedAt.After(latest[series]) {
			continue
		}
		latest[series] = event.PublishedAt

		value := payloadFloat(event.Payload, "value")
		switch series {
		case seriesCreditSpread:
			in.CreditSpreadBps = value
		case seriesRateSpread:
			in.RateSpreadBps = value
		case seriesFedFacility:
			in.FedFacilityUsageB = value
		case seriesDepositTrend:
			in.DepositTrendPct = value
		case seriesStressIndex:
			in.StressIndex = value
		}
	}
	return in
}

// buildDeliverabilityInputs derives tightness metrics from the latest silver
// warehouse report plus the trailing delivery-notice and dealer-premium flow.
func buildDeliverabilityInputs(events []model.Event, now time.Time) dto.DeliverabilityInputs {
	var in dto.DeliverabilityInputs
	var inventoryAt, premiumAt, spotAt time.Time
	var registeredOz, notices30, notices90 float64
	cutoff30 := now.Add(-30 * 24 * time.Hour)

	for _, event := range events {
		switch event.Type {
		case model.EventComexInventory:
			if !strings.EqualFold(payloadString(event.Payload, "metal"), "silver") {
				continue
			}
			if !event.PublishedAt.After(inventoryAt) {
				continue
			}
			inventoryAt = event.PublishedAt
			registeredOz = payloadFloat(event.Payload, "registered_oz")
			openInterest := payloadFloat(event.Payload, "open_interest_oz")
			if openInterest > 0 {
				in.CoverageRatio = registeredOz / openInterest
			}
			in.InventoryVelocityRatio = payloadFloat(event.Payload, "velocity_ratio")
		case model.EventDeliveryNotice:
			n := payloadFloat(event.Payload, "notices")
			notices90 += n
			if event.PublishedAt.After(cutoff30) {
				notices30 += n
			}
		case model.EventDealerPremium:
			if !event.PublishedAt.After(premiumAt) {
				continue
			}
			premiumAt = event.PublishedAt
			in.DealerPremiumPct = payloadFloat(event.Payload, "premium_pct")
			in.OutOfStockRate = payloadFloat(event.Payload, "out_of_stock_rate")
		case model.EventFedIndicator:
			if payloadString(event.Payload, "series_id") != seriesSilverSpot {
				continue
			}
			if !event.PublishedAt.After(spotAt) {
				continue
			}
			spotAt = event.PublishedAt
			in.SpotPrice = payloadFloat(event.Payload, "value")
		}
	}

	if baseline := notices90 / 3; baseline > 0 {
		in.DeliveryNoticeAccel = notices30 / baseline
	}
	// 5,000 oz per silver contract. Days of supply is registered stock over
	// the trailing delivery run-rate.
	if daily := notices30 / 30 * 5000; daily > 0 && registeredOz > 0 {
		in.DaysOfSupply = registeredOz / daily
	}
	return in
}

func payloadFloat(payload []byte, key string) float64 {
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		return 0
	}
	f, _ := m[key].(float64)
	return f
}
