package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"banksentinel/config"
	"banksentinel/internal/claims"
	"banksentinel/internal/dto"
	"banksentinel/internal/model"
	"banksentinel/internal/repository"
	"banksentinel/internal/resolver"
	"banksentinel/pkg/logger"

	"gorm.io/datatypes"
)

// Pipeline runs one collector end to end: fetch, parse, trust-route, resolve,
// hash, persist. One bad item never aborts the batch.
type Pipeline struct {
	cfg       config.ClaimsConfig
	log       *logger.Logger
	resolver  *resolver.Resolver
	extractor *claims.Extractor
	eventRepo repository.EventRepository
	claimRepo repository.ClaimRepository
}

func NewPipeline(
	cfg config.ClaimsConfig,
	log *logger.Logger,
	res *resolver.Resolver,
	extractor *claims.Extractor,
	eventRepo repository.EventRepository,
	claimRepo repository.ClaimRepository,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		log:       log,
		resolver:  res,
		extractor: extractor,
		eventRepo: eventRepo,
		claimRepo: claimRepo,
	}
}

func (p *Pipeline) Collect(ctx context.Context, c Collector, sourceID uint) (dto.CollectResult, error) {
	var result dto.CollectResult

	raws, err := c.Fetch(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch %s: %w", c.SourceName(), err)
	}

	policy := Classify(c.TrustTier())

	for _, raw := range raws {
		items, err := c.Parse(ctx, raw)
		if err != nil {
			result.Errors++
			p.log.WarnContext(ctx, "Failed to parse raw item",
				logger.StringField("source", c.SourceName()),
				logger.ErrorField(err),
			)
			continue
		}

		for _, item := range items {
			itemResult, err := p.processItem(ctx, item, policy, c, sourceID)
			if err != nil {
				result.Errors++
				p.log.WarnContext(ctx, "Failed to process parsed item",
					logger.StringField("source", c.SourceName()),
					logger.ErrorField(err),
				)
				continue
			}
			result.Add(itemResult)
		}
	}

	return result, nil
}

func (p *Pipeline) processItem(ctx context.Context, item dto.ParsedItem, policy YieldPolicy, c Collector, sourceID uint) (dto.CollectResult, error) {
	var result dto.CollectResult

	switch {
	case item.Event != nil:
		if !policy.Event {
			return result, fmt.Errorf("tier %d source %q emitted an event", c.TrustTier(), c.SourceName())
		}
		created, err := p.storeEvent(ctx, item.Event, sourceID)
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		} else {
			result.Duplicates++
		}

		// Tier 2: mirror the reported fact as a claim so it can be
		// cross-verified against later official events.
		if policy.Claim {
			mirrored, err := p.storeClaims(ctx, dto.ClaimDraft{
				Title:       item.Event.Title,
				Body:        item.Event.Summary,
				EntityHint:  item.Event.EntityHint,
				URL:         item.Event.URL,
				PublishedAt: item.Event.PublishedAt,
			}, sourceID, true)
			if err != nil {
				return result, err
			}
			result.Created += mirrored
		}

	case item.Claim != nil:
		if !policy.Claim {
			return result, fmt.Errorf("tier %d source %q emitted a claim", c.TrustTier(), c.SourceName())
		}
		created, err := p.storeClaims(ctx, *item.Claim, sourceID, false)
		if err != nil {
			return result, err
		}
		result.Created += created

	default:
		return result, fmt.Errorf("parsed item carries neither event nor claim")
	}

	return result, nil
}

func (p *Pipeline) storeEvent(ctx context.Context, draft *dto.EventDraft, sourceID uint) (bool, error) {
	payload, err := json.Marshal(draft.Payload)
	if err != nil {
		return false, fmt.Errorf("marshal event payload: %w", err)
	}

	var entityID *string
	if draft.EntityHint != "" {
		if entity := p.resolver.Resolve(draft.EntityHint); entity != nil {
			entityID = &entity.ID
		}
	}

	event := &model.Event{
		Type:        draft.Type,
		EntityID:    entityID,
		SourceID:    sourceID,
		Payload:     datatypes.JSON(payload),
		PublishedAt: draft.PublishedAt,
		ObservedAt:  time.Now(),
		ContentHash: model.ComputeContentHash(draft.Type, entityID, sourceID, payload, draft.PublishedAt),
	}

	return p.eventRepo.Insert(ctx, event)
}

// storeClaims extracts typed candidates from the draft and persists each as a
// scored claim. With fallback set (trusted-press mirrors), a draft that matches
// no pattern table is still stored as an untyped claim.
func (p *Pipeline) storeClaims(ctx context.Context, draft dto.ClaimDraft, sourceID uint, fallback bool) (int, error) {
	candidates := p.extractor.Extract(draft)
	if len(candidates) == 0 {
		if !fallback {
			return 0, nil
		}
		candidate := p.extractor.Fallback(draft)
		if candidate == nil {
			return 0, nil
		}
		candidates = []claims.Candidate{*candidate}
	}

	created := 0
	for _, candidate := range candidates {
		score, level := claims.Score(claims.Factors{
			AccountAgeDays: draft.AccountAgeDays,
			Engagement:     draft.Engagement,
			Evidence:       candidate.Evidence,
			Penalties:      candidate.Penalties,
		})

		var entityID *string
		if candidate.Entity != nil {
			entityID = &candidate.Entity.ID
		}

		claim := &model.Claim{
			Text:             candidate.Text,
			Type:             candidate.Type,
			EntityID:         entityID,
			SourceID:         sourceID,
			URL:              draft.URL,
			Author:           draft.Author,
			Engagement:       draft.Engagement,
			Credibility:      score,
			CredibilityLevel: level,
			Status:           p.initialStatus(score),
			StatusChangedAt:  time.Now(),
		}
		if err := p.claimRepo.Create(ctx, claim); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// initialStatus routes a fresh claim by credibility: below the triage
// threshold it stays new, below the corroboration threshold it is queued for
// triage, anything stronger goes straight to active corroboration.
func (p *Pipeline) initialStatus(credibility int) model.ClaimStatus {
	switch {
	case credibility < p.cfg.TriageThreshold:
		return model.StatusNew
	case credibility < p.cfg.CorroborationThreshold:
		return model.StatusTriage
	default:
		return model.StatusCorroborating
	}
}
