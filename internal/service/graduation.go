package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"banksentinel/config"
	"banksentinel/internal/model"
	"banksentinel/internal/repository"
	"banksentinel/pkg/logger"
	"banksentinel/pkg/utils"
)

// claimEventTypes maps a claim type to the official event types that can
// confirm it. Claim types with no entry can never graduate and only age out.
var claimEventTypes = map[model.ClaimType][]model.EventType{
	model.ClaimInvestigation:   {model.EventRegulatorAction, model.EventWellsNotice, model.EventSECFiling},
	model.ClaimNationalization: {model.EventBankFailure, model.EventRegulatorAction},
	model.ClaimLiquidity:       {model.EventBankFailure, model.EventDepositFlow, model.EventFedIndicator},
	model.ClaimDelivery:        {model.EventDeliveryNotice, model.EventComexInventory},
	model.ClaimFraud:           {model.EventEnforcementAction, model.EventRegulatorAction, model.EventSECFiling},
	model.ClaimInsider:         {model.EventSECFiling, model.EventEnforcementAction},
}

// highSignalEventTypes carry enough weight on their own to lift a match even
// without entity agreement.
var highSignalEventTypes = map[model.EventType]bool{
	model.EventBankFailure:       true,
	model.EventEnforcementAction: true,
	model.EventWellsNotice:       true,
}

type GraduationService interface {
	// Sweep matches open corroborating claims against confirming events and
	// expires claims past the staleness window.
	Sweep(ctx context.Context) (*SweepResult, error)
	// Debunk marks a claim refuted. Manual only, a sweep never debunks.
	Debunk(ctx context.Context, claimID uint) error
	// TriageQueue lists open claims for a human reviewer, most credible first.
	TriageQueue(ctx context.Context, limit int) ([]model.Claim, error)
}

type SweepResult struct {
	Evaluated int
	Confirmed int
	Staled    int
}

type graduationService struct {
	cfg       config.ClaimsConfig
	log       *logger.Logger
	claimRepo repository.ClaimRepository
	eventRepo repository.EventRepository
	corrRepo  repository.CorroborationRepository
	uow       repository.UnitOfWork
}

func NewGraduationService(
	cfg config.ClaimsConfig,
	log *logger.Logger,
	repo *repository.Repository,
) GraduationService {
	return &graduationService{
		cfg:       cfg,
		log:       log,
		claimRepo: repo.ClaimRepo,
		eventRepo: repo.EventRepo,
		corrRepo:  repo.CorroborationRepo,
		uow:       repo.UnitOfWork,
	}
}

func (s *graduationService) Sweep(ctx context.Context) (*SweepResult, error) {
	now := time.Now()
	result := &SweepResult{}

	claims, err := s.claimRepo.Get(ctx, model.GetClaimParam{
		Statuses: []model.ClaimStatus{model.StatusCorroborating},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load corroborating claims: %w", err)
	}

	for _, claim := range claims {
		if !utils.ShouldContinue(ctx, s.log) {
			return result, ctx.Err()
		}
		result.Evaluated++

		confirmed, err := s.corroborate(ctx, claim, now)
		if err != nil {
			s.log.ErrorContext(ctx, "Claim corroboration failed",
				logger.IntField("claim_id", int(claim.ID)),
				logger.ErrorField(err),
			)
			continue
		}
		if confirmed {
			result.Confirmed++
		}
	}

	staled, err := s.expireStale(ctx, now)
	if err != nil {
		return result, err
	}
	result.Staled = staled

	s.log.InfoContext(ctx, "Graduation sweep completed",
		logger.IntField("evaluated", result.Evaluated),
		logger.IntField("confirmed", result.Confirmed),
		logger.IntField("staled", result.Staled),
	)
	return result, nil
}

func (s *graduationService) corroborate(ctx context.Context, claim model.Claim, now time.Time) (bool, error) {
	eventTypes, ok := claimEventTypes[claim.Type]
	if !ok {
		return false, nil
	}

	// Events slightly before the claim still count: a rumor often trails the
	// first filing by hours.
	after := claim.CreatedAt.Add(-24 * time.Hour)
	before := claim.CreatedAt.Add(s.cfg.CorroborationWindow)
	if before.After(now) {
		before = now
	}
	events, err := s.eventRepo.Get(ctx, model.GetEventParam{
		Types:  eventTypes,
		After:  &after,
		Before: &before,
	})
	if err != nil {
		return false, fmt.Errorf("failed to load candidate events: %w", err)
	}

	var best *model.Corroboration
	for _, event := range events {
		confidence, reason := MatchConfidence(claim, event)
		if confidence < 0.5 {
			continue
		}
		if best == nil || confidence > best.Confidence {
			best = &model.Corroboration{
				ClaimID:    claim.ID,
				EventID:    event.ID,
				Confidence: confidence,
				Reason:     reason,
			}
		}
	}
	if best == nil {
		return false, nil
	}

	err = s.uow.Run(func(opts ...utils.DBOption) error {
		if err := s.corrRepo.Upsert(ctx, best, opts...); err != nil {
			return err
		}
		return s.claimRepo.UpdateStatus(ctx, claim.ID, model.StatusConfirmed, opts...)
	})
	if err != nil {
		return false, fmt.Errorf("failed to confirm claim: %w", err)
	}

	s.log.InfoContext(ctx, "Claim confirmed",
		logger.IntField("claim_id", int(claim.ID)),
		logger.IntField("event_id", int(best.EventID)),
		logger.Float64Field("confidence", best.Confidence),
	)
	return true, nil
}

func (s *graduationService) expireStale(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.cfg.StaleTimeout)
	claims, err := s.claimRepo.Get(ctx, model.GetClaimParam{
		Statuses: []model.ClaimStatus{
			model.StatusNew,
			model.StatusTriage,
			model.StatusCorroborating,
		},
		Before: &cutoff,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to load stale candidates: %w", err)
	}

	staled := 0
	for _, claim := range claims {
		if err := s.claimRepo.UpdateStatus(ctx, claim.ID, model.StatusStale); err != nil {
			s.log.ErrorContext(ctx, "Failed to stale claim",
				logger.IntField("claim_id", int(claim.ID)),
				logger.ErrorField(err),
			)
			continue
		}
		staled++
	}
	return staled, nil
}

func (s *graduationService) Debunk(ctx context.Context, claimID uint) error {
	claim, err := s.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		return fmt.Errorf("claim %d not found: %w", claimID, err)
	}
	if !claim.Status.Open() {
		return fmt.Errorf("claim %d is already %s", claimID, claim.Status)
	}
	return s.claimRepo.UpdateStatus(ctx, claimID, model.StatusDebunked)
}

func (s *graduationService) TriageQueue(ctx context.Context, limit int) ([]model.Claim, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.claimRepo.TriageQueue(ctx, limit)
}

// MatchConfidence scores how strongly one event confirms one claim. Below 0.5
// the pair is discarded.
func MatchConfidence(claim model.Claim, event model.Event) (float64, string) {
	confidence := 0.5
	reasons := []string{fmt.Sprintf("event type %s matches claim type %s", event.Type, claim.Type)}

	if claim.EntityID != nil && event.EntityID != nil {
		if *claim.EntityID == *event.EntityID {
			confidence += 0.3
			reasons = append(reasons, "same entity")
		} else {
			confidence -= 0.2
			reasons = append(reasons, "entity mismatch")
		}
	}

	if highSignalEventTypes[event.Type] {
		confidence += 0.1
		reasons = append(reasons, "high-signal event")
	}

	gap := event.PublishedAt.Sub(claim.CreatedAt)
	if gap < 0 {
		gap = -gap
	}
	if utils.SameDay(event.PublishedAt, claim.CreatedAt) {
		confidence += 0.1
		reasons = append(reasons, "same-day timing")
	} else if gap <= 48*time.Hour {
		confidence += 0.05
		reasons = append(reasons, "close timing")
	}

	if keywordOverlap(claim.Text, string(event.Payload)) >= 3 {
		confidence += 0.1
		reasons = append(reasons, "keyword overlap")
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence, strings.Join(reasons, "; ")
}

// keywordOverlap counts distinct words longer than four characters that appear
// in both texts.
func keywordOverlap(a, b string) int {
	words := func(text string) map[string]bool {
		set := make(map[string]bool)
		for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
		}) {
			if len(w) > 4 {
				set[w] = true
			}
		}
		return set
	}

	setA := words(a)
	overlap := 0
	for w := range words(b) {
		if setA[w] {
			overlap++
		}
	}
	return overlap
}
