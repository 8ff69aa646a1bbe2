package service

import (
	"context"
	"testing"
	"time"

	"banksentinel/config"
	"banksentinel/internal/model"
	"banksentinel/internal/repository"
	"banksentinel/pkg/logger"
	"banksentinel/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memClaimStore struct {
	claims map[uint]*model.Claim
}

func newMemClaimStore(claims ...model.Claim) *memClaimStore {
	s := &memClaimStore{claims: make(map[uint]*model.Claim)}
	for i := range claims {
		c := claims[i]
		s.claims[c.ID] = &c
	}
	return s
}

func (s *memClaimStore) Create(_ context.Context, claim *model.Claim, _ ...utils.DBOption) error {
	claim.ID = uint(len(s.claims) + 1)
	s.claims[claim.ID] = claim
	return nil
}

func (s *memClaimStore) UpdateStatus(_ context.Context, claimID uint, status model.ClaimStatus, _ ...utils.DBOption) error {
	claim, ok := s.claims[claimID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	claim.Status = status
	claim.StatusChangedAt = time.Now()
	return nil
}

func (s *memClaimStore) Get(_ context.Context, param model.GetClaimParam, _ ...utils.DBOption) ([]model.Claim, error) {
	var out []model.Claim
	for _, claim := range s.claims {
		if len(param.Statuses) > 0 && !containsStatus(param.Statuses, claim.Status) {
			continue
		}
		if param.Before != nil && claim.CreatedAt.After(*param.Before) {
			continue
		}
		if param.After != nil && claim.CreatedAt.Before(*param.After) {
			continue
		}
		out = append(out, *claim)
	}
	return out, nil
}

func (s *memClaimStore) TriageQueue(_ context.Context, _ int) ([]model.Claim, error) {
	return nil, nil
}

func (s *memClaimStore) FindByID(_ context.Context, id uint) (*model.Claim, error) {
	claim, ok := s.claims[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return claim, nil
}

func containsStatus(statuses []model.ClaimStatus, status model.ClaimStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type memEventStore struct {
	events []model.Event
}

func (s *memEventStore) Insert(_ context.Context, event *model.Event, _ ...utils.DBOption) (bool, error) {
	event.ID = uint(len(s.events) + 1)
	s.events = append(s.events, *event)
	return true, nil
}

func (s *memEventStore) Get(_ context.Context, param model.GetEventParam, _ ...utils.DBOption) ([]model.Event, error) {
	var out []model.Event
	for _, event := range s.events {
		if len(param.Types) > 0 && !containsEventType(param.Types, event.Type) {
			continue
		}
		if param.After != nil && event.PublishedAt.Before(*param.After) {
			continue
		}
		if param.Before != nil && event.PublishedAt.After(*param.Before) {
			continue
		}
		out = append(out, event)
	}
	return out, nil
}

func (s *memEventStore) Count(ctx context.Context, param model.GetEventParam) (int64, error) {
	events, _ := s.Get(ctx, param)
	return int64(len(events)), nil
}

func containsEventType(types []model.EventType, t model.EventType) bool {
	for _, et := range types {
		if et == t {
			return true
		}
	}
	return false
}

type memCorroborationStore struct {
	rows []model.Corroboration
}

func (s *memCorroborationStore) Upsert(_ context.Context, c *model.Corroboration, _ ...utils.DBOption) error {
	s.rows = append(s.rows, *c)
	return nil
}

func (s *memCorroborationStore) GetByClaim(_ context.Context, claimID uint) ([]model.Corroboration, error) {
	var out []model.Corroboration
	for _, row := range s.rows {
		if row.ClaimID == claimID {
			out = append(out, row)
		}
	}
	return out, nil
}

type passthroughUOW struct{}

func (passthroughUOW) Begin() *gorm.DB   { return nil }
func (passthroughUOW) Commit() error     { return nil }
func (passthroughUOW) Rollback() error   { return nil }
func (passthroughUOW) Run(fn func(opts ...utils.DBOption) error) error {
	return fn()
}

func newTestGraduation(claims *memClaimStore, events *memEventStore, corrs *memCorroborationStore) GraduationService {
	cfg := config.ClaimsConfig{
		TriageThreshold:        40,
		CorroborationThreshold: 60,
		CorroborationWindow:    7 * 24 * time.Hour,
		StaleTimeout:           7 * 24 * time.Hour,
	}
	return &graduationService{
		cfg:       cfg,
		log:       logger.NewNop(),
		claimRepo: claims,
		eventRepo: events,
		corrRepo:  corrs,
		uow:       passthroughUOW{},
	}
}

var _ repository.ClaimRepository = (*memClaimStore)(nil)
var _ repository.EventRepository = (*memEventStore)(nil)
var _ repository.CorroborationRepository = (*memCorroborationStore)(nil)
var _ repository.UnitOfWork = passthroughUOW{}

func TestSweep_ConfirmsClaimAgainstMatchingEvent(t *testing.T) {
	entity := "bank-meridian"
	now := time.Now()

	claims := newMemClaimStore(model.Claim{
		ID:        1,
		Text:      "Meridian Trust is under federal investigation for wire fraud",
		Type:      model.ClaimInvestigation,
		EntityID:  &entity,
		Status:    model.StatusCorroborating,
		CreatedAt: now.Add(-48 * time.Hour),
	})
	events := &memEventStore{events: []model.Event{{
		ID:          10,
		Type:        model.EventRegulatorAction,
		EntityID:    &entity,
		Payload:     []byte(`{"title":"OCC opens formal investigation into Meridian Trust"}`),
		PublishedAt: now.Add(-time.Hour),
	}}}
	corrs := &memCorroborationStore{}

	result, err := newTestGraduation(claims, events, corrs).Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Evaluated)
	assert.Equal(t, 1, result.Confirmed)
	assert.Equal(t, model.StatusConfirmed, claims.claims[1].Status)

	require.Len(t, corrs.rows, 1)
	assert.Equal(t, uint(1), corrs.rows[0].ClaimID)
	assert.Equal(t, uint(10), corrs.rows[0].EventID)
	assert.GreaterOrEqual(t, corrs.rows[0].Confidence, 0.5)
}

func TestSweep_EntityMismatchBlocksWeakMatch(t *testing.T) {
	claimEntity := "bank-meridian"
	eventEntity := "bank-first-national"
	now := time.Now()

	claims := newMemClaimStore(model.Claim{
		ID:        1,
		Text:      "Meridian Trust is under investigation",
		Type:      model.ClaimInvestigation,
		EntityID:  &claimEntity,
		Status:    model.StatusCorroborating,
		CreatedAt: now.Add(-72 * time.Hour),
	})
	// Wrong bank, distant timing, no keyword overlap: 0.5 - 0.2 < 0.5.
	events := &memEventStore{events: []model.Event{{
		ID:          10,
		Type:        model.EventSECFiling,
		EntityID:    &eventEntity,
		Payload:     []byte(`{"form":"8-K"}`),
		PublishedAt: now.Add(-time.Hour),
	}}}
	corrs := &memCorroborationStore{}

	result, err := newTestGraduation(claims, events, corrs).Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Confirmed)
	assert.Equal(t, model.StatusCorroborating, claims.claims[1].Status)
	assert.Empty(t, corrs.rows)
}

func TestSweep_StalesExpiredClaims(t *testing.T) {
	now := time.Now()

	claims := newMemClaimStore(
		model.Claim{
			ID:        1,
			Text:      "old unconfirmed rumor",
			Type:      model.ClaimLiquidity,
			Status:    model.StatusNew,
			CreatedAt: now.Add(-10 * 24 * time.Hour),
		},
		model.Claim{
			ID:        2,
			Text:      "fresh rumor",
			Type:      model.ClaimLiquidity,
			Status:    model.StatusNew,
			CreatedAt: now.Add(-time.Hour),
		},
	)

	result, err := newTestGraduation(claims, &memEventStore{}, &memCorroborationStore{}).Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Staled)
	assert.Equal(t, model.StatusStale, claims.claims[1].Status)
	assert.Equal(t, model.StatusNew, claims.claims[2].Status)
}

func TestSweep_PriceTargetClaimsNeverGraduate(t *testing.T) {
	now := time.Now()

	claims := newMemClaimStore(model.Claim{
		ID:        1,
		Text:      "silver to $100 by friday",
		Type:      model.ClaimPriceTarget,
		Status:    model.StatusCorroborating,
		CreatedAt: now.Add(-time.Hour),
	})
	events := &memEventStore{events: []model.Event{{
		ID:          10,
		Type:        model.EventComexInventory,
		Payload:     []byte(`{"metal":"silver"}`),
		PublishedAt: now,
	}}}

	result, err := newTestGraduation(claims, events, &memCorroborationStore{}).Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Confirmed)
	assert.Equal(t, model.StatusCorroborating, claims.claims[1].Status)
}

func TestDebunk(t *testing.T) {
	claims := newMemClaimStore(
		model.Claim{ID: 1, Status: model.StatusTriage, CreatedAt: time.Now()},
		model.Claim{ID: 2, Status: model.StatusConfirmed, CreatedAt: time.Now()},
	)
	svc := newTestGraduation(claims, &memEventStore{}, &memCorroborationStore{})

	require.NoError(t, svc.Debunk(context.Background(), 1))
	assert.Equal(t, model.StatusDebunked, claims.claims[1].Status)

	assert.Error(t, svc.Debunk(context.Background(), 2), "terminal claims cannot be debunked")
	assert.Error(t, svc.Debunk(context.Background(), 99))
}

func TestMatchConfidence(t *testing.T) {
	entity := "bank-meridian"
	other := "bank-first-national"
	now := time.Now()

	claim := model.Claim{
		Text:      "Meridian Trust facing formal investigation over wire transfers",
		Type:      model.ClaimInvestigation,
		EntityID:  &entity,
		CreatedAt: now,
	}

	tests := []struct {
		name  string
		event model.Event
		want  float64
	}{
		{
			name: "base match only",
			event: model.Event{
				Type:        model.EventRegulatorAction,
				Payload:     []byte(`{}`),
				PublishedAt: now.Add(5 * 24 * time.Hour),
			},
			want: 0.5,
		},
		{
			name: "same entity same day",
			event: model.Event{
				Type:        model.EventRegulatorAction,
				EntityID:    &entity,
				Payload:     []byte(`{}`),
				PublishedAt: now,
			},
			want: 0.9,
		},
		{
			name: "entity mismatch",
			event: model.Event{
				Type:        model.EventRegulatorAction,
				EntityID:    &other,
				Payload:     []byte(`{}`),
				PublishedAt: now.Add(5 * 24 * time.Hour),
			},
			want: 0.3,
		},
		{
			name: "high-signal event close timing",
			event: model.Event{
				Type:        model.EventWellsNotice,
				Payload:     []byte(`{}`),
				PublishedAt: now.Add(36 * time.Hour),
			},
			want: 0.65,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := MatchConfidence(claim, tt.event)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestMatchConfidence_KeywordOverlap(t *testing.T) {
	now := time.Now()
	claim := model.Claim{
		Text:      "regulators investigating meridian over fraudulent wire transfers and laundering",
		Type:      model.ClaimInvestigation,
		CreatedAt: now,
	}
	event := model.Event{
		Type:        model.EventRegulatorAction,
		Payload:     []byte(`{"title":"investigating fraudulent transfers and laundering at meridian"}`),
		PublishedAt: now.Add(5 * 24 * time.Hour),
	}

	got, reason := MatchConfidence(claim, event)
	assert.InDelta(t, 0.6, got, 1e-9)
	assert.Contains(t, reason, "keyword overlap")
}

func TestMatchConfidence_ClampedAtOne(t *testing.T) {
	entity := "bank-meridian"
	now := time.Now()
	claim := model.Claim{
		Text:      "meridian failure imminent depositors locked out branches closed",
		Type:      model.ClaimLiquidity,
		EntityID:  &entity,
		CreatedAt: now,
	}
	event := model.Event{
		Type:        model.EventBankFailure,
		EntityID:    &entity,
		Payload:     []byte(`{"title":"meridian failure: depositors locked out, branches closed"}`),
		PublishedAt: now,
	}

	got, _ := MatchConfidence(claim, event)
	assert.Equal(t, 1.0, got)
}
