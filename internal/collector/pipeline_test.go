package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"banksentinel/config"
	"banksentinel/internal/claims"
	"banksentinel/internal/dto"
	"banksentinel/internal/model"
	"banksentinel/internal/resolver"
	"banksentinel/pkg/logger"
	"banksentinel/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memEventRepo struct {
	events map[string]model.Event
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[string]model.Event)}
}

func (m *memEventRepo) Insert(ctx context.Context, event *model.Event, opts ...utils.DBOption) (bool, error) {
	if _, exists := m.events[event.ContentHash]; exists {
		return false, nil
	}
	event.ID = uint(len(m.events) + 1)
	m.events[event.ContentHash] = *event
	return true, nil
}

func (m *memEventRepo) Get(ctx context.Context, param model.GetEventParam, opts ...utils.DBOption) ([]model.Event, error) {
	var out []model.Event
	for _, e := range m.events {
		out = append(out, e)
	}
	return out, nil
}

func (m *memEventRepo) Count(ctx context.Context, param model.GetEventParam) (int64, error) {
	return int64(len(m.events)), nil
}

type memClaimRepo struct {
	claims []model.Claim
}

func (m *memClaimRepo) Create(ctx context.Context, claim *model.Claim, opts ...utils.DBOption) error {
	claim.ID = uint(len(m.claims) + 1)
	m.claims = append(m.claims, *claim)
	return nil
}

func (m *memClaimRepo) UpdateStatus(ctx context.Context, claimID uint, status model.ClaimStatus, opts ...utils.DBOption) error {
	return nil
}

func (m *memClaimRepo) Get(ctx context.Context, param model.GetClaimParam, opts ...utils.DBOption) ([]model.Claim, error) {
	return m.claims, nil
}

func (m *memClaimRepo) TriageQueue(ctx context.Context, limit int) ([]model.Claim, error) {
	return m.claims, nil
}

func (m *memClaimRepo) FindByID(ctx context.Context, id uint) (*model.Claim, error) {
	return nil, errors.New("not found")
}

type stubCollector struct {
	name  string
	tier  model.TrustTier
	raws  []dto.RawItem
	items map[int][]dto.ParsedItem
	errAt map[int]error
}

func (s *stubCollector) SourceName() string          { return s.name }
func (s *stubCollector) TrustTier() model.TrustTier  { return s.tier }
func (s *stubCollector) FrequencyMinutes() int       { return 10 }
func (s *stubCollector) Fetch(ctx context.Context) ([]dto.RawItem, error) {
	return s.raws, nil
}
func (s *stubCollector) Parse(ctx context.Context, raw dto.RawItem) ([]dto.ParsedItem, error) {
	idx := int(raw.Data[0])
	if err, ok := s.errAt[idx]; ok {
		return nil, err
	}
	return s.items[idx], nil
}

func newTestPipeline(t *testing.T, events *memEventRepo, claimsRepo *memClaimRepo) *Pipeline {
	t.Helper()
	log, err := logger.New(&config.Config{Log: config.Logger{Level: "error", Encoding: "console"}})
	require.NoError(t, err)
	res := resolver.New(resolver.SeedEntities())
	return NewPipeline(
		config.ClaimsConfig{TriageThreshold: 40, CorroborationThreshold: 60},
		log, res, claims.NewExtractor(res), events, claimsRepo,
	)
}

func eventDraft(title string, published time.Time) dto.ParsedItem {
	return dto.NewEventItem(dto.EventDraft{
		Type:        model.EventRegulatorAction,
		EntityHint:  "Meridian Trust",
		Payload:     map[string]interface{}{"title": title},
		PublishedAt: published,
		Title:       title,
	})
}

func TestCollect_Tier1CreatesEventsAndDeduplicates(t *testing.T) {
	events := newMemEventRepo()
	claimsRepo := &memClaimRepo{}
	p := newTestPipeline(t, events, claimsRepo)

	published := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	c := &stubCollector{
		name: "regulator_press_feed",
		tier: model.TierOfficial,
		raws: []dto.RawItem{{Data: []byte{0}}},
		items: map[int][]dto.ParsedItem{
			0: {
				eventDraft("Consent order issued", published),
				eventDraft("Consent order issued", published), // same fact twice
			},
		},
	}

	result, err := p.Collect(context.Background(), c, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 0, result.Errors)
	assert.Len(t, events.events, 1)
	assert.Empty(t, claimsRepo.claims, "tier 1 must never produce claims")
}

func TestCollect_Tier2MirrorsClaim(t *testing.T) {
	events := newMemEventRepo()
	claimsRepo := &memClaimRepo{}
	p := newTestPipeline(t, events, claimsRepo)

	c := &stubCollector{
		name: "financial_newswire",
		tier: model.TierPress,
		raws: []dto.RawItem{{Data: []byte{0}}},
		items: map[int][]dto.ParsedItem{
			0: {dto.NewEventItem(dto.EventDraft{
				Type:        model.EventNewsReport,
				EntityHint:  "Meridian Trust",
				Payload:     map[string]interface{}{"title": "investigation"},
				PublishedAt: time.Now().Add(-time.Hour),
				Title:       "Meridian Trust under investigation by OCC",
				Summary:     "Sources say regulators are looking into Meridian Trust.",
			})},
		},
	}

	result, err := p.Collect(context.Background(), c, 2)
	require.NoError(t, err)

	assert.Len(t, events.events, 1)
	require.Len(t, claimsRepo.claims, 1)
	assert.Equal(t, model.ClaimInvestigation, claimsRepo.claims[0].Type)
	assert.Equal(t, 2, result.Created)
}

// A press article that fits no claim-type pattern still has to leave a mirror
// claim behind, otherwise the corroboration loop never sees it.
func TestCollect_Tier2UnmatchedArticleMirrorsUntypedClaim(t *testing.T) {
	events := newMemEventRepo()
	claimsRepo := &memClaimRepo{}
	p := newTestPipeline(t, events, claimsRepo)

	c := &stubCollector{
		name: "financial_newswire",
		tier: model.TierPress,
		raws: []dto.RawItem{{Data: []byte{0}}},
		items: map[int][]dto.ParsedItem{
			0: {dto.NewEventItem(dto.EventDraft{
				Type:        model.EventNewsReport,
				EntityHint:  "Meridian Trust",
				Payload:     map[string]interface{}{"title": "earnings"},
				PublishedAt: time.Now().Add(-time.Hour),
				Title:       "Meridian Trust names new chief risk officer",
				Summary:     "The appointment takes effect next quarter.",
			})},
		},
	}

	result, err := p.Collect(context.Background(), c, 2)
	require.NoError(t, err)

	assert.Len(t, events.events, 1)
	require.Len(t, claimsRepo.claims, 1)
	assert.Equal(t, model.ClaimOther, claimsRepo.claims[0].Type)
	require.NotNil(t, claimsRepo.claims[0].EntityID)
	assert.Equal(t, "bank-meridian", *claimsRepo.claims[0].EntityID)
	assert.Equal(t, 2, result.Created)
}

func TestCollect_Tier3ClaimOnlyWithRouting(t *testing.T) {
	events := newMemEventRepo()
	claimsRepo := &memClaimRepo{}
	p := newTestPipeline(t, events, claimsRepo)

	c := &stubCollector{
		name: "social_firehose",
		tier: model.TierSocial,
		raws: []dto.RawItem{{Data: []byte{0}}},
		items: map[int][]dto.ParsedItem{
			0: {dto.NewClaimItem(dto.ClaimDraft{
				Title:          "bank run at First National",
				Body:           "Line around the block, withdrawals halted. Court filing: https://example.gov/order.pdf",
				Author:         "tipster",
				AccountAgeDays: 2000,
				Engagement:     1200,
			})},
		},
	}

	_, err := p.Collect(context.Background(), c, 3)
	require.NoError(t, err)

	assert.Empty(t, events.events, "tier 3 must never produce events")
	require.Len(t, claimsRepo.claims, 1)

	claim := claimsRepo.claims[0]
	assert.Equal(t, model.ClaimLiquidity, claim.Type)
	assert.GreaterOrEqual(t, claim.Credibility, 60)
	assert.Equal(t, model.StatusCorroborating, claim.Status)
}

func TestCollect_LowCredibilityClaimStaysNew(t *testing.T) {
	events := newMemEventRepo()
	claimsRepo := &memClaimRepo{}
	p := newTestPipeline(t, events, claimsRepo)

	c := &stubCollector{
		name: "social_firehose",
		tier: model.TierSocial,
		raws: []dto.RawItem{{Data: []byte{0}}},
		items: map[int][]dto.ParsedItem{
			0: {dto.NewClaimItem(dto.ClaimDraft{
				Title:          "WAKE UP!! guaranteed bank run coming",
				Body:           "they don't want you to know, the cabal is behind it all",
				AccountAgeDays: 5,
			})},
		},
	}

	_, err := p.Collect(context.Background(), c, 3)
	require.NoError(t, err)

	require.Len(t, claimsRepo.claims, 1)
	assert.Less(t, claimsRepo.claims[0].Credibility, 40)
	assert.Equal(t, model.StatusNew, claimsRepo.claims[0].Status)
}

func TestCollect_FailingItemDoesNotAbortBatch(t *testing.T) {
	events := newMemEventRepo()
	claimsRepo := &memClaimRepo{}
	p := newTestPipeline(t, events, claimsRepo)

	published := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	c := &stubCollector{
		name: "regulator_press_feed",
		tier: model.TierOfficial,
		raws: []dto.RawItem{{Data: []byte{0}}, {Data: []byte{1}}, {Data: []byte{2}}},
		items: map[int][]dto.ParsedItem{
			0: {eventDraft("first", published)},
			2: {eventDraft("third", published)},
		},
		errAt: map[int]error{1: errors.New("malformed entry")},
	}

	result, err := p.Collect(context.Background(), c, 1)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Errors)
}
