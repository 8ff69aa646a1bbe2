package claims

import (
	"testing"

	"banksentinel/internal/dto"
	"banksentinel/internal/model"
	"banksentinel/internal/resolver"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExtractor() *Extractor {
	return NewExtractor(resolver.New(resolver.SeedEntities()))
}

func TestExtract_TypedClaims(t *testing.T) {
	e := newExtractor()

	tests := []struct {
		name       string
		post       dto.ClaimDraft
		wantTypes  []model.ClaimType
		wantEntity string
	}{
		{
			name: "investigation with entity",
			post: dto.ClaimDraft{
				Title: "Meridian Trust under investigation",
				Body:  "Hearing from multiple people that Meridian Trust is being investigated by the OCC.",
			},
			wantTypes:  []model.ClaimType{model.ClaimInvestigation},
			wantEntity: "bank-meridian",
		},
		{
			name: "delivery needs no entity",
			post: dto.ClaimDraft{
				Title: "dealer says out of stock again",
				Body:  "third week in a row, premiums are spiking everywhere",
			},
			wantTypes: []model.ClaimType{model.ClaimDelivery},
		},
		{
			name: "nationalization without entity yields nothing",
			post: dto.ClaimDraft{
				Title: "nationalization coming",
				Body:  "the government takeover is near, mark my words",
			},
			wantTypes: nil,
		},
		{
			name: "multiple types one claim each",
			post: dto.ClaimDraft{
				Title: "First National bank run",
				Body:  "Withdrawals halted at First National, and executives are dumping shares.",
			},
			wantTypes:  []model.ClaimType{model.ClaimLiquidity, model.ClaimInsider},
			wantEntity: "bank-first-national",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.post)
			require.Len(t, got, len(tt.wantTypes))
			for i, want := range tt.wantTypes {
				assert.Equal(t, want, got[i].Type)
				if tt.wantEntity != "" {
					require.NotNil(t, got[i].Entity)
					assert.Equal(t, tt.wantEntity, got[i].Entity.ID)
				}
			}
		})
	}
}

func TestExtract_AtMostOneClaimPerType(t *testing.T) {
	e := newExtractor()

	got := e.Extract(dto.ClaimDraft{
		Title: "bank run everywhere",
		Body:  "bank run at one branch, another bank run downtown, withdrawals halted too",
	})

	require.Len(t, got, 1)
	assert.Equal(t, model.ClaimLiquidity, got[0].Type)
}

func TestExtract_MarkersDetected(t *testing.T) {
	e := newExtractor()

	got := e.Extract(dto.ClaimDraft{
		Title: "SHOCKING!! Meridian fraud exposed",
		Body:  "They don't want you to know. Court filing here: https://example.com/doc.pdf. It is guaranteed to collapse.",
	})

	require.NotEmpty(t, got)
	c := got[0]
	assert.True(t, c.Evidence.Document)
	assert.True(t, c.Evidence.Link)
	assert.True(t, c.Penalties.AbsoluteLanguage)
	assert.True(t, c.Penalties.Sensational)
	assert.True(t, c.Penalties.Conspiracy)
}

func TestFallback_UntypedCandidate(t *testing.T) {
	e := newExtractor()

	post := dto.ClaimDraft{
		Title: "Meridian Trust names new chief risk officer",
		Body:  "Press release: the appointment takes effect next quarter.",
	}
	require.Empty(t, e.Extract(post), "text must match no typed pattern")

	got := e.Fallback(post)
	require.NotNil(t, got)
	assert.Equal(t, model.ClaimOther, got.Type)
	require.NotNil(t, got.Entity)
	assert.Equal(t, "bank-meridian", got.Entity.ID)
	assert.True(t, got.Evidence.Document, "press release marker")

	assert.Nil(t, e.Fallback(dto.ClaimDraft{}), "empty post yields nothing")
}
