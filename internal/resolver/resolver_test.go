package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_ExactMatchWins(t *testing.T) {
	r := New(SeedEntities())

	tests := []struct {
		name       string
		identifier string
		wantID     string
	}{
		{name: "entity id", identifier: "bank-meridian", wantID: "bank-meridian"},
		{name: "registry id", identifier: "FDIC-4801", wantID: "bank-first-national"},
		{name: "ticker", identifier: "MRT", wantID: "bank-meridian"},
		{name: "alias case insensitive", identifier: "paccom", wantID: "bank-pacific-commerce"},
		{name: "display name", identifier: "Silver", wantID: "metal-silver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := r.Resolve(tt.identifier)
			require.NotNil(t, e)
			assert.Equal(t, tt.wantID, e.ID)
		})
	}
}

func TestResolver_SubstringFallback(t *testing.T) {
	r := New(SeedEntities())

	e := r.Resolve("Meridian Trust Company N.A.")
	require.NotNil(t, e)
	assert.Equal(t, "bank-meridian", e.ID)
}

func TestResolver_UnresolvableReturnsNil(t *testing.T) {
	r := New(SeedEntities())
	assert.Nil(t, r.Resolve("Totally Unknown Credit Union"))
	assert.Nil(t, r.Resolve(""))
}

func TestResolver_ResolveInText(t *testing.T) {
	r := New(SeedEntities())

	e := r.ResolveInText("BREAKING: regulators said to visit Pacific Commerce offices")
	require.NotNil(t, e)
	assert.Equal(t, "bank-pacific-commerce", e.ID)

	assert.Nil(t, r.ResolveInText("nothing of interest happened today"))
}

func TestResolver_TickerNeedsWordBoundary(t *testing.T) {
	r := New(SeedEntities())

	// "si" inside a word must not match the SI silver ticker.
	assert.Nil(t, r.ResolveInText("a simple transition on the basis of nothing"))

	e := r.ResolveInText("SI futures jumped overnight")
	require.NotNil(t, e)
	assert.Equal(t, "metal-silver", e.ID)
}
