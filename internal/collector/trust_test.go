package collector

import (
	"testing"

	"banksentinel/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		tier model.TrustTier
		want YieldPolicy
	}{
		{name: "official yields event only", tier: model.TierOfficial, want: YieldPolicy{Event: true}},
		{name: "press yields event and claim", tier: model.TierPress, want: YieldPolicy{Event: true, Claim: true}},
		{name: "social yields claim only", tier: model.TierSocial, want: YieldPolicy{Claim: true}},
		{name: "unknown yields nothing", tier: model.TrustTier(9), want: YieldPolicy{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.tier))
		})
	}
}
