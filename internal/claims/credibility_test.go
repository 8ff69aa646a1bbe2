package claims

import (
	"testing"

	"banksentinel/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestScore_Base(t *testing.T) {
	score, level := Score(Factors{})
	assert.Equal(t, 15, score)
	assert.Equal(t, model.CredibilityVeryLow, level)
}

func TestScore_PositiveFactorsNeverDecrease(t *testing.T) {
	base := Factors{AccountAgeDays: 100, Engagement: 20}
	baseScore, _ := Score(base)

	additions := []struct {
		name string
		f    Factors
	}{
		{name: "older account", f: Factors{AccountAgeDays: 2000, Engagement: 20}},
		{name: "more engagement", f: Factors{AccountAgeDays: 100, Engagement: 5000}},
		{name: "document evidence", f: Factors{AccountAgeDays: 100, Engagement: 20, Evidence: Evidence{Document: true}}},
		{name: "official source", f: Factors{AccountAgeDays: 100, Engagement: 20, Evidence: Evidence{OfficialSource: true}}},
		{name: "corroboration", f: Factors{AccountAgeDays: 100, Engagement: 20, CorroboratingSources: 2}},
	}
	for _, tt := range additions {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Score(tt.f)
			assert.GreaterOrEqual(t, got, baseScore)
		})
	}
}

func TestScore_PenaltiesNeverIncrease(t *testing.T) {
	base := Factors{AccountAgeDays: 400, Engagement: 300, Evidence: Evidence{Link: true}}
	baseScore, _ := Score(base)

	penalized := []Factors{
		{AccountAgeDays: 400, Engagement: 300, Evidence: Evidence{Link: true}, Penalties: Penalties{AbsoluteLanguage: true}},
		{AccountAgeDays: 400, Engagement: 300, Evidence: Evidence{Link: true}, Penalties: Penalties{Sensational: true}},
		{AccountAgeDays: 400, Engagement: 300, Evidence: Evidence{Link: true}, Penalties: Penalties{Conspiracy: true}},
		{AccountAgeDays: 5, Engagement: 300, Evidence: Evidence{Link: true}}, // new account
	}
	for _, f := range penalized {
		got, _ := Score(f)
		assert.LessOrEqual(t, got, baseScore)
	}
}

func TestScore_ClampedToRange(t *testing.T) {
	low, _ := Score(Factors{
		AccountAgeDays: 3,
		Penalties:      Penalties{AbsoluteLanguage: true, Sensational: true, Conspiracy: true},
	})
	assert.GreaterOrEqual(t, low, 0)

	high, level := Score(Factors{
		AccountAgeDays:       5000,
		Engagement:           100000,
		CorroboratingSources: 10,
		Evidence:             Evidence{Document: true, OfficialSource: true, Link: true},
	})
	assert.LessOrEqual(t, high, 100)
	assert.Equal(t, model.CredibilityHigh, level)
}

func TestLevel_Thresholds(t *testing.T) {
	tests := []struct {
		score int
		want  model.CredibilityLevel
	}{
		{score: 80, want: model.CredibilityHigh},
		{score: 79, want: model.CredibilityMedium},
		{score: 60, want: model.CredibilityMedium},
		{score: 59, want: model.CredibilityLow},
		{score: 40, want: model.CredibilityLow},
		{score: 39, want: model.CredibilityVeryLow},
		{score: 0, want: model.CredibilityVeryLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Level(tt.score))
	}
}
