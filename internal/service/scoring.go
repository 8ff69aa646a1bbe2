package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"banksentinel/config"
	"banksentinel/internal/dto"
	"banksentinel/internal/model"
)

const maxDrivers = 5

// enforcementSeverity weights an official action by how terminal it is.
var enforcementSeverity = map[model.EventType]float64{
	model.EventBankFailure:       25,
	model.EventEnforcementAction: 15,
	model.EventWellsNotice:       12,
	model.EventRegulatorAction:   8,
	model.EventSECFiling:         5,
}

// RiskEngine holds the pure scoring math. All methods are deterministic over
// their inputs, persistence and data assembly live in ScoringService.
type RiskEngine struct {
	weights config.ScoringConfig
}

func NewRiskEngine(weights config.ScoringConfig) *RiskEngine {
	return &RiskEngine{weights: weights}
}

// FundingStress scores system-wide funding and liquidity pressure 0-100.
func (e *RiskEngine) FundingStress(in dto.FundingInputs) dto.ComponentScore {
	var score componentBuilder

	switch {
	case in.CreditSpreadBps >= 500:
		score.add(30, "credit spreads at distressed levels (%.0f bps)", in.CreditSpreadBps)
	case in.CreditSpreadBps >= 350:
		score.add(22, "credit spreads sharply wide (%.0f bps)", in.CreditSpreadBps)
	case in.CreditSpreadBps >= 250:
		score.add(15, "credit spreads elevated (%.0f bps)", in.CreditSpreadBps)
	case in.CreditSpreadBps >= 150:
		score.add(8, "credit spreads above normal (%.0f bps)", in.CreditSpreadBps)
	}

	switch {
	case in.RateSpreadBps >= 100:
		score.add(20, "interbank rate spread stressed (%.0f bps)", in.RateSpreadBps)
	case in.RateSpreadBps >= 50:
		score.add(12, "interbank rate spread wide (%.0f bps)", in.RateSpreadBps)
	case in.RateSpreadBps >= 25:
		score.add(6, "interbank rate spread elevated (%.0f bps)", in.RateSpreadBps)
	}

	switch {
	case in.FedFacilityUsageB >= 100:
		score.add(20, "heavy Fed facility usage ($%.0fB)", in.FedFacilityUsageB)
	case in.FedFacilityUsageB >= 50:
		score.add(14, "significant Fed facility usage ($%.0fB)", in.FedFacilityUsageB)
	case in.FedFacilityUsageB >= 20:
		score.add(8, "elevated Fed facility usage ($%.0fB)", in.FedFacilityUsageB)
	case in.FedFacilityUsageB >= 5:
		score.add(4, "Fed facility usage above baseline ($%.0fB)", in.FedFacilityUsageB)
	}

	switch {
	case in.DepositTrendPct <= -10:
		score.add(20, "severe deposit outflows (%.1f%%)", in.DepositTrendPct)
	case in.DepositTrendPct <= -5:
		score.add(14, "sustained deposit outflows (%.1f%%)", in.DepositTrendPct)
	case in.DepositTrendPct <= -2:
		score.add(8, "deposit outflows (%.1f%%)", in.DepositTrendPct)
	case in.DepositTrendPct < 0:
		score.add(4, "mild deposit attrition (%.1f%%)", in.DepositTrendPct)
	}

	switch {
	case in.StressIndex >= 2:
		score.add(10, "financial stress index critical (%.2f)", in.StressIndex)
	case in.StressIndex >= 1:
		score.add(6, "financial stress index elevated (%.2f)", in.StressIndex)
	case in.StressIndex >= 0.5:
		score.add(3, "financial stress index above normal (%.2f)", in.StressIndex)
	}

	return score.build()
}

// EnforcementHeat scores regulatory pressure 0-100 from official actions in
// the trailing 90 days.
func (e *RiskEngine) EnforcementHeat(events []model.Event, now time.Time) dto.ComponentScore {
	var score componentBuilder

	cutoff30 := now.Add(-30 * 24 * time.Hour)
	cutoff90 := now.Add(-90 * 24 * time.Hour)

	var count30, count90 int
	var severityPoints float64
	agencies := make(map[string]bool)
	for _, event := range events {
		weight, ok := enforcementSeverity[event.Type]
		if !ok || event.PublishedAt.Before(cutoff90) {
			continue
		}
		count90++
		severityPoints += weight
		if event.PublishedAt.Before(cutoff30) {
			continue
		}
		count30++
		if agency := payloadString(event.Payload, "agency"); agency != "" {
			agencies[agency] = true
		}
	}
	if count90 == 0 {
		return score.build()
	}

	recencyPoints := float64(count30) * 6
	if recencyPoints > 30 {
		recencyPoints = 30
	}
	if recencyPoints > 0 {
		score.add(recencyPoints, "%d official actions in the last 30 days", count30)
	}

	if severityPoints > 40 {
		severityPoints = 40
	}
	score.add(severityPoints, "severity-weighted actions over 90 days")

	// Coordinated multi-agency action. The bonus is 30% of the marginal
	// boost, applied after the severity cap rather than inside it.
	if len(agencies) >= 2 {
		bonus := 0.3 * float64(len(agencies)-1) * 10
		score.add(bonus, "%d agencies acting in the same 30-day window", len(agencies))
	}

	// Tempo: is the last month running hotter than the 90-day average?
	monthlyBaseline := float64(count90) / 3
	if monthlyBaseline > 0 && count30 > 0 {
		ratio := float64(count30) / monthlyBaseline
		switch {
		case ratio >= 2:
			score.add(15, "action tempo accelerating sharply (%.1fx baseline)", ratio)
		case ratio >= 1.5:
			score.add(8, "action tempo accelerating (%.1fx baseline)", ratio)
		}
	}

	return score.build()
}

// DeliverabilityStress scores physical-delivery tightness 0-100. The additive
// components are multiplied by a spot-price band multiplier before capping:
// tightness at record prices reads worse than the same tightness in a quiet
// market.
func (e *RiskEngine) DeliverabilityStress(in dto.DeliverabilityInputs) dto.ComponentScore {
	var score componentBuilder

	switch {
	case in.CoverageRatio > 0 && in.CoverageRatio <= 0.05:
		score.add(30, "registered coverage critically thin (%.1f%% of open interest)", in.CoverageRatio*100)
	case in.CoverageRatio > 0 && in.CoverageRatio <= 0.10:
		score.add(22, "registered coverage very thin (%.1f%% of open interest)", in.CoverageRatio*100)
	case in.CoverageRatio > 0 && in.CoverageRatio <= 0.20:
		score.add(12, "registered coverage thin (%.1f%% of open interest)", in.CoverageRatio*100)
	case in.CoverageRatio > 0 && in.CoverageRatio <= 0.40:
		score.add(5, "registered coverage below comfort (%.1f%% of open interest)", in.CoverageRatio*100)
	}

	switch {
	case in.DaysOfSupply > 0 && in.DaysOfSupply <= 30:
		score.add(20, "under a month of deliverable supply (%.0f days)", in.DaysOfSupply)
	case in.DaysOfSupply > 0 && in.DaysOfSupply <= 60:
		score.add(14, "deliverable supply tight (%.0f days)", in.DaysOfSupply)
	case in.DaysOfSupply > 0 && in.DaysOfSupply <= 90:
		score.add(8, "deliverable supply below normal (%.0f days)", in.DaysOfSupply)
	case in.DaysOfSupply > 0 && in.DaysOfSupply <= 180:
		score.add(3, "deliverable supply trending down (%.0f days)", in.DaysOfSupply)
	}

	switch {
	case in.DeliveryNoticeAccel >= 3:
		score.add(15, "delivery notices surging (%.1fx baseline)", in.DeliveryNoticeAccel)
	case in.DeliveryNoticeAccel >= 2:
		score.add(10, "delivery notices accelerating (%.1fx baseline)", in.DeliveryNoticeAccel)
	case in.DeliveryNoticeAccel >= 1.5:
		score.add(5, "delivery notices above baseline (%.1fx)", in.DeliveryNoticeAccel)
	}

	switch {
	case in.DealerPremiumPct >= 30:
		score.add(15, "dealer premiums extreme (%.0f%% over spot)", in.DealerPremiumPct)
	case in.DealerPremiumPct >= 20:
		score.add(10, "dealer premiums very high (%.0f%% over spot)", in.DealerPremiumPct)
	case in.DealerPremiumPct >= 10:
		score.add(5, "dealer premiums elevated (%.0f%% over spot)", in.DealerPremiumPct)
	}

	switch {
	case in.OutOfStockRate >= 0.5:
		score.add(10, "retail widely out of stock (%.0f%%)", in.OutOfStockRate*100)
	case in.OutOfStockRate >= 0.25:
		score.add(6, "retail stockouts spreading (%.0f%%)", in.OutOfStockRate*100)
	case in.OutOfStockRate >= 0.1:
		score.add(3, "retail stockouts appearing (%.0f%%)", in.OutOfStockRate*100)
	}

	switch {
	case in.InventoryVelocityRatio >= 2:
		score.add(10, "warehouse outflows rapid (%.1fx baseline)", in.InventoryVelocityRatio)
	case in.InventoryVelocityRatio >= 1.5:
		score.add(6, "warehouse outflows elevated (%.1fx baseline)", in.InventoryVelocityRatio)
	}

	score.multiplier = priceBandMultiplier(in.SpotPrice)
	if score.multiplier > 1 {
		score.add(0, "price band multiplier %.2fx at spot %.2f", score.multiplier, in.SpotPrice)
	}
	return score.build()
}

// priceBandMultiplier scales deliverability stress as spot crosses
// psychologically significant silver price bands.
func priceBandMultiplier(spot float64) float64 {
	switch {
	case spot >= 75:
		return 1.5
	case spot >= 50:
		return 1.4
	case spot >= 40:
		return 1.25
	case spot >= 30:
		return 1.1
	default:
		return 1.0
	}
}

// Composite combines the three 0-100 component scores into the 0-10 composite
// with cascade amplification. Convergent stress vectors amplify each other:
// one extreme plus two high reads worse than the weighted sum suggests.
func (e *RiskEngine) Composite(funding, enforcement, deliverability dto.ComponentScore) dto.CompositeScore {
	out := dto.CompositeScore{
		Funding:        funding.Score,
		Enforcement:    enforcement.Score,
		Deliverability: deliverability.Score,
		Multiplier:     1.0,
	}

	out.Base = funding.Score/10*e.weights.FundingWeight +
		enforcement.Score/10*e.weights.EnforcementWeight +
		deliverability.Score/10*e.weights.DeliverabilityWeight

	var high, extreme int
	for _, s := range []float64{funding.Score, enforcement.Score, deliverability.Score} {
		if s >= 50 {
			high++
		}
		if s >= 70 {
			extreme++
		}
	}
	switch {
	case extreme >= 1 && high >= 2:
		out.CascadeLevel = 2
		out.Multiplier = 1.3
	case high >= 2:
		out.CascadeLevel = 1
		out.Multiplier = 1.2
	}

	out.Final = out.Base * out.Multiplier
	if out.Final > 10 {
		out.Final = 10
	}

	out.Drivers = topDrivers(funding.Drivers, enforcement.Drivers, deliverability.Drivers)
	return out
}

// componentBuilder accumulates weighted contributions for one engine.
type componentBuilder struct {
	total      float64
	multiplier float64
	drivers    []dto.ScoreDriver
}

func (b *componentBuilder) add(points float64, format string, args ...any) {
	b.total += points
	b.drivers = append(b.drivers, dto.ScoreDriver{
		Label:  fmt.Sprintf(format, args...),
		Points: points,
	})
}

func (b *componentBuilder) build() dto.ComponentScore {
	score := b.total
	if b.multiplier > 1 {
		score *= b.multiplier
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return dto.ComponentScore{
		Score:   score,
		Drivers: topDrivers(b.drivers),
	}
}

// topDrivers merges driver lists, keeping the five largest contributions.
func topDrivers(lists ...[]dto.ScoreDriver) []dto.ScoreDriver {
	var merged []dto.ScoreDriver
	for _, list := range lists {
		merged = append(merged, list...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Points > merged[j].Points
	})
	if len(merged) > maxDrivers {
		merged = merged[:maxDrivers]
	}
	return merged
}

func payloadString(payload []byte, key string) string {
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
