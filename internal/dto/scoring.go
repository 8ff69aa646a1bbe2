package dto

// ScoreDriver is one human-readable contributor to a component score.
type ScoreDriver struct {
	Label  string  `json:"label"`
	Points float64 `json:"points"`
}

// ComponentScore is the output of one scoring engine, capped at 100 with at
// most five drivers.
type ComponentScore struct {
	Score   float64       `json:"score"`
	Drivers []ScoreDriver `json:"drivers"`
}

// FundingInputs are the macro/liquidity observations feeding funding stress.
type FundingInputs struct {
	CreditSpreadBps   float64 `json:"credit_spread_bps"`
	RateSpreadBps     float64 `json:"rate_spread_bps"`
	FedFacilityUsageB float64 `json:"fed_facility_usage_b"`
	DepositTrendPct   float64 `json:"deposit_trend_pct"`
	StressIndex       float64 `json:"stress_index"`
}

// DeliverabilityInputs describe physical-market tightness.
type DeliverabilityInputs struct {
	CoverageRatio          float64 `json:"coverage_ratio"`
	DaysOfSupply           float64 `json:"days_of_supply"`
	DeliveryNoticeAccel    float64 `json:"delivery_notice_accel"`
	DealerPremiumPct       float64 `json:"dealer_premium_pct"`
	OutOfStockRate         float64 `json:"out_of_stock_rate"`
	InventoryVelocityRatio float64 `json:"inventory_velocity_ratio"`
	SpotPrice              float64 `json:"spot_price"`
}

// CompositeScore is the combined 0-10 risk with cascade amplification.
type CompositeScore struct {
	Funding        float64       `json:"funding"`
	Enforcement    float64       `json:"enforcement"`
	Deliverability float64       `json:"deliverability"`
	Base           float64       `json:"base"`
	CascadeLevel   int           `json:"cascade_level"`
	Multiplier     float64       `json:"multiplier"`
	Final          float64       `json:"final"`
	Drivers        []ScoreDriver `json:"drivers"`
}
