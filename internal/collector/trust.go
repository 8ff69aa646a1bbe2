package collector

import "banksentinel/internal/model"

// YieldPolicy states what a source's parsed items may become. This is the
// single policy point deciding verifiability downstream: Tier 1 output is
// fact, Tier 2 is fact plus a mirrored claim for cross-verification, Tier 3
// is claim only.
type YieldPolicy struct {
	Event bool
	Claim bool
}

// Classify maps a trust tier to its yield policy. The switch is exhaustive
// over the closed tier set; an unknown tier yields nothing.
func Classify(tier model.TrustTier) YieldPolicy {
	switch tier {
	case model.TierOfficial:
		return YieldPolicy{Event: true}
	case model.TierPress:
		return YieldPolicy{Event: true, Claim: true}
	case model.TierSocial:
		return YieldPolicy{Claim: true}
	default:
		return YieldPolicy{}
	}
}
