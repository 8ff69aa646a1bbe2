package claims

import "banksentinel/internal/model"

const (
	baseScore = 15

	maxAccountHistory = 20
	maxEvidence       = 25
	maxEngagement     = 15
	maxCorroboration  = 25

	penaltyAbsolute    = 15
	penaltySensational = 10
	penaltyConspiracy  = 20
	penaltyNewAccount  = 10

	newAccountAgeDays = 30
)

// Factors feed the weighted credibility score.
type Factors struct {
	AccountAgeDays       int
	Engagement           int
	CorroboratingSources int
	Evidence             Evidence
	Penalties            Penalties
}

// Score computes a 0-100 credibility score. Every positive factor is
// additive and every penalty subtractive, so adding a positive factor can
// never lower the score and adding a penalty can never raise it.
func Score(f Factors) (int, model.CredibilityLevel) {
	score := baseScore

	score += accountHistoryPoints(f.AccountAgeDays)
	score += evidencePoints(f.Evidence)
	score += engagementPoints(f.Engagement)
	score += corroborationPoints(f.CorroboratingSources)

	if f.Penalties.AbsoluteLanguage {
		score -= penaltyAbsolute
	}
	if f.Penalties.Sensational {
		score -= penaltySensational
	}
	if f.Penalties.Conspiracy {
		score -= penaltyConspiracy
	}
	if f.AccountAgeDays > 0 && f.AccountAgeDays < newAccountAgeDays {
		score -= penaltyNewAccount
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score, Level(score)
}

func Level(score int) model.CredibilityLevel {
	switch {
	case score >= 80:
		return model.CredibilityHigh
	case score >= 60:
		return model.CredibilityMedium
	case score >= 40:
		return model.CredibilityLow
	default:
		return model.CredibilityVeryLow
	}
}

func accountHistoryPoints(ageDays int) int {
	switch {
	case ageDays >= 1095:
		return maxAccountHistory
	case ageDays >= 365:
		return 15
	case ageDays >= 90:
		return 8
	case ageDays >= newAccountAgeDays:
		return 4
	default:
		return 0
	}
}

func evidencePoints(e Evidence) int {
	points := 0
	if e.Document {
		points += 12
	}
	if e.OfficialSource {
		points += 8
	}
	if e.Link {
		points += 5
	}
	if points > maxEvidence {
		points = maxEvidence
	}
	return points
}

func engagementPoints(engagement int) int {
	switch {
	case engagement >= 1000:
		return maxEngagement
	case engagement >= 250:
		return 10
	case engagement >= 50:
		return 6
	case engagement >= 10:
		return 3
	default:
		return 0
	}
}

func corroborationPoints(sources int) int {
	points := sources * 7
	if points > maxCorroboration {
		points = maxCorroboration
	}
	return points
}
