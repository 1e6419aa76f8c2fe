package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// weightEpsilon absorbs float64 representation error at bucket boundaries
// (e.g. 0.4*0.4 = 0.16000000000000003 must land in the bucket that starts
// at 0.16).
const weightEpsilon = 1e-9

// Score computes the risk score and level for the given category,
// likelihood and impact selection. The impact must belong to the category's
// own scale. The computation is pure: identical inputs always yield
// identical outputs.
func (m *RiskMatrix) Score(categoryID types.CategoryID, likelihoodID types.LikelihoodID, impactID types.ImpactID) (types.Score, types.RiskLevel, error) {
	cat, ok := m.Category(categoryID)
	if !ok {
		return 0, "", goerr.Wrap(types.ErrNotFound, "unknown category", goerr.V("category", categoryID))
	}

	lh, ok := m.LikelihoodLevel(likelihoodID)
	if !ok {
		return 0, "", goerr.New("likelihood is not on the scale", goerr.V("likelihood", likelihoodID))
	}

	imp, ok := cat.ImpactLevel(impactID)
	if !ok {
		return 0, "", goerr.New("impact does not belong to the category's scale",
			goerr.V("category", categoryID), goerr.V("impact", impactID))
	}

	score := types.Score(lh.Weight * imp.Weight)
	level := m.Level(score)
	return score, level, nil
}

// Level buckets an unrounded score into a risk level. Scores below the
// lowest bucket floor (possible when both scales bottom out at 0.05)
// classify as the lowest bucket's level, the conservative choice.
func (m *RiskMatrix) Level(score types.Score) types.RiskLevel {
	v := score.Float()
	for _, b := range m.Buckets {
		if v >= b.Min-weightEpsilon && v <= b.Max+weightEpsilon {
			return b.Level
		}
	}
	if len(m.Buckets) > 0 && v < m.Buckets[0].Min {
		return m.Buckets[0].Level
	}
	return m.Buckets[len(m.Buckets)-1].Level
}

// genericImpactScale is shared by the financial and other categories
func genericImpactScale() []ImpactLevel {
	return []ImpactLevel{
		{ID: "negligible", Name: "Negligible", Description: "Absorbed within normal operations", Weight: 0.05},
		{ID: "minor", Name: "Minor", Description: "Noticeable but recoverable in the short term", Weight: 0.1},
		{ID: "moderate", Name: "Moderate", Description: "Requires dedicated response effort", Weight: 0.2},
		{ID: "major", Name: "Major", Description: "Threatens objectives of the affected unit", Weight: 0.4},
		{ID: "severe", Name: "Severe", Description: "Threatens the organization as a whole", Weight: 0.8},
	}
}

// weightedImpactScale is shared by the reputation, legal-regulatory,
// environmental and time-schedule categories. The labels differ per
// category; the weights do not.
func weightedImpactScale(labels [5][2]string) []ImpactLevel {
	ids := []types.ImpactID{"negligible", "minor", "moderate", "major", "severe"}
	weights := []float64{0.1, 0.3, 0.5, 0.7, 0.9}
	out := make([]ImpactLevel, 5)
	for i := range out {
		out[i] = ImpactLevel{
			ID:          ids[i],
			Name:        labels[i][0],
			Description: labels[i][1],
			Weight:      weights[i],
		}
	}
	return out
}

// DefaultRiskMatrix returns the built-in scoring matrix: six categories,
// the five-point likelihood scale, and the four level buckets. A TOML
// config may replace it wholesale; the defaults stand on their own.
func DefaultRiskMatrix() *RiskMatrix {
	return &RiskMatrix{
		Categories: []Category{
			{
				ID:          "financial",
				Name:        "Financial",
				Description: "Direct monetary loss or cost overrun",
				Impact:      genericImpactScale(),
			},
			{
				ID:          "reputation",
				Name:        "Reputation",
				Description: "Damage to public trust or brand",
				Impact: weightedImpactScale([5][2]string{
					{"Negligible", "No external visibility"},
					{"Minor", "Local or short-lived coverage"},
					{"Moderate", "Sustained negative coverage"},
					{"Major", "National coverage, partner concern"},
					{"Severe", "Lasting loss of public trust"},
				}),
			},
			{
				ID:          "legal-regulatory",
				Name:        "Legal/Regulatory",
				Description: "Non-compliance, litigation or sanctions",
				Impact: weightedImpactScale([5][2]string{
					{"Negligible", "No regulatory interest"},
					{"Minor", "Inquiry answered without finding"},
					{"Moderate", "Formal finding, corrective plan"},
					{"Major", "Fine or enforceable undertaking"},
					{"Severe", "License at risk, criminal exposure"},
				}),
			},
			{
				ID:          "environmental",
				Name:        "Environmental",
				Description: "Harm to the physical environment",
				Impact: weightedImpactScale([5][2]string{
					{"Negligible", "Contained on site"},
					{"Minor", "Localized, reversible effect"},
					{"Moderate", "Reportable release, cleanup required"},
					{"Major", "Off-site damage, long recovery"},
					{"Severe", "Widespread or irreversible damage"},
				}),
			},
			{
				ID:          "time-schedule",
				Name:        "Time/Schedule",
				Description: "Delay to committed milestones",
				Impact: weightedImpactScale([5][2]string{
					{"Negligible", "Slack absorbs the delay"},
					{"Minor", "Internal milestone slips"},
					{"Moderate", "Committed milestone slips"},
					{"Major", "Delivery date slips"},
					{"Severe", "Program viability in question"},
				}),
			},
			{
				ID:          "other",
				Name:        "Other",
				Description: "Risks outside the named categories",
				Impact:      genericImpactScale(),
			},
		},
		Likelihood: []LikelihoodLevel{
			{ID: "rare", Name: "Rare", Description: "May occur in exceptional circumstances", Weight: 0.05},
			{ID: "unlikely", Name: "Unlikely", Description: "Could occur but not expected", Weight: 0.1},
			{ID: "possible", Name: "Possible", Description: "Might occur at some point", Weight: 0.2},
			{ID: "likely", Name: "Likely", Description: "Will probably occur", Weight: 0.4},
			{ID: "almost-certain", Name: "Almost certain", Description: "Expected to occur", Weight: 0.8},
		},
		Buckets: []LevelBucket{
			{Level: types.RiskLevelLow, Min: 0.01, Max: 0.05},
			{Level: types.RiskLevelMedium, Min: 0.06, Max: 0.15},
			{Level: types.RiskLevelHigh, Min: 0.16, Max: 0.35},
			{Level: types.RiskLevelCritical, Min: 0.36, Max: 0.72},
		},
	}
}
