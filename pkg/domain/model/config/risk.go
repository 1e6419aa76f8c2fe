package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareus/pkg/domain/types"
)

// LikelihoodLevel represents one point on the likelihood scale
type LikelihoodLevel struct {
	ID          types.LikelihoodID
	Name        string
	Description string
	Weight      float64
}

// ImpactLevel represents one point on a category's impact scale. The name
// and description are display only; the weight is what enters the score.
type ImpactLevel struct {
	ID          types.ImpactID
	Name        string
	Description string
	Weight      float64
}

// Category represents a risk category together with its own impact scale
type Category struct {
	ID          types.CategoryID
	Name        string
	Description string
	Impact      []ImpactLevel
}

// LevelBucket maps a contiguous score range to a risk level. Both bounds
// are inclusive.
type LevelBucket struct {
	Level types.RiskLevel
	Min   float64
	Max   float64
}

// RiskMatrix holds the full scoring configuration: categories with their
// impact scales, the likelihood scale, and the level buckets.
type RiskMatrix struct {
	Categories []Category
	Likelihood []LikelihoodLevel
	Buckets    []LevelBucket
}

// Category returns the category with the given ID
func (m *RiskMatrix) Category(id types.CategoryID) (*Category, bool) {
	for i := range m.Categories {
		if m.Categories[i].ID == id {
			return &m.Categories[i], true
		}
	}
	return nil, false
}

// LikelihoodLevel returns the likelihood level with the given ID
func (m *RiskMatrix) LikelihoodLevel(id types.LikelihoodID) (*LikelihoodLevel, bool) {
	for i := range m.Likelihood {
		if m.Likelihood[i].ID == id {
			return &m.Likelihood[i], true
		}
	}
	return nil, false
}

// ImpactLevel returns the impact level with the given ID from the category's
// scale
func (c *Category) ImpactLevel(id types.ImpactID) (*ImpactLevel, bool) {
	for i := range c.Impact {
		if c.Impact[i].ID == id {
			return &c.Impact[i], true
		}
	}
	return nil, false
}

// Validate checks structural consistency of the matrix: every category
// carries a strictly increasing impact scale, the likelihood scale is
// strictly increasing, and the buckets are ordered and non-overlapping.
func (m *RiskMatrix) Validate() error {
	if len(m.Categories) == 0 {
		return goerr.New("risk matrix requires at least one category")
	}
	if len(m.Likelihood) == 0 {
		return goerr.New("risk matrix requires at least one likelihood level")
	}
	if len(m.Buckets) == 0 {
		return goerr.New("risk matrix requires at least one level bucket")
	}

	seen := make(map[types.CategoryID]bool)
	for _, cat := range m.Categories {
		if err := cat.ID.Validate(); err != nil {
			return goerr.Wrap(err, "invalid category ID")
		}
		if seen[cat.ID] {
			return goerr.New("duplicate category ID", goerr.V("id", cat.ID))
		}
		seen[cat.ID] = true

		if len(cat.Impact) == 0 {
			return goerr.New("category has no impact scale", goerr.V("category", cat.ID))
		}
		impactIDs := make(map[types.ImpactID]bool)
		prev := 0.0
		for i, lv := range cat.Impact {
			if err := lv.ID.Validate(); err != nil {
				return goerr.Wrap(err, "invalid impact ID", goerr.V("category", cat.ID))
			}
			if impactIDs[lv.ID] {
				return goerr.New("duplicate impact ID", goerr.V("category", cat.ID), goerr.V("id", lv.ID))
			}
			impactIDs[lv.ID] = true
			if lv.Weight <= 0 {
				return goerr.New("impact weight must be positive", goerr.V("category", cat.ID), goerr.V("id", lv.ID))
			}
			if i > 0 && lv.Weight <= prev {
				return goerr.New("impact scale must be strictly increasing", goerr.V("category", cat.ID), goerr.V("id", lv.ID))
			}
			prev = lv.Weight
		}
	}

	lhIDs := make(map[types.LikelihoodID]bool)
	prev := 0.0
	for i, lv := range m.Likelihood {
		if err := lv.ID.Validate(); err != nil {
			return goerr.Wrap(err, "invalid likelihood ID")
		}
		if lhIDs[lv.ID] {
			return goerr.New("duplicate likelihood ID", goerr.V("id", lv.ID))
		}
		lhIDs[lv.ID] = true
		if lv.Weight <= 0 {
			return goerr.New("likelihood weight must be positive", goerr.V("id", lv.ID))
		}
		if i > 0 && lv.Weight <= prev {
			return goerr.New("likelihood scale must be strictly increasing", goerr.V("id", lv.ID))
		}
		prev = lv.Weight
	}

	for i, b := range m.Buckets {
		if !b.Level.IsValid() {
			return goerr.New("invalid bucket level", goerr.V("level", b.Level))
		}
		if b.Min > b.Max {
			return goerr.New("bucket min exceeds max", goerr.V("level", b.Level))
		}
		if i > 0 && b.Min <= m.Buckets[i-1].Max {
			return goerr.New("buckets must be ordered and non-overlapping", goerr.V("level", b.Level))
		}
	}

	return nil
}
