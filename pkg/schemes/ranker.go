package schemes

import (
	"sort"
	"strings"
)

// Ranker scores candidate schemes for a citizen. The boost tables are
// product-tuned values kept on the struct so deployments can override them.
type Ranker struct {
	// ExactCategoryBoost applies when the citizen category equals the scheme
	// category; otherwise CategoryWeights supplies a fixed priority weight
	// (DefaultWeight for unlisted categories).
	ExactCategoryBoost int
	CategoryWeights    map[string]int
	DefaultWeight      int

	// Income boosts step by annual-income thresholds.
	LowIncomeBelow int
	LowIncomeBoost int
	MidIncomeBelow int
	MidIncomeBoost int
}

func NewRanker() *Ranker {
	return &Ranker{
		ExactCategoryBoost: 25,
		CategoryWeights: map[string]int{
			"bpl": 10, "disabled": 9, "sc_st": 8, "senior_citizen": 8,
			"women": 7, "farmer": 7, "student": 6, "obc": 5, "general": 3,
		},
		DefaultWeight:  0,
		LowIncomeBelow: 150000,
		LowIncomeBoost: 5,
		MidIncomeBelow: 300000,
		MidIncomeBoost: 3,
	}
}

// Relevance computes min(100, match + category boost + income boost).
func (r *Ranker) Relevance(citizen CitizenProfile, eval Evaluation) int {
	category := strings.ToLower(strings.TrimSpace(citizen.Category))
	schemeCat := strings.ToLower(strings.TrimSpace(eval.Category))

	boost := r.DefaultWeight
	if category != "" && category == schemeCat {
		boost = r.ExactCategoryBoost
	} else if w, ok := r.CategoryWeights[category]; ok {
		boost = w
	}

	incomeBoost := 0
	if citizen.Income < r.LowIncomeBelow {
		incomeBoost = r.LowIncomeBoost
	} else if citizen.Income < r.MidIncomeBelow {
		incomeBoost = r.MidIncomeBoost
	}

	score := eval.MatchScore + boost + incomeBoost
	if score > 100 {
		score = 100
	}
	return score
}

// Rank orders candidates by relevance descending. The sort is stable: on
// ties the original evaluation order is preserved, which keeps the output a
// deterministic function of the input.
func (r *Ranker) Rank(citizen CitizenProfile, candidates []Evaluation) []Ranked {
	ranked := make([]Ranked, len(candidates))
	for i, ev := range candidates {
		ranked[i] = Ranked{Evaluation: ev, RelevanceScore: r.Relevance(citizen, ev)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RelevanceScore > ranked[j].RelevanceScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
