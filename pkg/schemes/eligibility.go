package schemes

import (
	"fmt"
	"math"
	"strings"
)

// Open defaults applied when a rule field is unset. UniversalCategory in the
// allowed set admits every citizen category.
const (
	UniversalCategory = "general"
	defaultAgeMax     = 120
	defaultIncomeMax  = 10000000
)

// Evaluate applies the three rule checks in fixed order (category, age,
// income) so reason ordering is stable. Pure function of its inputs.
func Evaluate(citizen CitizenProfile, scheme Scheme) Evaluation {
	category := strings.ToLower(strings.TrimSpace(citizen.Category))
	if category == "" {
		category = UniversalCategory
	}

	rules := scheme.Rules
	allowed := make([]string, 0, len(rules.Categories))
	for _, c := range rules.Categories {
		allowed = append(allowed, strings.ToLower(strings.TrimSpace(c)))
	}
	if len(allowed) == 0 {
		allowed = []string{UniversalCategory}
	}
	ageMax := rules.AgeMax
	if ageMax == 0 {
		ageMax = defaultAgeMax
	}
	incomeMax := rules.IncomeMax
	if incomeMax == 0 {
		incomeMax = defaultIncomeMax
	}

	var pass, fail []string

	if containsString(allowed, category) || containsString(allowed, UniversalCategory) {
		pass = append(pass, fmt.Sprintf("Category '%s' matches scheme", category))
	} else {
		fail = append(fail, fmt.Sprintf("Category '%s' not in %v", category, allowed))
	}

	if rules.AgeMin <= citizen.Age && citizen.Age <= ageMax {
		pass = append(pass, fmt.Sprintf("Age %d within allowed range %d-%d", citizen.Age, rules.AgeMin, ageMax))
	} else {
		fail = append(fail, fmt.Sprintf("Age %d outside allowed range %d-%d", citizen.Age, rules.AgeMin, ageMax))
	}

	if citizen.Income <= incomeMax {
		pass = append(pass, fmt.Sprintf("Income Rs.%d within limit Rs.%d", citizen.Income, incomeMax))
	} else {
		fail = append(fail, fmt.Sprintf("Income Rs.%d exceeds limit Rs.%d", citizen.Income, incomeMax))
	}

	total := len(pass) + len(fail)
	score := 0
	if total > 0 {
		score = int(math.Round(float64(len(pass)) / float64(total) * 100))
	}

	return Evaluation{
		SchemeID:        scheme.ID,
		Name:            scheme.Name,
		Category:        scheme.Category,
		Eligible:        len(fail) == 0,
		MatchScore:      score,
		ReasonsPass:     pass,
		ReasonsFail:     fail,
		Description:     scheme.Description,
		Benefits:        scheme.Benefits,
		EligibilityText: scheme.EligibilityText,
	}
}

// EvaluateAll evaluates every scheme and returns either the full result set
// or just the eligible ones.
func EvaluateAll(citizen CitizenProfile, catalog []Scheme, returnAll bool) []Evaluation {
	results := make([]Evaluation, 0, len(catalog))
	for _, s := range catalog {
		r := Evaluate(citizen, s)
		if returnAll || r.Eligible {
			results = append(results, r)
		}
	}
	return results
}

func containsString(items []string, want string) bool {
	for _, it := range items {
		if it == want {
			return true
		}
	}
	return false
}
