package schemes

// Rules is the machine-checkable portion of a scheme's eligibility criteria.
// Zero values mean "unset" and fall back to the open defaults in Evaluate.
type Rules struct {
	Categories []string `json:"categories"`
	IncomeMax  int      `json:"income_max"`
	AgeMin     int      `json:"age_min"`
	AgeMax     int      `json:"age_max"`
}

type Scheme struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	Benefits        string `json:"benefits"`
	EligibilityText string `json:"eligibility_text"`
	Rules           Rules  `json:"rules"`
	Ministry        string `json:"ministry,omitempty"`
	OfficialURL     string `json:"official_url,omitempty"`
}

type CitizenProfile struct {
	Age      int    `json:"age"`
	Income   int    `json:"income"`
	Category string `json:"category"`
	State    string `json:"state"`
	Email    string `json:"email,omitempty"`
}

// Evaluation is the outcome of checking one citizen against one scheme.
// Eligible holds iff ReasonsFail is empty.
type Evaluation struct {
	SchemeID        string   `json:"scheme_id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Eligible        bool     `json:"eligible"`
	MatchScore      int      `json:"match_score"`
	ReasonsPass     []string `json:"reasons_pass"`
	ReasonsFail     []string `json:"reasons_fail"`
	Description     string   `json:"description"`
	Benefits        string   `json:"benefits"`
	EligibilityText string   `json:"eligibility_text"`
}

// Ranked extends an Evaluation with its relevance placement. Rank is 1-based
// and follows RelevanceScore descending, stable on ties.
type Ranked struct {
	Evaluation
	RelevanceScore int `json:"relevance_score"`
	Rank           int `json:"rank"`
}
