// Package docs answers document-checklist questions for scheme applications
// and records submitted applications.
package docs

// ApplicationStep is one stage in the fixed application lifecycle.
type ApplicationStep struct {
	Step        string `json:"step"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Minimum required documents per scheme.
var schemeDocs = map[string][]string{
	"pm_kisan":                {"Aadhaar Card", "Land Records (Khasra/Khatauni)", "Bank Account linked to Aadhaar"},
	"ayushman_bharat":         {"Aadhaar Card", "Ration Card or SECC Family ID"},
	"pm_ujjwala":              {"Aadhaar Card", "BPL Ration Card", "Passport Photo"},
	"post_matric_scholarship": {"Aadhaar Card", "Caste Certificate", "Previous Marksheet", "Income Certificate", "Bank Account"},
	"youth_scholarship":       {"Aadhaar Card", "Last Marksheet (min 60%)", "Income Certificate", "Bank Account"},
	"mnrega":                  {"Aadhaar Card", "Job Card (if available)"},
	"mudra_loan":              {"Aadhaar Card", "PAN Card", "Business Plan / Project Report", "Bank Statement (6 months)"},
	"disability_pension":      {"Aadhaar Card", "Disability Certificate (80%+)", "BPL Card", "Bank Account"},
	"senior_pension":          {"Aadhaar Card", "Age Proof (60+ years)", "BPL Certificate", "Bank Account"},
	"pm_awas_gramin":          {"Aadhaar Card", "BPL Ration Card", "Land Rights Certificate"},
	"standup_india":           {"Aadhaar Card", "SC/ST Certificate or Gender Proof", "Business Plan", "Bank Account"},
	"nps":                     {"Aadhaar Card", "PAN Card", "Bank Account"},
}

// Fallback checklists keyed by citizen category, used when a scheme has no
// dedicated document list.
var categoryDocs = map[string][]string{
	"farmer":         {"Aadhaar Card", "Land Records", "Bank Account"},
	"student":        {"Aadhaar Card", "Last Marksheet", "Income Certificate"},
	"bpl":            {"BPL Ration Card", "Aadhaar Card", "Income Certificate"},
	"women":          {"Aadhaar Card", "Address Proof", "Bank Account"},
	"disabled":       {"Aadhaar Card", "Disability Certificate", "Income Certificate"},
	"senior_citizen": {"Aadhaar Card", "Age Proof", "BPL Certificate"},
	"sc_st":          {"Aadhaar Card", "Caste Certificate", "Income Certificate"},
	"obc":            {"Aadhaar Card", "OBC Certificate", "Income Certificate"},
	"general":        {"Aadhaar Card", "Income Certificate", "Bank Account"},
}

var applicationSteps = []ApplicationStep{
	{Step: "started", Label: "Application Started", Description: "Your application has been created"},
	{Step: "documents_submitted", Label: "Documents Submitted", Description: "Documents have been submitted for review"},
	{Step: "under_review", Label: "Under Review", Description: "Officials are verifying your application"},
	{Step: "approved", Label: "Approved", Description: "Your application has been approved"},
}

// RequiredDocs returns the checklist for a scheme, falling back to the
// citizen's category checklist and then to the general one.
func RequiredDocs(schemeID, category string) []string {
	if docs, ok := schemeDocs[schemeID]; ok {
		return append([]string(nil), docs...)
	}
	if docs, ok := categoryDocs[category]; ok {
		return append([]string(nil), docs...)
	}
	return append([]string(nil), categoryDocs["general"]...)
}

// Steps returns the application lifecycle stages in order.
func Steps() []ApplicationStep {
	return append([]ApplicationStep(nil), applicationSteps...)
}
