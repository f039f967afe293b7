package schemes

// FallbackSchemes is the baked-in catalog used when the backing store has
// nothing to offer. Returned as a fresh slice so callers can't mutate the
// canonical set.
func FallbackSchemes() []Scheme {
	out := make([]Scheme, len(fallbackSchemes))
	copy(out, fallbackSchemes)
	return out
}

var fallbackSchemes = []Scheme{
	{
		ID: "pm_kisan", Name: "PM-KISAN", Category: "farmer",
		Description:     "Direct income support of Rs.6,000/year to small and marginal farmer families.",
		Benefits:        "Rs.6,000/year in 3 equal installments of Rs.2,000",
		EligibilityText: "Land-owning farmer families with cultivable land.",
		Rules:           Rules{Categories: []string{"farmer"}, IncomeMax: 200000, AgeMin: 18, AgeMax: 70},
		Ministry:        "Ministry of Agriculture and Farmers Welfare", OfficialURL: "https://pmkisan.gov.in",
	},
	{
		ID: "ayushman_bharat", Name: "Ayushman Bharat (PM-JAY)", Category: "health",
		Description:     "Health insurance cover of Rs.5 lakh per family per year for hospitalization.",
		Benefits:        "Rs.5 lakh/year health insurance cover",
		EligibilityText: "BPL and low-income families.",
		Rules:           Rules{Categories: []string{"bpl", "general", "sc_st", "obc", "farmer", "disabled", "women"}, IncomeMax: 300000, AgeMin: 0, AgeMax: 120},
		Ministry:        "Ministry of Health and Family Welfare", OfficialURL: "https://pmjay.gov.in",
	},
	{
		ID: "pm_ujjwala", Name: "PM Ujjwala Yojana", Category: "women",
		Description:     "Free LPG connections to women from BPL households for clean cooking fuel.",
		Benefits:        "Free LPG connection + first refill cylinder",
		EligibilityText: "Women from BPL households without existing LPG connection.",
		Rules:           Rules{Categories: []string{"women", "bpl"}, IncomeMax: 200000, AgeMin: 18, AgeMax: 60},
		Ministry:        "Ministry of Petroleum and Natural Gas", OfficialURL: "https://pmuy.gov.in",
	},
	{
		ID: "post_matric_scholarship", Name: "Post Matric Scholarship (SC/ST/OBC)", Category: "student",
		Description:     "Financial assistance for SC/ST/OBC students in post-matriculation education.",
		Benefits:        "Tuition fee reimbursement + monthly maintenance allowance",
		EligibilityText: "SC/ST/OBC students with family income below Rs.2.5 lakh/year.",
		Rules:           Rules{Categories: []string{"student", "sc_st", "obc"}, IncomeMax: 250000, AgeMin: 15, AgeMax: 30},
		Ministry:        "Ministry of Social Justice and Empowerment", OfficialURL: "https://scholarships.gov.in",
	},
	{
		ID: "youth_scholarship", Name: "Youth Scholarship Scheme", Category: "student",
		Description:     "Merit-cum-means scholarship for economically weaker students.",
		Benefits:        "Rs.12,000/year scholarship stipend",
		EligibilityText: "Young students with annual family income below Rs.5 lakh.",
		Rules:           Rules{Categories: []string{"student", "general", "obc", "sc_st", "bpl"}, IncomeMax: 500000, AgeMin: 16, AgeMax: 30},
		Ministry:        "Ministry of Education", OfficialURL: "https://scholarships.gov.in",
	},
	{
		ID: "mnrega", Name: "MNREGA", Category: "general",
		Description:     "Guaranteed 100 days of wage employment per year to rural household adults.",
		Benefits:        "100 days guaranteed employment at minimum wage",
		EligibilityText: "Any adult member of a rural household.",
		Rules:           Rules{Categories: []string{"general", "farmer", "bpl", "sc_st", "obc", "women", "disabled"}, IncomeMax: 300000, AgeMin: 18, AgeMax: 80},
		Ministry:        "Ministry of Rural Development", OfficialURL: "https://nrega.nic.in",
	},
	{
		ID: "mudra_loan", Name: "MUDRA Loan (PM Mudra Yojana)", Category: "general",
		Description:     "Collateral-free loans Rs.50,000 to Rs.10 lakh for small businesses.",
		Benefits:        "Loans up to Rs.10 lakh at subsidized interest rates",
		EligibilityText: "Any Indian citizen with a non-farm business plan.",
		Rules:           Rules{Categories: []string{"general", "obc", "sc_st", "women", "farmer"}, IncomeMax: 1500000, AgeMin: 18, AgeMax: 65},
		Ministry:        "Ministry of Finance", OfficialURL: "https://mudra.org.in",
	},
	{
		ID: "disability_pension", Name: "Indira Gandhi National Disability Pension", Category: "disabled",
		Description:     "Monthly pension for persons with severe disabilities living below poverty line.",
		Benefits:        "Rs.300-500/month pension",
		EligibilityText: "BPL persons with 80%+ disability, aged 18-79.",
		Rules:           Rules{Categories: []string{"disabled", "bpl"}, IncomeMax: 150000, AgeMin: 18, AgeMax: 79},
		Ministry:        "Ministry of Rural Development", OfficialURL: "https://nsap.nic.in",
	},
	{
		ID: "senior_pension", Name: "Indira Gandhi Old Age Pension", Category: "senior_citizen",
		Description:     "Monthly pension for destitute elderly persons aged 60 and above.",
		Benefits:        "Rs.200-500/month depending on age",
		EligibilityText: "BPL individuals aged 60 years and above.",
		Rules:           Rules{Categories: []string{"senior_citizen", "bpl", "general"}, IncomeMax: 150000, AgeMin: 60, AgeMax: 120},
		Ministry:        "Ministry of Rural Development", OfficialURL: "https://nsap.nic.in",
	},
	{
		ID: "pm_awas_gramin", Name: "PM Awas Yojana (Gramin)", Category: "bpl",
		Description:     "Financial assistance for construction of pucca houses for rural BPL families.",
		Benefits:        "Rs.1.2-1.5 lakh financial assistance for house construction",
		EligibilityText: "Homeless or kutcha-house BPL families in rural areas.",
		Rules:           Rules{Categories: []string{"bpl", "sc_st", "general", "farmer"}, IncomeMax: 200000, AgeMin: 18, AgeMax: 80},
		Ministry:        "Ministry of Rural Development", OfficialURL: "https://pmayg.nic.in",
	},
	{
		ID: "standup_india", Name: "Stand-Up India", Category: "women",
		Description:     "Bank loans Rs.10 lakh to Rs.1 crore for SC/ST and women entrepreneurs.",
		Benefits:        "Loans Rs.10 lakh - Rs.1 crore for greenfield enterprises",
		EligibilityText: "SC/ST or women entrepreneurs above 18 years.",
		Rules:           Rules{Categories: []string{"women", "sc_st"}, IncomeMax: 5000000, AgeMin: 18, AgeMax: 65},
		Ministry:        "Ministry of Finance", OfficialURL: "https://standupmitra.in",
	},
	{
		ID: "nps", Name: "National Pension Scheme (NPS)", Category: "general",
		Description:     "Contributory pension system for organized and unorganized sector workers.",
		Benefits:        "Market-linked pension corpus + tax benefits",
		EligibilityText: "Indian citizen aged 18-70 years.",
		Rules:           Rules{Categories: []string{"general", "farmer", "women", "obc", "sc_st"}, IncomeMax: 10000000, AgeMin: 18, AgeMax: 70},
		Ministry:        "Ministry of Finance / PFRDA", OfficialURL: "https://npscra.nsdl.co.in",
	},
}
