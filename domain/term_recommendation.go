package domain

type TermPreference string

const (
	PreferMinimizeInterest TermPreference = "minimize_interest"
	PreferMinimizePayment  TermPreference = "minimize_payment"
	PreferBalanced         TermPreference = "balanced"
)

type TermRecommendationInput struct {
	Principal         float64        `json:"principal"`
	AnnualRatePercent float64        `json:"annualRatePercent"`
	MinTermMonths     int            `json:"minTermMonths"`
	MaxTermMonths     int            `json:"maxTermMonths"`
	MaxMonthlyPayment float64        `json:"maxMonthlyPayment"`
	Preference        TermPreference `json:"preference"`
}

type TermRecommendation struct {
	TermMonths     int     `json:"termMonths"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalInterest  float64 `json:"totalInterest"`
	Score          float64 `json:"score"`
	Reason         string  `json:"reason"`
}

type TermRecommendationResult struct {
	RecommendedTerm int                  `json:"recommendedTerm"`
	Recommendations []TermRecommendation `json:"recommendations"`
}

// TermComparisonInput lists the terms to put side by side. When Terms is
// empty the inclusive range MinTermMonths..MaxTermMonths is used.
type TermComparisonInput struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annualRatePercent"`
	Terms             []int   `json:"terms,omitempty"`
	MinTermMonths     int     `json:"minTermMonths,omitempty"`
	MaxTermMonths     int     `json:"maxTermMonths,omitempty"`
	SortColumn        int     `json:"sortColumn"`
	Descending        bool    `json:"descending"`
}
