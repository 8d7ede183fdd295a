package screening

// Application holds the inputs to the screening score. It is evaluated
// against the rent figure of the lease being applied for.
type Application struct {
	MonthlyIncome  float64 `json:"monthly_income"`
	RentAmount     float64 `json:"rent_amount"`
	CreditScore    int     `json:"credit_score"`
	PriorEvictions int     `json:"prior_evictions"`
}

// Result is a screening outcome on a 0-100 scale.
type Result struct {
	Score          int     `json:"score"`
	RentToIncome   float64 `json:"rent_to_income"`
	Recommendation string  `json:"recommendation"`
}

// Recommendations by score band.
const (
	RecommendApprove = "approve"
	RecommendReview  = "review"
	RecommendDecline = "decline"
)

// Score computes the applicant screening score. Stateless and
// deterministic: 50 points for the rent-to-income ratio, 40 for the credit
// band, minus 15 per prior eviction.
func Score(app Application) Result {
	res := Result{}
	if app.RentAmount > 0 && app.MonthlyIncome > 0 {
		res.RentToIncome = app.RentAmount / app.MonthlyIncome
	}

	score := 0

	switch {
	case res.RentToIncome > 0 && res.RentToIncome <= 0.30:
		score += 50
	case res.RentToIncome > 0 && res.RentToIncome <= 0.40:
		score += 35
	case res.RentToIncome > 0 && res.RentToIncome <= 0.50:
		score += 20
	}

	switch {
	case app.CreditScore >= 740:
		score += 40
	case app.CreditScore >= 670:
		score += 30
	case app.CreditScore >= 580:
		score += 15
	}

	score -= 15 * app.PriorEvictions
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	res.Score = score

	switch {
	case score >= 70:
		res.Recommendation = RecommendApprove
	case score >= 40:
		res.Recommendation = RecommendReview
	default:
		res.Recommendation = RecommendDecline
	}
	return res
}
