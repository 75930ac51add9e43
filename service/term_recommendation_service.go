package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"loan-calculator/domain"
	"loan-calculator/table"
)

// Column indexes of the term comparison table.
const (
	ColumnTerm = iota
	ColumnMonthlyPayment
	ColumnTotalPayment
	ColumnTotalInterest
)

type TermService struct {
	loanService *LoanService
	logger      *zap.Logger
}

func NewTermService(loanService *LoanService, logger *zap.Logger) *TermService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{loanService: loanService, logger: logger}
}

// RecommendTerm evaluates every term in the range and ranks those whose
// monthly payment fits the budget.
func (s *TermService) RecommendTerm(
	ctx context.Context,
	input domain.TermRecommendationInput,
) (domain.TermRecommendationResult, error) {

	if input.Principal <= 0 {
		return domain.TermRecommendationResult{}, errors.New("invalid principal")
	}
	if input.AnnualRatePercent <= 0 {
		return domain.TermRecommendationResult{}, errors.New("invalid interest rate")
	}
	if err := validateTermRange(input.MinTermMonths, input.MaxTermMonths); err != nil {
		return domain.TermRecommendationResult{}, err
	}
	if input.MaxMonthlyPayment <= 0 {
		return domain.TermRecommendationResult{}, errors.New("invalid maximum monthly payment")
	}
	if err := ValidateLimits(domain.LoanInputs{
		Principal:         input.Principal,
		AnnualRatePercent: input.AnnualRatePercent,
		TermMonths:        input.MaxTermMonths,
	}); err != nil {
		return domain.TermRecommendationResult{}, err
	}

	switch input.Preference {
	case domain.PreferMinimizeInterest, domain.PreferMinimizePayment, domain.PreferBalanced:
	default:
		return domain.TermRecommendationResult{}, fmt.Errorf("invalid preference %q", input.Preference)
	}

	recommendations := []domain.TermRecommendation{}

	for term := input.MinTermMonths; term <= input.MaxTermMonths; term++ {
		result := s.loanService.Calculate(ctx, domain.LoanInputs{
			Principal:         input.Principal,
			AnnualRatePercent: input.AnnualRatePercent,
			TermMonths:        term,
		})
		if result == (domain.LoanResult{}) {
			s.logger.Debug("skipping term with zero result", zap.Int("term", term))
			continue
		}

		// Over budget.
		if result.MonthlyPayment > input.MaxMonthlyPayment {
			continue
		}

		recommendations = append(recommendations, domain.TermRecommendation{
			TermMonths:     term,
			MonthlyPayment: roundTo2Decimals(result.MonthlyPayment),
			TotalInterest:  roundTo2Decimals(result.TotalInterest),
			Score:          calculateScore(result, input, term),
			Reason:         reasonFor(input.Preference),
		})
	}

	if len(recommendations) == 0 {
		return domain.TermRecommendationResult{}, errors.New("no term fits the maximum monthly payment")
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Score > recommendations[j].Score
	})

	return domain.TermRecommendationResult{
		RecommendedTerm: recommendations[0].TermMonths,
		Recommendations: recommendations,
	}, nil
}

// CompareTerms builds a sortable table with one row per term.
func (s *TermService) CompareTerms(ctx context.Context, input domain.TermComparisonInput) (*table.Table, error) {
	terms := input.Terms
	if len(terms) == 0 {
		if err := validateTermRange(input.MinTermMonths, input.MaxTermMonths); err != nil {
			return nil, err
		}
		for term := input.MinTermMonths; term <= input.MaxTermMonths; term++ {
			terms = append(terms, term)
		}
	}
	if len(terms) > MaxTermRangeMonths+1 {
		return nil, fmt.Errorf("too many terms: %d (max %d)", len(terms), MaxTermRangeMonths+1)
	}

	locale := s.loanService.Locale()
	tbl := table.New("term", "monthly payment", "total payment", "total interest")

	for _, term := range terms {
		in := domain.LoanInputs{
			Principal:         input.Principal,
			AnnualRatePercent: input.AnnualRatePercent,
			TermMonths:        term,
		}
		if err := ValidateLimits(in); err != nil {
			return nil, err
		}

		res := s.loanService.Calculate(ctx, in)
		display := locale.Display(in, res)
		tbl.AddRow(
			table.Cell{Text: strconv.Itoa(term) + " mån", SortValue: strconv.Itoa(term)},
			table.Cell{Text: display.MonthlyPayment, SortValue: sortValue(res.MonthlyPayment)},
			table.Cell{Text: display.TotalPayment, SortValue: sortValue(res.TotalPayment)},
			table.Cell{Text: display.TotalInterest, SortValue: sortValue(res.TotalInterest)},
		)
	}

	dir := table.Ascending
	if input.Descending {
		dir = table.Descending
	}
	if err := tbl.Sort(input.SortColumn, dir); err != nil {
		return nil, err
	}
	return tbl, nil
}

func validateTermRange(minTerm, maxTerm int) error {
	if minTerm < MinTermMonths || maxTerm < MinTermMonths {
		return errors.New("invalid term range")
	}
	if minTerm > maxTerm {
		return errors.New("minimum term greater than maximum")
	}
	if maxTerm > MaxTermMonths {
		return fmt.Errorf("%w of %d months", ErrTermTooLong, MaxTermMonths)
	}
	if maxTerm-minTerm > MaxTermRangeMonths {
		return fmt.Errorf("term range exceeds %d months", MaxTermRangeMonths)
	}
	return nil
}

func sortValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func calculateScore(
	result domain.LoanResult,
	input domain.TermRecommendationInput,
	term int,
) float64 {
	// Normalize each component to 0-10.
	maxPossibleInterest := input.Principal * (input.AnnualRatePercent / 100) * float64(input.MaxTermMonths) / 12
	minPossibleInterest := input.Principal * (input.AnnualRatePercent / 100) * float64(input.MinTermMonths) / 12

	interestRange := maxPossibleInterest - minPossibleInterest
	minPayment := input.Principal / float64(input.MaxTermMonths)
	paymentRange := input.MaxMonthlyPayment - minPayment

	interestScore := 0.0
	paymentScore := 0.0
	termScore := 10.0

	if interestRange > 0 {
		interestScore = 10.0 * (1.0 - (result.TotalInterest-minPossibleInterest)/interestRange)
	}
	if paymentRange > 0 {
		paymentScore = 10.0 * (1.0 - (result.MonthlyPayment-minPayment)/paymentRange)
	}
	if span := input.MaxTermMonths - input.MinTermMonths; span > 0 {
		termScore = 10.0 * (1.0 - float64(term-input.MinTermMonths)/float64(span))
	}

	var score float64
	switch input.Preference {
	case domain.PreferMinimizeInterest:
		score = 0.6*interestScore + 0.2*paymentScore + 0.2*termScore
	case domain.PreferMinimizePayment:
		score = 0.2*interestScore + 0.6*paymentScore + 0.2*termScore
	case domain.PreferBalanced:
		score = 0.4*interestScore + 0.4*paymentScore + 0.2*termScore
	}

	return roundTo2Decimals(score)
}

func reasonFor(p domain.TermPreference) string {
	switch p {
	case domain.PreferMinimizeInterest:
		return "Term chosen to minimize total interest cost"
	case domain.PreferMinimizePayment:
		return "Term chosen to minimize the monthly payment"
	case domain.PreferBalanced:
		return "Balance between monthly payment and total cost"
	}
	return "Recommendation based on the provided parameters"
}
