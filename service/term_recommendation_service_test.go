package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-calculator/domain"
	"loan-calculator/repository"
	"loan-calculator/table"
)

func newTermService() *TermService {
	loans := newTestService(repository.NewLoanRepositoryMemory(0), repository.NewMemoryCache(0), nil)
	return NewTermService(loans, nil)
}

func TestRecommendTerm_FiltersByBudget(t *testing.T) {
	s := newTermService()

	result, err := s.RecommendTerm(context.Background(), domain.TermRecommendationInput{
		Principal:         12000,
		AnnualRatePercent: 6,
		MinTermMonths:     6,
		MaxTermMonths:     36,
		MaxMonthlyPayment: 600,
		Preference:        domain.PreferMinimizeInterest,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Recommendations)

	for _, r := range result.Recommendations {
		assert.LessOrEqual(t, r.MonthlyPayment, 600.0)
	}
	assert.Equal(t, result.Recommendations[0].TermMonths, result.RecommendedTerm)
	for i := 1; i < len(result.Recommendations); i++ {
		assert.GreaterOrEqual(t, result.Recommendations[i-1].Score, result.Recommendations[i].Score)
	}
}

func TestRecommendTerm_Validation(t *testing.T) {
	s := newTermService()
	base := domain.TermRecommendationInput{
		Principal:         12000,
		AnnualRatePercent: 6,
		MinTermMonths:     6,
		MaxTermMonths:     36,
		MaxMonthlyPayment: 600,
		Preference:        domain.PreferBalanced,
	}

	tests := []struct {
		name   string
		mutate func(*domain.TermRecommendationInput)
	}{
		{"principal", func(in *domain.TermRecommendationInput) { in.Principal = 0 }},
		{"rate", func(in *domain.TermRecommendationInput) { in.AnnualRatePercent = 0 }},
		{"min above max", func(in *domain.TermRecommendationInput) { in.MinTermMonths = 40 }},
		{"range too wide", func(in *domain.TermRecommendationInput) { in.MinTermMonths, in.MaxTermMonths = 1, 200 }},
		{"budget", func(in *domain.TermRecommendationInput) { in.MaxMonthlyPayment = 0 }},
		{"preference", func(in *domain.TermRecommendationInput) { in.Preference = "cheapest" }},
		{"nothing fits", func(in *domain.TermRecommendationInput) { in.MaxMonthlyPayment = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := s.RecommendTerm(context.Background(), in)
			assert.Error(t, err)
		})
	}
}

func TestCompareTerms_SortedByMonthlyPayment(t *testing.T) {
	s := newTermService()

	tbl, err := s.CompareTerms(context.Background(), domain.TermComparisonInput{
		Principal:         100000,
		AnnualRatePercent: 5,
		Terms:             []int{12, 60, 24},
		SortColumn:        ColumnMonthlyPayment,
	})
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 3)

	assert.Equal(t, "60 mån", tbl.Rows[0].Cells[ColumnTerm].Text)
	assert.Equal(t, "24 mån", tbl.Rows[1].Cells[ColumnTerm].Text)
	assert.Equal(t, "12 mån", tbl.Rows[2].Cells[ColumnTerm].Text)
	assert.Equal(t, "8 560,75 kr", tbl.Rows[2].Cells[ColumnMonthlyPayment].Text)
	assert.Equal(t, table.Ascending, tbl.Columns[ColumnMonthlyPayment].Sorted)
}

func TestCompareTerms_RangeDescending(t *testing.T) {
	s := newTermService()

	tbl, err := s.CompareTerms(context.Background(), domain.TermComparisonInput{
		Principal:         50000,
		AnnualRatePercent: 4,
		MinTermMonths:     10,
		MaxTermMonths:     12,
		SortColumn:        ColumnTerm,
		Descending:        true,
	})
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 3)
	assert.Equal(t, "12", tbl.Rows[0].Cells[ColumnTerm].SortValue)
	assert.Equal(t, "10", tbl.Rows[2].Cells[ColumnTerm].SortValue)
}

func TestCompareTerms_BadColumn(t *testing.T) {
	s := newTermService()

	_, err := s.CompareTerms(context.Background(), domain.TermComparisonInput{
		Principal: 1000, AnnualRatePercent: 4, Terms: []int{12}, SortColumn: 9,
	})
	assert.ErrorIs(t, err, table.ErrColumnOutOfRange)
}
