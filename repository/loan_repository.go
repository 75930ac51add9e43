package repository

import (
	"context"
	"time"

	"loan-calculator/domain"
)

// LoanRecord is one logged calculation.
type LoanRecord struct {
	Inputs       domain.LoanInputs `json:"inputs"`
	Result       domain.LoanResult `json:"result"`
	CalculatedAt time.Time         `json:"calculatedAt"`
}

type LoanRepository interface {
	Save(ctx context.Context, input domain.LoanInputs, result domain.LoanResult) error
	List(ctx context.Context, limit int) ([]LoanRecord, error)
}
