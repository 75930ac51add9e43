package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"loan-calculator/domain"
	"loan-calculator/format"
	"loan-calculator/metrics"
	"loan-calculator/repository"
)

var (
	ErrAmountTooLarge = errors.New("amount exceeds the allowed maximum")
	ErrRateTooLarge   = errors.New("interest rate exceeds the allowed maximum")
	ErrTermTooLong    = errors.New("term exceeds the allowed maximum")
)

type LoanService struct {
	repo     repository.LoanRepository
	cache    repository.CacheRepository
	cacheTTL time.Duration
	locale   format.Locale
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewLoanService creates a new LoanService with the given repository and cache.
func NewLoanService(
	repo repository.LoanRepository,
	cache repository.CacheRepository,
	cacheTTL time.Duration,
	locale domain.LocaleRule,
	m *metrics.Metrics,
	logger *zap.Logger,
) *LoanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoanService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		locale:   format.NewLocale(locale),
		metrics:  m,
		logger:   logger,
	}
}

func (s *LoanService) Locale() format.Locale {
	return s.locale
}

// ValidateLimits rejects inputs above the service limits. Values at or below
// zero are not errors; they compute to a zero result.
func ValidateLimits(input domain.LoanInputs) error {
	if input.Principal > MaxLoanAmount {
		return fmt.Errorf("%w of %.2f", ErrAmountTooLarge, MaxLoanAmount)
	}
	if input.AnnualRatePercent > MaxInterestRate {
		return fmt.Errorf("%w of %.2f%%", ErrRateTooLarge, MaxInterestRate)
	}
	if input.TermMonths > MaxTermMonths {
		return fmt.Errorf("%w of %d months", ErrTermTooLong, MaxTermMonths)
	}
	return nil
}

// Calculate computes the result for input, consulting the cache first.
// Valid results are logged to the repository; failures there are not fatal.
func (s *LoanService) Calculate(ctx context.Context, input domain.LoanInputs) domain.LoanResult {
	if !input.Valid() {
		s.metrics.IncrementCalculations(false)
		return domain.LoanResult{}
	}

	key := cacheKey(input)
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var cached domain.LoanResult
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				s.metrics.IncrementCacheHits()
				s.metrics.IncrementCalculations(true)
				return cached
			}
			s.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
		}
	}

	result := ComputeInputs(input)
	if result == (domain.LoanResult{}) {
		s.metrics.IncrementCalculations(false)
		return result
	}
	s.metrics.IncrementCalculations(true)

	if err := s.repo.Save(ctx, input, result); err != nil {
		s.logger.Warn("failed to save loan calculation", zap.Error(err))
	}

	if s.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
				s.logger.Warn("failed to cache loan calculation", zap.String("key", key), zap.Error(err))
			}
		}
	}

	return result
}

// CalculateLoan validates the limits, computes and formats the result.
func (s *LoanService) CalculateLoan(
	ctx context.Context,
	input domain.LoanInputs,
) (domain.LoanResult, domain.DisplayState, error) {
	if err := ValidateLimits(input); err != nil {
		return domain.LoanResult{}, domain.DisplayState{}, err
	}

	result := s.Calculate(ctx, input)
	return result, s.locale.Display(input, result), nil
}

// History returns the most recent logged calculations.
func (s *LoanService) History(ctx context.Context, limit int) ([]repository.LoanRecord, error) {
	records, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list loan calculations: %w", err)
	}
	return records, nil
}

func cacheKey(in domain.LoanInputs) string {
	return "loan:" +
		strconv.FormatFloat(in.Principal, 'g', -1, 64) + ":" +
		strconv.FormatFloat(in.AnnualRatePercent, 'g', -1, 64) + ":" +
		strconv.Itoa(in.TermMonths)
}
