package control

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"loan-calculator/debounce/debouncetest"
	"loan-calculator/domain"
	"loan-calculator/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// countingEngine computes with the annuity formula through a closure so the
// tests can count calls.
type countingEngine struct {
	mu    sync.Mutex
	calls []domain.LoanInputs
	fn    func(domain.LoanInputs) domain.LoanResult
}

func (e *countingEngine) Calculate(_ context.Context, in domain.LoanInputs) domain.LoanResult {
	e.mu.Lock()
	e.calls = append(e.calls, in)
	e.mu.Unlock()
	return e.fn(in)
}

func (e *countingEngine) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func fixedEngine(res domain.LoanResult) *countingEngine {
	return &countingEngine{fn: func(in domain.LoanInputs) domain.LoanResult {
		if !in.Valid() {
			return domain.LoanResult{}
		}
		return res
	}}
}

type recordingSink struct {
	renders []domain.DisplayState
	ids     domain.OutputIDs
}

func (s *recordingSink) Render(ids domain.OutputIDs, d domain.DisplayState) {
	s.ids = ids
	s.renders = append(s.renders, d)
}

func textConfig() domain.CalculatorConfig {
	return domain.CalculatorConfig{
		OutputIDs: domain.OutputIDs{MonthlyPayment: "monthlyPayment"},
		InitialText: map[domain.Field]string{
			domain.FieldAmount: "100 000",
			domain.FieldRate:   "5",
			domain.FieldTerm:   "12",
		},
		RecomputeDebounce: 150 * time.Millisecond,
	}
}

var sampleResult = domain.LoanResult{MonthlyPayment: 8560.748, TotalPayment: 102728.98, TotalInterest: 2728.98}

func TestCalculator_InitialRecompute(t *testing.T) {
	clock := debouncetest.NewClock()
	engine := fixedEngine(sampleResult)
	sink := &recordingSink{}

	c := NewCalculator("calc-1", textConfig(), engine, WithClock(clock), WithSink(sink))
	defer c.Close()

	assert.Equal(t, domain.StatePendingRecompute, c.State())
	clock.Advance(150 * time.Millisecond)

	require.Equal(t, 1, engine.count())
	assert.Equal(t, domain.LoanInputs{Principal: 100000, AnnualRatePercent: 5, TermMonths: 12}, engine.calls[0])
	require.Len(t, sink.renders, 1)
	assert.Equal(t, "monthlyPayment", sink.ids.MonthlyPayment)
	assert.Equal(t, "8 560,75 kr", sink.renders[0].MonthlyPayment)
	assert.Equal(t, "100 000 kr", sink.renders[0].LoanAmount)

	snap := c.Snapshot()
	assert.Equal(t, "calc-1", snap.ID)
	assert.Equal(t, domain.StateIdle, snap.State)
	assert.Equal(t, uint64(1), snap.Recomputes)
}

func TestCalculator_BurstOfEditsRecomputesOnce(t *testing.T) {
	clock := debouncetest.NewClock()
	engine := fixedEngine(sampleResult)

	c := NewCalculator("calc", textConfig(), engine, WithClock(clock))
	defer c.Close()
	clock.Advance(150 * time.Millisecond)
	require.Equal(t, 1, engine.count())

	for _, text := range []string{"2", "20", "200", "200 0", "200 00", "200 000"} {
		require.NoError(t, c.SetInput(domain.FieldAmount, text))
		clock.Advance(50 * time.Millisecond)
	}
	assert.Equal(t, 1, engine.count())

	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 2, engine.count())
	assert.Equal(t, 200000.0, engine.calls[1].Principal)
}

func TestCalculator_DegenerateInputsRenderZero(t *testing.T) {
	clock := debouncetest.NewClock()
	sink := &recordingSink{}

	cfg := textConfig()
	cfg.InitialText[domain.FieldRate] = "noll"
	c := NewCalculator("calc", cfg, fixedEngine(sampleResult), WithClock(clock), WithSink(sink))
	defer c.Close()

	clock.Advance(time.Second)

	require.Len(t, sink.renders, 1)
	assert.Equal(t, domain.DisplayState{
		LoanAmount:     "0 kr",
		MonthlyPayment: "0 kr",
		TotalPayment:   "0 kr",
		TotalInterest:  "0 kr",
	}, sink.renders[0])
	assert.Equal(t, 0.0, c.Snapshot().Parsed.AnnualRatePercent)
}

func TestCalculator_TermTruncatedToWholeMonths(t *testing.T) {
	clock := debouncetest.NewClock()
	engine := fixedEngine(sampleResult)

	cfg := textConfig()
	cfg.InitialText[domain.FieldTerm] = "12,9"
	c := NewCalculator("calc", cfg, engine, WithClock(clock))
	defer c.Close()

	clock.Advance(time.Second)
	assert.Equal(t, 12, engine.calls[0].TermMonths)
}

func sliderConfig() domain.CalculatorConfig {
	cfg := textConfig()
	delete(cfg.InitialText, domain.FieldAmount)
	cfg.Sliders = map[domain.Field]domain.SliderConfig{
		domain.FieldAmount: {Min: 10_000, Max: 30_000_000, Step: 10_000, Initial: 100_000},
	}
	cfg.SliderDebounce = 10 * time.Millisecond
	cfg.DisplayDebounce = 300 * time.Millisecond
	return cfg
}

func TestCalculator_SliderDrivesRecompute(t *testing.T) {
	clock := debouncetest.NewClock()
	engine := fixedEngine(sampleResult)

	c := NewCalculator("calc", sliderConfig(), engine, WithClock(clock))
	defer c.Close()
	clock.Advance(150 * time.Millisecond)
	require.Equal(t, 1, engine.count())
	assert.Equal(t, 100000.0, engine.calls[0].Principal)

	require.NoError(t, c.MoveSlider(domain.FieldAmount, 250_000))
	clock.Advance(10 * time.Millisecond)

	snap := c.Snapshot()
	assert.Equal(t, "250 000", snap.Inputs[domain.FieldAmount])
	assert.Equal(t, "250 000", snap.Sliders[domain.FieldAmount].DisplayText)
	assert.Equal(t, domain.StatePendingRecompute, snap.State)

	clock.Advance(150 * time.Millisecond)
	require.Equal(t, 2, engine.count())
	assert.Equal(t, 250000.0, engine.calls[1].Principal)
	assert.Equal(t, domain.StateIdle, c.State())
}

func TestCalculator_DisplayEditOutOfRange(t *testing.T) {
	clock := debouncetest.NewClock()
	engine := fixedEngine(sampleResult)
	m := metrics.New(nil)

	c := NewCalculator("calc", sliderConfig(), engine,
		WithClock(clock), WithMetrics(m), WithLogger(zaptest.NewLogger(t)))
	defer c.Close()
	clock.Advance(time.Second)

	require.NoError(t, c.EditDisplay(domain.FieldAmount, "99 000 000"))
	clock.Advance(time.Second)

	assert.Equal(t, 1, engine.count(), "rejected edit must not recompute")
	assert.Equal(t, 100_000.0, c.Snapshot().Sliders[domain.FieldAmount].Value)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectedEdits))

	require.NoError(t, c.SetInput(domain.FieldAmount, "400 000"))
	clock.Advance(time.Second)
	assert.Equal(t, 2, engine.count())
	assert.Equal(t, 400000.0, engine.calls[1].Principal)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Recomputes))
}

func TestCalculator_NoSlider(t *testing.T) {
	c := NewCalculator("calc", textConfig(), fixedEngine(sampleResult), WithClock(debouncetest.NewClock()))
	defer c.Close()

	assert.ErrorIs(t, c.MoveSlider(domain.FieldRate, 3), ErrNoSlider)
	assert.ErrorIs(t, c.EditDisplay(domain.FieldTerm, "3"), ErrNoSlider)
	assert.Error(t, c.SetInput("principal", "3"))
}

func TestCalculator_Flush(t *testing.T) {
	clock := debouncetest.NewClock()
	engine := fixedEngine(sampleResult)

	c := NewCalculator("calc", sliderConfig(), engine, WithClock(clock))
	defer c.Close()

	require.NoError(t, c.EditDisplay(domain.FieldAmount, "300 000"))
	c.Flush()

	assert.Equal(t, domain.StateIdle, c.State())
	require.Equal(t, 1, engine.count(), "initial and edit recomputes collapse into one")
	assert.Equal(t, 300000.0, engine.calls[0].Principal)
	assert.Equal(t, 0, clock.Active())
}

func TestCalculator_CloseStopsTimers(t *testing.T) {
	clock := debouncetest.NewClock()
	engine := fixedEngine(sampleResult)

	c := NewCalculator("calc", sliderConfig(), engine, WithClock(clock))
	require.NoError(t, c.MoveSlider(domain.FieldAmount, 500_000))
	c.Close()
	clock.Advance(time.Second)

	assert.Equal(t, 0, engine.count())
	assert.Equal(t, 0, clock.Active())
}

func TestCalculator_RealClock(t *testing.T) {
	engine := fixedEngine(sampleResult)
	cfg := sliderConfig()
	cfg.SliderDebounce = time.Millisecond
	cfg.DisplayDebounce = time.Millisecond
	cfg.RecomputeDebounce = 5 * time.Millisecond

	c := NewCalculator("calc", cfg, engine)
	defer c.Close()

	require.NoError(t, c.MoveSlider(domain.FieldAmount, 200_000))
	assert.Eventually(t, func() bool {
		snap := c.Snapshot()
		return snap.State == domain.StateIdle && snap.Parsed.Principal == 200_000
	}, 2*time.Second, 5*time.Millisecond)
}

func TestCalculator_SeededSliderTextGoesThroughSlider(t *testing.T) {
	for _, tc := range []struct {
		name string
		text string
		want float64
	}{
		{"in range", "250 000", 250_000},
		{"snapped to step", "254 321", 250_000},
		{"above max keeps initial", "99 000 000", 100_000},
		{"unparsable keeps initial", "mycket", 100_000},
	} {
		t.Run(tc.name, func(t *testing.T) {
			clock := debouncetest.NewClock()
			engine := fixedEngine(sampleResult)

			cfg := sliderConfig()
			cfg.InitialText[domain.FieldAmount] = tc.text
			c := NewCalculator("calc", cfg, engine, WithClock(clock))
			defer c.Close()

			c.Flush()
			snap := c.Snapshot()
			slider := snap.Sliders[domain.FieldAmount]

			assert.Equal(t, tc.want, slider.Value)
			assert.Equal(t, slider.Value, snap.Parsed.Principal)
			assert.Equal(t, slider.DisplayText, snap.Inputs[domain.FieldAmount])
			require.Equal(t, 1, engine.count())
			assert.Equal(t, tc.want, engine.calls[0].Principal)
		})
	}
}
