// Package control wires calculator inputs, slider/display pairs and
// computed outputs together with debounced recomputation.
package control

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"loan-calculator/debounce"
	"loan-calculator/domain"
	"loan-calculator/format"
	"loan-calculator/metrics"
)

const (
	DefaultSliderDebounce    = 10 * time.Millisecond
	DefaultDisplayDebounce   = 300 * time.Millisecond
	DefaultRecomputeDebounce = 150 * time.Millisecond
)

// Engine computes a result from parsed inputs.
type Engine interface {
	Calculate(ctx context.Context, input domain.LoanInputs) domain.LoanResult
}

// EngineFunc adapts a plain function to Engine.
type EngineFunc func(ctx context.Context, input domain.LoanInputs) domain.LoanResult

func (f EngineFunc) Calculate(ctx context.Context, input domain.LoanInputs) domain.LoanResult {
	return f(ctx, input)
}

// OutputSink receives every recomputed display state together with the ids
// of the elements it belongs in.
type OutputSink interface {
	Render(ids domain.OutputIDs, display domain.DisplayState)
}

type OutputFunc func(ids domain.OutputIDs, display domain.DisplayState)

func (f OutputFunc) Render(ids domain.OutputIDs, display domain.DisplayState) {
	f(ids, display)
}

type Option func(*Calculator)

func WithClock(clock debounce.Clock) Option {
	return func(c *Calculator) { c.clock = clock }
}

func WithSink(sink OutputSink) Option {
	return func(c *Calculator) { c.sink = sink }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Calculator) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Calculator) { c.metrics = m }
}

// Calculator is one loan calculator instance: three inputs, optional
// slider/display pairs and four outputs.
type Calculator struct {
	id     string
	cfg    domain.CalculatorConfig
	engine Engine
	locale format.Locale

	clock   debounce.Clock
	sink    OutputSink
	logger  *zap.Logger
	metrics *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	inputs     map[domain.Field]string
	parsed     domain.LoanInputs
	result     domain.LoanResult
	display    domain.DisplayState
	recomputes uint64

	sliders   map[domain.Field]*SyncController
	recompute *debounce.Debouncer
}

// ApplyDefaults fills unset delays and locale separators.
func ApplyDefaults(cfg domain.CalculatorConfig) domain.CalculatorConfig {
	if cfg.SliderDebounce <= 0 {
		cfg.SliderDebounce = DefaultSliderDebounce
	}
	if cfg.DisplayDebounce <= 0 {
		cfg.DisplayDebounce = DefaultDisplayDebounce
	}
	if cfg.RecomputeDebounce <= 0 {
		cfg.RecomputeDebounce = DefaultRecomputeDebounce
	}
	cfg.Locale = format.NewLocale(cfg.Locale).Rule()
	return cfg
}

// NewCalculator builds a calculator and schedules its first recompute.
func NewCalculator(id string, cfg domain.CalculatorConfig, engine Engine, opts ...Option) *Calculator {
	cfg = ApplyDefaults(cfg)

	c := &Calculator{
		id:      id,
		cfg:     cfg,
		engine:  engine,
		locale:  format.NewLocale(cfg.Locale),
		clock:   debounce.RealClock,
		logger:  zap.NewNop(),
		inputs:  make(map[domain.Field]string, len(domain.Fields)),
		sliders: make(map[domain.Field]*SyncController),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("calculator", id))
	c.ctx, c.cancel = context.WithCancel(context.Background())

	for _, f := range domain.Fields {
		c.inputs[f] = cfg.InitialText[f]
	}

	for field, sc := range cfg.Sliders {
		field := field // per-iteration copy; go.mod targets go1.21 loop semantics
		pair := NewSyncController(sc, c.locale, c.clock, cfg.SliderDebounce, cfg.DisplayDebounce)
		pair.OnChange(func(change ValueChange) { c.sliderChanged(field, change) })
		pair.OnReject(func(text string, parsed float64) { c.editRejected(field, text, parsed) })
		c.sliders[field] = pair

		if text, seeded := cfg.InitialText[field]; seeded && !pair.Seed(text) {
			c.logger.Debug("initial text outside slider range ignored",
				zap.String("field", string(field)),
				zap.String("text", text),
			)
		}
		c.inputs[field] = c.locale.Format(pair.Value(), sc.Decimals)
	}

	c.recompute = debounce.New(c.clock, cfg.RecomputeDebounce, c.recalculate)
	c.recompute.Trigger()
	return c
}

func (c *Calculator) ID() string {
	return c.id
}

func (c *Calculator) Config() domain.CalculatorConfig {
	return c.cfg
}

// SetInput replaces the text of an input. On a field driven by a slider the
// text goes through the slider display, so out-of-range values are ignored.
func (c *Calculator) SetInput(field domain.Field, text string) error {
	if _, err := domain.ParseField(string(field)); err != nil {
		return err
	}
	if s, ok := c.sliders[field]; ok {
		s.EditDisplay(text)
		return nil
	}

	c.mu.Lock()
	c.inputs[field] = text
	c.mu.Unlock()

	c.recompute.Trigger()
	return nil
}

// MoveSlider moves the slider paired with field.
func (c *Calculator) MoveSlider(field domain.Field, value float64) error {
	s, err := c.slider(field)
	if err != nil {
		return err
	}
	s.MoveSlider(value)
	return nil
}

// EditDisplay types text into the display paired with field.
func (c *Calculator) EditDisplay(field domain.Field, text string) error {
	s, err := c.slider(field)
	if err != nil {
		return err
	}
	s.EditDisplay(text)
	return nil
}

func (c *Calculator) slider(field domain.Field) (*SyncController, error) {
	s, ok := c.sliders[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSlider, field)
	}
	return s, nil
}

func (c *Calculator) sliderChanged(field domain.Field, change ValueChange) {
	text := c.locale.Format(change.Value, c.cfg.Sliders[field].Decimals)

	c.mu.Lock()
	c.inputs[field] = text
	c.mu.Unlock()

	c.recompute.Trigger()
}

func (c *Calculator) editRejected(field domain.Field, text string, parsed float64) {
	c.metrics.IncrementRejectedEdits()
	c.logger.Debug("display edit out of range ignored",
		zap.String("field", string(field)),
		zap.String("text", text),
		zap.Float64("parsed", parsed),
	)
}

// recalculate parses the current inputs, runs the engine and publishes the
// formatted result.
func (c *Calculator) recalculate() {
	start := time.Now()

	c.mu.Lock()
	in := domain.LoanInputs{
		Principal:         c.locale.Parse(c.inputs[domain.FieldAmount]),
		AnnualRatePercent: c.locale.Parse(c.inputs[domain.FieldRate]),
		TermMonths:        domain.WholeMonths(c.locale.Parse(c.inputs[domain.FieldTerm])),
	}
	c.mu.Unlock()

	res := c.engine.Calculate(c.ctx, in)
	display := c.locale.Display(in, res)

	c.mu.Lock()
	c.parsed = in
	c.result = res
	c.display = display
	c.recomputes++
	c.mu.Unlock()

	if c.sink != nil {
		c.sink.Render(c.cfg.OutputIDs, display)
	}
	c.metrics.ObserveRecompute(time.Since(start).Seconds())
}

// Flush applies every pending edit and recompute now, in the order the
// timers would have fired.
func (c *Calculator) Flush() {
	for _, f := range domain.Fields {
		if s, ok := c.sliders[f]; ok {
			s.Flush()
		}
	}
	c.recompute.Flush()
}

func (c *Calculator) State() domain.SyncState {
	if c.recompute.Pending() {
		return domain.StatePendingRecompute
	}
	for _, s := range c.sliders {
		if s.State() == domain.StatePendingRecompute {
			return domain.StatePendingRecompute
		}
	}
	return domain.StateIdle
}

func (c *Calculator) Snapshot() domain.CalculatorSnapshot {
	state := c.State()

	var sliders map[domain.Field]domain.SliderSnapshot
	if len(c.sliders) > 0 {
		sliders = make(map[domain.Field]domain.SliderSnapshot, len(c.sliders))
		for f, s := range c.sliders {
			sliders[f] = s.Snapshot()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	inputs := make(map[domain.Field]string, len(c.inputs))
	for f, v := range c.inputs {
		inputs[f] = v
	}
	return domain.CalculatorSnapshot{
		ID:         c.id,
		Inputs:     inputs,
		Sliders:    sliders,
		Parsed:     c.parsed,
		Result:     c.result,
		Display:    c.display,
		State:      state,
		Recomputes: c.recomputes,
	}
}

// Close stops all timers. Pending edits are dropped.
func (c *Calculator) Close() {
	c.recompute.Stop()
	for _, s := range c.sliders {
		s.Close()
	}
	c.cancel()
}
