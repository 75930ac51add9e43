package control

import (
	"math"
	"sync"
	"time"

	"loan-calculator/debounce"
	"loan-calculator/domain"
	"loan-calculator/format"
)

// ValueChange is published after a slider value has been applied.
type ValueChange struct {
	Value      float64
	Percentage float64
}

// SyncController keeps a range control and its free-text display
// consistent. Slider moves are applied after the slider debounce; display
// edits are parsed after the display debounce and only accepted when they
// fall inside [Min, Max].
type SyncController struct {
	mu          sync.Mutex
	cfg         domain.SliderConfig
	locale      format.Locale
	value       float64
	percentage  float64
	displayText string

	visual *debounce.Debouncer
	edit   *debounce.Debouncer

	listeners []func(ValueChange)
	rejected  []func(text string, parsed float64)
}

func NewSyncController(
	cfg domain.SliderConfig,
	locale format.Locale,
	clock debounce.Clock,
	sliderDelay, displayDelay time.Duration,
) *SyncController {
	if cfg.Max < cfg.Min {
		cfg.Min, cfg.Max = cfg.Max, cfg.Min
	}

	s := &SyncController{cfg: cfg, locale: locale}
	s.visual = debounce.New(clock, sliderDelay, s.applyValue)
	s.edit = debounce.New(clock, displayDelay, s.applyDisplay)

	// A zero Initial means unset unless zero lies inside the range.
	initial := cfg.Initial
	if initial == 0 && (cfg.Min > 0 || cfg.Max < 0) {
		initial = cfg.Min
	}
	s.value = s.normalize(initial)
	s.percentage = s.fill(s.value)
	s.displayText = locale.Format(s.value, cfg.Decimals)
	return s
}

// OnChange registers fn to run after every applied value.
func (s *SyncController) OnChange(fn func(ValueChange)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// OnReject registers fn to run when a display edit is ignored.
func (s *SyncController) OnReject(fn func(text string, parsed float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected = append(s.rejected, fn)
}

// MoveSlider sets the control value, clamped to its range.
func (s *SyncController) MoveSlider(v float64) {
	s.mu.Lock()
	s.value = s.normalize(v)
	s.mu.Unlock()

	s.visual.Trigger()
}

// EditDisplay records free text typed into the display.
func (s *SyncController) EditDisplay(text string) {
	s.mu.Lock()
	s.displayText = text
	s.mu.Unlock()

	s.edit.Trigger()
}

func (s *SyncController) applyValue() {
	s.mu.Lock()
	s.percentage = s.fill(s.value)
	s.displayText = s.locale.Format(s.value, s.cfg.Decimals)
	change := ValueChange{Value: s.value, Percentage: s.percentage}
	listeners := append([]func(ValueChange){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(change)
	}
}

// Seed sets the starting value from text, the way a page pre-fills the
// display. Text outside [Min, Max] is refused and the configured initial
// value stays. Nothing is scheduled.
func (s *SyncController) Seed(text string) bool {
	v, ok := s.accept(text)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = s.normalize(v)
	s.percentage = s.fill(s.value)
	s.displayText = s.locale.Format(s.value, s.cfg.Decimals)
	return true
}

// accept parses display text and reports whether it lies inside the range.
func (s *SyncController) accept(text string) (float64, bool) {
	v := s.locale.Parse(text)
	return v, v >= s.cfg.Min && v <= s.cfg.Max
}

func (s *SyncController) applyDisplay() {
	s.mu.Lock()
	text := s.displayText
	v, ok := s.accept(text)
	if !ok {
		rejected := append([]func(string, float64){}, s.rejected...)
		s.mu.Unlock()

		for _, fn := range rejected {
			fn(text, v)
		}
		return
	}
	s.value = s.normalize(v)
	s.mu.Unlock()

	s.visual.Trigger()
}

// normalize clamps v to the range and snaps it to the step grid, the way a
// native range input stores its value.
func (s *SyncController) normalize(v float64) float64 {
	if math.IsNaN(v) {
		v = s.cfg.Min
	}
	v = math.Min(math.Max(v, s.cfg.Min), s.cfg.Max)
	if s.cfg.Step > 0 {
		v = s.cfg.Min + math.Round((v-s.cfg.Min)/s.cfg.Step)*s.cfg.Step
		if v > s.cfg.Max {
			v -= s.cfg.Step
		}
	}
	return v
}

// fill is the filled share of the track as a percentage.
func (s *SyncController) fill(v float64) float64 {
	span := s.cfg.Max - s.cfg.Min
	if span <= 0 {
		return 0
	}
	return (v - s.cfg.Min) / span * 100
}

// Flush applies pending display edits and slider moves immediately.
func (s *SyncController) Flush() {
	s.edit.Flush()
	s.visual.Flush()
}

func (s *SyncController) State() domain.SyncState {
	if s.edit.Pending() || s.visual.Pending() {
		return domain.StatePendingRecompute
	}
	return domain.StateIdle
}

func (s *SyncController) Value() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

func (s *SyncController) Snapshot() domain.SliderSnapshot {
	state := s.State()

	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SliderSnapshot{
		Value:       s.value,
		Percentage:  s.percentage,
		DisplayText: s.displayText,
		State:       state,
	}
}

// Close cancels pending work. The controller ignores further edits.
func (s *SyncController) Close() {
	s.edit.Stop()
	s.visual.Stop()
}
