package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"loan-calculator/debounce/debouncetest"
	"loan-calculator/domain"
	"loan-calculator/format"
)

func newAmountSlider(clock *debouncetest.Clock) *SyncController {
	return NewSyncController(domain.SliderConfig{
		Min:     10_000,
		Max:     30_000_000,
		Step:    10_000,
		Initial: 500_000,
	}, format.NewLocale(format.Swedish), clock, 10*time.Millisecond, 300*time.Millisecond)
}

func TestSyncController_Initial(t *testing.T) {
	s := newAmountSlider(debouncetest.NewClock())

	snap := s.Snapshot()
	assert.Equal(t, 500_000.0, snap.Value)
	assert.Equal(t, "500 000", snap.DisplayText)
	assert.InDelta(t, (500_000.0-10_000)/(30_000_000-10_000)*100, snap.Percentage, 1e-9)
	assert.Equal(t, domain.StateIdle, snap.State)
}

func TestSyncController_MoveSliderUpdatesDisplay(t *testing.T) {
	clock := debouncetest.NewClock()
	s := newAmountSlider(clock)

	var changes []ValueChange
	s.OnChange(func(c ValueChange) { changes = append(changes, c) })

	s.MoveSlider(1_000_000)
	s.MoveSlider(2_000_000)
	assert.Equal(t, domain.StatePendingRecompute, s.State())
	assert.Equal(t, "500 000", s.Snapshot().DisplayText, "display waits for the debounce")

	clock.Advance(10 * time.Millisecond)

	assert.Len(t, changes, 1)
	assert.Equal(t, 2_000_000.0, changes[0].Value)
	assert.InDelta(t, (2_000_000.0-10_000)/(30_000_000-10_000)*100, changes[0].Percentage, 1e-9)
	assert.Equal(t, "2 000 000", s.Snapshot().DisplayText)
	assert.Equal(t, domain.StateIdle, s.State())
}

func TestSyncController_MoveSliderClampsAndSnaps(t *testing.T) {
	clock := debouncetest.NewClock()
	s := newAmountSlider(clock)

	s.MoveSlider(99_000_000)
	clock.Advance(10 * time.Millisecond)
	assert.Equal(t, 30_000_000.0, s.Value())
	assert.Equal(t, 100.0, s.Snapshot().Percentage)

	s.MoveSlider(-5)
	clock.Advance(10 * time.Millisecond)
	assert.Equal(t, 10_000.0, s.Value())
	assert.Equal(t, 0.0, s.Snapshot().Percentage)

	s.MoveSlider(123_456)
	clock.Advance(10 * time.Millisecond)
	assert.Equal(t, 120_000.0, s.Value())
}

func TestSyncController_EditDisplayInRange(t *testing.T) {
	clock := debouncetest.NewClock()
	s := newAmountSlider(clock)

	var changes []ValueChange
	s.OnChange(func(c ValueChange) { changes = append(changes, c) })

	s.EditDisplay("7")
	s.EditDisplay("75")
	s.EditDisplay("750 000")
	assert.Equal(t, "750 000", s.Snapshot().DisplayText)

	clock.Advance(299 * time.Millisecond)
	assert.Equal(t, 500_000.0, s.Value())

	clock.Advance(time.Millisecond)
	assert.Equal(t, 750_000.0, s.Value())
	assert.Empty(t, changes, "visual update still pending")

	clock.Advance(10 * time.Millisecond)
	assert.Len(t, changes, 1)
	assert.Equal(t, 750_000.0, changes[0].Value)
}

func TestSyncController_EditDisplayOutOfRangeIgnored(t *testing.T) {
	clock := debouncetest.NewClock()
	s := newAmountSlider(clock)

	var rejected []string
	s.OnReject(func(text string, _ float64) { rejected = append(rejected, text) })
	var changes int
	s.OnChange(func(ValueChange) { changes++ })

	s.EditDisplay("5 000")
	clock.Advance(time.Second)

	assert.Equal(t, 500_000.0, s.Value())
	assert.Equal(t, []string{"5 000"}, rejected)
	assert.Zero(t, changes)
	assert.Equal(t, domain.StateIdle, s.State())

	s.EditDisplay("inte ett tal")
	clock.Advance(time.Second)
	assert.Equal(t, 500_000.0, s.Value())
	assert.Len(t, rejected, 2)
}

func TestSyncController_ZeroSpan(t *testing.T) {
	s := NewSyncController(domain.SliderConfig{Min: 5, Max: 5}, format.NewLocale(format.Swedish),
		debouncetest.NewClock(), time.Millisecond, time.Millisecond)
	assert.Equal(t, 0.0, s.Snapshot().Percentage)
}

func TestSyncController_CloseDropsPending(t *testing.T) {
	clock := debouncetest.NewClock()
	s := newAmountSlider(clock)

	var changes int
	s.OnChange(func(ValueChange) { changes++ })

	s.MoveSlider(1_000_000)
	s.Close()
	clock.Advance(time.Second)

	assert.Zero(t, changes)
	assert.Equal(t, 0, clock.Active())
}

func TestSyncController_SeedRespectsRange(t *testing.T) {
	s := newAmountSlider(debouncetest.NewClock())

	assert.False(t, s.Seed("5 000"))
	assert.Equal(t, 500_000.0, s.Value())
	assert.Equal(t, "500 000", s.Snapshot().DisplayText)

	assert.True(t, s.Seed("1 000 000"))
	snap := s.Snapshot()
	assert.Equal(t, 1_000_000.0, snap.Value)
	assert.Equal(t, "1 000 000", snap.DisplayText)
	assert.InDelta(t, (1_000_000.0-10_000)/(30_000_000-10_000)*100, snap.Percentage, 1e-9)
	assert.Equal(t, domain.StateIdle, snap.State)
}

func TestSyncController_ZeroInitialInsideRange(t *testing.T) {
	s := NewSyncController(domain.SliderConfig{Min: -100, Max: 100, Step: 1}, format.NewLocale(format.Swedish),
		debouncetest.NewClock(), time.Millisecond, time.Millisecond)
	assert.Equal(t, 0.0, s.Value())
	assert.Equal(t, 50.0, s.Snapshot().Percentage)

	s = NewSyncController(domain.SliderConfig{Min: 10, Max: 100}, format.NewLocale(format.Swedish),
		debouncetest.NewClock(), time.Millisecond, time.Millisecond)
	assert.Equal(t, 10.0, s.Value(), "zero outside the range falls back to Min")
}
