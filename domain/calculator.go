package domain

import (
	"fmt"
	"time"
)

// Field identifies one of the three calculator inputs.
type Field string

const (
	FieldAmount Field = "amount"
	FieldRate   Field = "rate"
	FieldTerm   Field = "term"
)

// Fields lists the calculator inputs in display order.
var Fields = []Field{FieldAmount, FieldRate, FieldTerm}

func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldAmount, FieldRate, FieldTerm:
		return f, nil
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// SyncState is the debounce state of a synchronized pair or calculator.
type SyncState string

const (
	StateIdle             SyncState = "idle"
	StatePendingRecompute SyncState = "pending_recompute"
)

// LocaleRule describes how numbers are rendered and read back.
type LocaleRule struct {
	GroupSeparator   string `json:"groupSeparator" yaml:"group_separator"`
	DecimalSeparator string `json:"decimalSeparator" yaml:"decimal_separator"`
	CurrencySuffix   string `json:"currencySuffix" yaml:"currency_suffix"`
}

// SliderConfig pairs a range control with a text display.
type SliderConfig struct {
	SliderID  string  `json:"sliderId" yaml:"slider_id"`
	DisplayID string  `json:"displayId" yaml:"display_id"`
	Min       float64 `json:"min" yaml:"min"`
	Max       float64 `json:"max" yaml:"max"`
	Step      float64 `json:"step" yaml:"step"`
	Initial   float64 `json:"initial" yaml:"initial"`
	// Decimals shown in the display.
	Decimals int `json:"decimals" yaml:"decimals"`
}

// CalculatorConfig is the explicit per-instance configuration of a
// calculator: which elements it owns, how it debounces and how it formats.
type CalculatorConfig struct {
	InputIDs  map[Field]string `json:"inputIds,omitempty" yaml:"input_ids"`
	OutputIDs OutputIDs        `json:"outputIds" yaml:"output_ids"`

	// Sliders is keyed by the input field the slider drives.
	Sliders map[Field]SliderConfig `json:"sliders,omitempty" yaml:"sliders"`

	// InitialText seeds the free-text inputs.
	InitialText map[Field]string `json:"initialText,omitempty" yaml:"initial_text"`

	SliderDebounce    time.Duration `json:"sliderDebounce" yaml:"slider_debounce"`
	DisplayDebounce   time.Duration `json:"displayDebounce" yaml:"display_debounce"`
	RecomputeDebounce time.Duration `json:"recomputeDebounce" yaml:"recompute_debounce"`

	Locale LocaleRule `json:"locale" yaml:"locale"`
}

type OutputIDs struct {
	LoanAmount     string `json:"loanAmount" yaml:"loan_amount"`
	MonthlyPayment string `json:"monthlyPayment" yaml:"monthly_payment"`
	TotalPayment   string `json:"totalPayment" yaml:"total_payment"`
	TotalInterest  string `json:"totalInterest" yaml:"total_interest"`
}

// SliderSnapshot is the observable state of one slider/display pair.
type SliderSnapshot struct {
	Value       float64   `json:"value"`
	Percentage  float64   `json:"percentage"`
	DisplayText string    `json:"displayText"`
	State       SyncState `json:"state"`
}

// CalculatorSnapshot is the observable state of a calculator instance.
type CalculatorSnapshot struct {
	ID      string                   `json:"id"`
	Inputs  map[Field]string         `json:"inputs"`
	Sliders map[Field]SliderSnapshot `json:"sliders,omitempty"`
	Parsed  LoanInputs               `json:"parsed"`
	Result  LoanResult               `json:"result"`
	Display DisplayState             `json:"display"`
	State   SyncState                `json:"state"`
	// Recomputes counts completed recomputations since creation.
	Recomputes uint64 `json:"recomputes"`
}
