// Package format renders and reads back amounts using a locale rule:
// thousands grouped from the right and a locale decimal separator.
package format

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"loan-calculator/domain"
)

// Swedish is the rule used by the site: "1 234 567,89 kr".
var Swedish = domain.LocaleRule{
	GroupSeparator:   " ",
	DecimalSeparator: ",",
	CurrencySuffix:   " kr",
}

var floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Locale formats and parses numbers according to a domain.LocaleRule.
type Locale struct {
	rule domain.LocaleRule
}

// NewLocale fills empty separators from Swedish.
func NewLocale(rule domain.LocaleRule) Locale {
	if rule.DecimalSeparator == "" {
		rule.DecimalSeparator = Swedish.DecimalSeparator
	}
	if rule.GroupSeparator == "" {
		rule.GroupSeparator = Swedish.GroupSeparator
	}
	if rule.CurrencySuffix == "" {
		rule.CurrencySuffix = Swedish.CurrencySuffix
	}
	return Locale{rule: rule}
}

func (l Locale) Rule() domain.LocaleRule {
	return l.rule
}

// Format rounds num to the given number of decimals (half away from zero)
// and groups the integer part every three digits. Non-finite values format
// as zero.
func (l Locale) Format(num float64, decimals int) string {
	if math.IsNaN(num) || math.IsInf(num, 0) {
		num = 0
	}
	if decimals < 0 {
		decimals = 0
	}

	fixed := decimal.NewFromFloat(num).StringFixed(int32(decimals))

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	if sign == "-" && strings.Trim(intPart+fracPart, "0") == "" {
		sign = ""
	}

	out := sign + group(intPart, l.rule.GroupSeparator)
	if fracPart != "" {
		out += l.rule.DecimalSeparator + fracPart
	}
	return out
}

// Currency is Format followed by the currency suffix.
func (l Locale) Currency(num float64, decimals int) string {
	return l.Format(num, decimals) + l.rule.CurrencySuffix
}

// Parse reads a formatted number back. Whitespace and group separators are
// dropped, the first decimal separator becomes '.', and the longest numeric
// prefix is parsed. Anything unparsable or non-finite yields 0.
func (l Locale) Parse(s string) float64 {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if sep := strings.TrimSpace(l.rule.GroupSeparator); sep != "" && sep != l.rule.DecimalSeparator {
		s = strings.ReplaceAll(s, sep, "")
	}
	if l.rule.DecimalSeparator != "." {
		s = strings.Replace(s, l.rule.DecimalSeparator, ".", 1)
	}

	v, ok := ParseFloatPrefix(s)
	if !ok {
		return 0
	}
	return v
}

// ParseFloatPrefix parses the longest leading decimal number in s, ignoring
// leading whitespace. It reports false when s has no numeric prefix or the
// value is not finite.
func ParseFloatPrefix(s string) (float64, bool) {
	m := floatPrefix.FindString(strings.TrimLeftFunc(s, unicode.IsSpace))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func group(digits, sep string) string {
	if len(digits) <= 3 || sep == "" {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
