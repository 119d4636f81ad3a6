// Package format renders market values for display. Every function accepts
// any float64 and falls back to a fixed zero form for NaN, infinities and
// values that make no sense for the quantity.
package format

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	ZeroPrice      = "$0.00"
	ZeroPercentage = "0.00%"
	NoSupply       = "N/A"
)

var printer = message.NewPrinter(language.English)

type magnitude struct {
	threshold float64
	suffix    string
}

var magnitudes = []magnitude{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

func invalid(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// Price formats a unit price. Precision grows as the price shrinks:
// exponential below 1e-6, then 6, 4 and 2 decimals for sub-cent, sub-dollar
// and sub-hundred prices, and grouped thousands above that.
func Price(v float64) string {
	if invalid(v) || v <= 0 {
		return ZeroPrice
	}

	switch {
	case v < 1e-6:
		return "$" + exponential(v, 2)
	case v < 0.01:
		return "$" + fixed(v, 6)
	case v < 1:
		return "$" + fixed(v, 4)
	case v < 100:
		return "$" + fixed(v, 2)
	default:
		return "$" + grouped(v, 2)
	}
}

// LargeNumber formats market caps and volumes with a K/M/B/T suffix
func LargeNumber(v float64) string {
	if invalid(v) || v < 0 {
		return ZeroPrice
	}
	return "$" + compact(v)
}

// Percentage formats a signed percentage with two decimals
func Percentage(v float64) string {
	if invalid(v) {
		return ZeroPercentage
	}
	return fixed(v, 2) + "%"
}

// Supply formats a coin count. Small supplies are shown as whole numbers.
func Supply(v float64) string {
	if invalid(v) || v < 0 {
		return NoSupply
	}
	if v < 1e3 {
		return grouped(v, 0)
	}
	return compact(v)
}

func PricePtr(v *float64) string {
	if v == nil {
		return ZeroPrice
	}
	return Price(*v)
}

func LargeNumberPtr(v *float64) string {
	if v == nil {
		return ZeroPrice
	}
	return LargeNumber(*v)
}

func PercentagePtr(v *float64) string {
	if v == nil {
		return ZeroPercentage
	}
	return Percentage(*v)
}

func SupplyPtr(v *float64) string {
	if v == nil {
		return NoSupply
	}
	return Supply(*v)
}

func compact(v float64) string {
	for _, m := range magnitudes {
		if v >= m.threshold {
			return fixed(v/m.threshold, 2) + m.suffix
		}
	}
	return fixed(v, 2)
}

// fixed rounds half away from zero, unlike strconv which rounds the binary value
func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// grouped is fixed with thousands separators in the integer part
func grouped(v float64, places int32) string {
	s := fixed(v, places)

	intPart, frac, hasFrac := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		// beyond int64; leave ungrouped
		return s
	}

	out := printer.Sprintf("%d", n)
	if hasFrac {
		out += "." + frac
	}
	return out
}

// exponential renders v like 5.00e-7, without zero padding in the exponent
func exponential(v float64, places int) string {
	s := strconv.FormatFloat(v, 'e', places, 64)

	mantissa, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}

	sign := ""
	switch exp[0] {
	case '-':
		sign = "-"
		exp = exp[1:]
	case '+':
		sign = "+"
		exp = exp[1:]
	}
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
	}

	return mantissa + "e" + sign + exp
}
