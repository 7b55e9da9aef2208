package util

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Round2 coerces a monetary figure to 2-decimal display precision.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// FormatPercent renders an already-multiplied-by-100 percentage with two
// decimals and a literal % suffix, e.g. 3.448275 -> "3.45%".
func FormatPercent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2) + "%"
}

// FormatSignedPercent renders a percentage with one decimal and an explicit
// sign for positive values, e.g. 4.5 -> "+4.5%".
func FormatSignedPercent(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(1) + "%"
	if v > 0 {
		return "+" + s
	}
	return s
}

// FormatMarketCap renders an absolute market cap with a T/B/M suffix.
func FormatMarketCap(v float64) string {
	switch {
	case v >= 1e12:
		return "$" + decimal.NewFromFloat(v/1e12).StringFixed(2) + "T"
	case v >= 1e9:
		return "$" + decimal.NewFromFloat(v/1e9).StringFixed(2) + "B"
	case v >= 1e6:
		return "$" + decimal.NewFromFloat(v/1e6).StringFixed(2) + "M"
	default:
		return "$" + strconv.FormatFloat(v, 'f', 0, 64)
	}
}

// FormatVolume renders share volume with a B/M/K suffix.
func FormatVolume(v int64) string {
	f := float64(v)
	switch {
	case v >= 1_000_000_000:
		return decimal.NewFromFloat(f/1e9).StringFixed(2) + "B"
	case v >= 1_000_000:
		return decimal.NewFromFloat(f/1e6).StringFixed(2) + "M"
	case v >= 1_000:
		return decimal.NewFromFloat(f/1e3).StringFixed(2) + "K"
	default:
		return strconv.FormatInt(v, 10)
	}
}
