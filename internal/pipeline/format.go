package pipeline

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatPriceSF renders a price per square foot as whole dollars, "$125".
func FormatPriceSF(v float64) string {
	return fmt.Sprintf("$%.0f", v)
}

// FormatPrice renders a price as whole dollars with thousands separators, "$1,325,500".
func FormatPrice(v float64) string {
	return printer.Sprintf("$%.0f", v)
}

// FormatCount renders a count with thousands separators, "12,345".
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatNumber renders a value rounded to a whole number with thousands separators.
func FormatNumber(v float64) string {
	return printer.Sprintf("%.0f", v)
}

// FormatYear renders a year without separators, "1998".
func FormatYear(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

// FormatPercent renders a fractional change as a percentage with one decimal, "25.0%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
