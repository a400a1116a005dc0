// Package money formats paise amounts for operators.
package money

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const symbol = "₹"

var printer = message.NewPrinter(language.English)

// Format renders cents as rupees with digit grouping. Whole amounts drop the
// fraction: 7000 -> "₹70", 123456 -> "₹1,234.56".
func Format(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	if cents%100 == 0 {
		return sign + symbol + printer.Sprintf("%d", cents/100)
	}
	return sign + symbol + printer.Sprintf("%d", cents/100) + fmt.Sprintf(".%02d", cents%100)
}
