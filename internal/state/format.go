package state

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatCount renders a stored count the way tiles display it:
// numbers with thousands separators ("1,247"), percentages with a
// trailing sign ("98%").
func FormatCount(v float64, kind CountKind) string {
	switch kind {
	case CountPercent:
		return printer.Sprintf("%v%%", number.Decimal(v, number.MaxFractionDigits(1)))
	default:
		return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
	}
}
