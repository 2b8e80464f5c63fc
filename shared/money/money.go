package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const vndSymbol = "₫"

var vndPrinter = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount of dong with Vietnamese digit grouping, e.g. "1.500.000 ₫".
func FormatVND(amount int64) string {
	return vndPrinter.Sprintf("%d %s", amount, vndSymbol)
}

// VNDToUSDCents converts dong to US cents at rate dong per dollar, rounding half up.
// At least one cent is returned for a positive amount.
func VNDToUSDCents(amount, rate int64) int64 {
	if amount <= 0 || rate <= 0 {
		return 0
	}

	cents := (amount*100 + rate/2) / rate
	if cents == 0 {
		return 1
	}

	return cents
}
