package money

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DefaultCurrency = "INR"

var printer = message.NewPrinter(language.English)

// Format renders amount as "INR 1,234,567.00".
func Format(currency string, amount float64) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	rounded := decimal.NewFromFloat(amount).Round(2).InexactFloat64()
	return currency + " " + printer.Sprintf("%.2f", rounded)
}
