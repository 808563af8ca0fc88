// Package money formatea importes en rupias para mensajes, correos y recibos.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Format devuelve "Rs 3,000" o "Rs 1,234.50" (dos decimales solo si hay fracción).
func Format(d decimal.Decimal) string {
	d = d.Round(2)
	if d.Equal(d.Truncate(0)) {
		return printer.Sprintf("Rs %d", d.IntPart())
	}
	return printer.Sprintf("Rs %.2f", d.InexactFloat64())
}

// Percent devuelve "17%".
func Percent(p int64) string {
	return printer.Sprintf("%d%%", p)
}
