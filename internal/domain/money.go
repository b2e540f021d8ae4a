package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type currencyFormat struct {
	symbol  string
	digits  int
	tag     language.Tag
	decimal string
}

var currencyFormats = map[string]currencyFormat{
	"IDR": {symbol: "Rp", digits: 0, tag: language.Indonesian, decimal: ","},
	"USD": {symbol: "$", digits: 2, tag: language.AmericanEnglish, decimal: "."},
	"EUR": {symbol: "€", digits: 2, tag: language.German, decimal: ","},
	"JPY": {symbol: "¥", digits: 0, tag: language.Japanese, decimal: "."},
}

// NormalizeCurrency returns the upper-case ISO 4217 code or an error for unknown codes.
func NormalizeCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("invalid currency %q: %w", code, err)
	}
	return unit.String(), nil
}

// canonicalCurrency upper-cases a currency code, using the ISO form when the code is known.
func canonicalCurrency(code string) string {
	if normalized, err := NormalizeCurrency(code); err == nil {
		return normalized
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// FormatPrice renders an amount given in the smallest currency unit for display,
// e.g. FormatPrice(60000, "IDR") == "Rp 60.000".
func FormatPrice(amount int64, code string) string {
	code = strings.ToUpper(code)
	f, ok := currencyFormats[code]
	if !ok {
		f = currencyFormat{symbol: code, digits: 2, tag: language.English, decimal: "."}
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	p := message.NewPrinter(f.tag)
	if f.digits == 0 {
		return fmt.Sprintf("%s%s %s", sign, f.symbol, p.Sprintf("%d", amount))
	}

	scale := int64(1)
	for i := 0; i < f.digits; i++ {
		scale *= 10
	}
	whole := p.Sprintf("%d", amount/scale)
	return fmt.Sprintf("%s%s %s%s%0*d", sign, f.symbol, whole, f.decimal, f.digits, amount%scale)
}
