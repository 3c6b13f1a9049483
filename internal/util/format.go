// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is used when a record carries no currency code.
const DefaultCurrency = "INR"

var currencySymbols = map[currency.Unit]string{
	currency.INR: "₹",
	currency.USD: "$",
	currency.EUR: "€",
	currency.GBP: "£",
}

// FormatAmount renders an amount with a currency symbol and thousands
// separators, e.g. FormatAmount(1234.5, "INR") is "₹1,234.50". Unknown
// currencies fall back to the ISO code as a prefix.
func FormatAmount(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}

	prefix := code + " "
	if unit, err := currency.ParseISO(code); err == nil {
		if sym, ok := currencySymbols[unit]; ok {
			prefix = sym
		}
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + prefix + message.NewPrinter(language.English).Sprintf("%.2f", amount)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// TitleCase capitalises each word of a category label, so "mental health"
// reads "Mental Health".
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}
