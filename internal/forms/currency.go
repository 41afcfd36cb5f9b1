package forms

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const DefaultCurrency = money.USD

// FormatCurrency форматирует сумму в основной единице валюты, например "$1,234.50".
// Неизвестный код валюты заменяется на USD.
func FormatCurrency(amount decimal.Decimal, code string) string {
	currency := money.GetCurrency(code)
	if currency == nil {
		code = DefaultCurrency
		currency = money.GetCurrency(code)
	}

	minor := amount.Shift(int32(currency.Fraction)).Round(0).IntPart()
	return money.New(minor, code).Display()
}
