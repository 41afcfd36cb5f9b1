package forms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount хранит сумму так, как её ввел пользователь: строкой или числом.
type Amount string

// AmountOf переводит decimal в Amount.
func AmountOf(value decimal.Decimal) Amount {
	return Amount(value.String())
}

// UnmarshalJSON принимает как JSON-строку, так и JSON-число.
func (a *Amount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = ""
		return nil
	}

	if trimmed[0] == '"' {
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(value))
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(trimmed, &number); err != nil {
		return fmt.Errorf("amount must be a number or a numeric string: %w", err)
	}

	*a = Amount(number.String())
	return nil
}

// Decimal разбирает сумму. Допускаются разделители тысяч и знак доллара.
func (a Amount) Decimal() (decimal.Decimal, bool) {
	value := strings.TrimSpace(string(a))
	value = strings.ReplaceAll(value, ",", "")
	value = strings.TrimPrefix(value, "$")
	if value == "" {
		return decimal.Zero, false
	}

	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}

	return parsed, true
}

// Value возвращает сумму или ноль, если её нельзя разобрать.
func (a Amount) Value() decimal.Decimal {
	value, _ := a.Decimal()
	return value
}
