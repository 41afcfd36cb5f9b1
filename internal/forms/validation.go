package forms

import "strings"

// HasValidString проверяет, что строка не пустая после обрезки пробелов.
func HasValidString(value string) bool {
	return strings.TrimSpace(value) != ""
}

// IsPositiveNumber проверяет, что сумма разбирается и больше нуля.
func IsPositiveNumber(value Amount) bool {
	parsed, ok := value.Decimal()
	return ok && parsed.IsPositive()
}

// IsNonNegativeNumber проверяет, что сумма разбирается и не меньше нуля.
func IsNonNegativeNumber(value Amount) bool {
	parsed, ok := value.Decimal()
	return ok && !parsed.IsNegative()
}

// IsValidFrequency проверяет частоту. OneTime допустима только при allowOneTime.
func IsValidFrequency(value Frequency, allowOneTime bool) bool {
	normalized, ok := ParseFrequency(string(value))
	if !ok {
		return false
	}

	return allowOneTime || normalized != OneTime
}
