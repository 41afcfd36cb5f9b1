package forms

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Frequency string

const (
	Weekly      Frequency = "Weekly"
	BiWeekly    Frequency = "Bi-weekly"
	SemiMonthly Frequency = "Semi-monthly"
	Monthly     Frequency = "Monthly"
	Quarterly   Frequency = "Quarterly"
	Yearly      Frequency = "Yearly"
	OneTime     Frequency = "One-time"
)

var periodsPerYear = map[Frequency]int64{
	Weekly:      52,
	BiWeekly:    26,
	SemiMonthly: 24,
	Monthly:     12,
	Quarterly:   4,
	Yearly:      1,
	OneTime:     1,
}

var frequencyAliases = map[string]Frequency{
	"weekly":       Weekly,
	"biweekly":     BiWeekly,
	"bi-weekly":    BiWeekly,
	"semimonthly":  SemiMonthly,
	"semi-monthly": SemiMonthly,
	"monthly":      Monthly,
	"quarterly":    Quarterly,
	"yearly":       Yearly,
	"annually":     Yearly,
	"onetime":      OneTime,
	"one-time":     OneTime,
	"one time":     OneTime,
}

var monthsPerYear = decimal.NewFromInt(12)

// ParseFrequency нормализует название частоты без учета регистра.
func ParseFrequency(value string) (Frequency, bool) {
	frequency, ok := frequencyAliases[strings.ToLower(strings.TrimSpace(value))]
	return frequency, ok
}

// FrequencyOptions возвращает варианты для выбора частоты в порядке отображения.
func FrequencyOptions(allowOneTime bool) []Frequency {
	options := []Frequency{Weekly, BiWeekly, SemiMonthly, Monthly, Quarterly, Yearly}
	if allowOneTime {
		options = append(options, OneTime)
	}
	return options
}

// ConvertToYearly приводит сумму с заданной частотой к годовой.
// Пустая частота считается месячной, неизвестная дает ноль.
func ConvertToYearly(amount decimal.Decimal, frequency Frequency) decimal.Decimal {
	if strings.TrimSpace(string(frequency)) == "" {
		frequency = Monthly
	}

	normalized, ok := ParseFrequency(string(frequency))
	if !ok {
		return decimal.Zero
	}

	return amount.Mul(decimal.NewFromInt(periodsPerYear[normalized]))
}

// ToMonthly делит годовую сумму на двенадцать месяцев.
func ToMonthly(yearly decimal.Decimal) decimal.Decimal {
	return yearly.Div(monthsPerYear).Round(2)
}
