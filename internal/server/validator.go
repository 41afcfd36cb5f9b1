package server

import (
	"github.com/go-playground/validator/v10"

	"github.com/MShkut/personal-finance-tracker/internal/forms"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator создает валидатор на базе go-playground/validator с правилами
// для сумм и частот из форм онбординга.
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("positive_amount", func(fl validator.FieldLevel) bool {
		amount, ok := fl.Field().Interface().(forms.Amount)
		return ok && forms.IsPositiveNumber(amount)
	})
	_ = v.RegisterValidation("non_negative_amount", func(fl validator.FieldLevel) bool {
		amount, ok := fl.Field().Interface().(forms.Amount)
		return ok && forms.IsNonNegativeNumber(amount)
	})
	_ = v.RegisterValidation("frequency", func(fl validator.FieldLevel) bool {
		frequency, ok := fl.Field().Interface().(forms.Frequency)
		return ok && forms.IsValidFrequency(frequency, true)
	})
	return &CustomValidator{validator: v}
}

// Validate запускает проверку структуры по тегам.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
