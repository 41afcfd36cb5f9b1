package onboarding

import (
	"fmt"
	"strings"
)

type Step int

const (
	StepWelcome Step = iota
	StepIncome
	StepSavings
	StepExpenses
	StepNetWorth
)

// LastStep является последним индексом мастера.
const LastStep = StepNetWorth

var stepNames = [...]string{
	StepWelcome:  "welcome",
	StepIncome:   "income",
	StepSavings:  "savings",
	StepExpenses: "expenses",
	StepNetWorth: "net-worth",
}

func (s Step) String() string {
	if s < StepWelcome || s > LastStep {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// ParseStep разбирает имя шага из URL.
func ParseStep(value string) (Step, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	for idx, name := range stepNames {
		if name == value {
			return Step(idx), true
		}
	}
	return 0, false
}

// clampStep приводит сохраненный индекс к диапазону мастера.
func clampStep(value int) Step {
	if value < int(StepWelcome) {
		return StepWelcome
	}
	if value > int(LastStep) {
		return LastStep
	}
	return Step(value)
}
