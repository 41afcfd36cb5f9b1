// Package onboarding реализует мастер первичной настройки бюджета:
// позицию шага, накопление данных и сохранение контрольных точек.
package onboarding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MShkut/personal-finance-tracker/internal/forms"
	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/userdata"
)

var (
	ErrStepMismatch   = errors.New("flow is not at this step")
	ErrCannotContinue = errors.New("step data is incomplete")
	ErrUnknownKey     = errors.New("unknown form data key")
	ErrUnknownList    = errors.New("unknown list")
	ErrInvalidValue   = errors.New("invalid form data value")
	ErrComplete       = errors.New("onboarding already complete")
)

// Store описывает хранилище, в которое мастер пишет контрольные точки.
type Store interface {
	LoadUserData(ctx context.Context, userID uuid.UUID) (*models.OnboardingFormData, error)
	SaveUserData(ctx context.Context, userID uuid.UUID, data models.OnboardingFormData) error
}

type Options struct {
	// Resume начинает с сохраненного onboardingStep вместо шага 0.
	Resume   bool
	Currency string
	Logger   *slog.Logger
	Now      func() time.Time
}

type Flow struct {
	mu       sync.Mutex
	userID   uuid.UUID
	store    Store
	logger   *slog.Logger
	now      func() time.Time
	currency string

	step     Step
	data     models.OnboardingFormData
	drafts   map[ListName]*forms.List[models.ListItem]
	complete bool
}

// NewFlow создает мастер пользователя. seed заполняет форму и черновики списков
// ранее сохраненными данными и может быть nil.
func NewFlow(userID uuid.UUID, store Store, seed *models.OnboardingFormData, opts Options) *Flow {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	currency := opts.Currency
	if currency == "" {
		currency = forms.DefaultCurrency
	}

	f := &Flow{
		userID:   userID,
		store:    store,
		logger:   logger,
		now:      now,
		currency: currency,
		drafts:   newDrafts(seed),
	}

	if seed != nil {
		f.data.Merge(*seed)
		if opts.Resume && !seed.OnboardingComplete {
			f.step = clampStep(seed.OnboardingStep)
		}
	}

	return f
}

// CurrentStep возвращает текущий шаг мастера.
func (f *Flow) CurrentStep() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// IsComplete сообщает, завершен ли мастер.
func (f *Flow) IsComplete() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.complete
}

// NextStep переходит на следующий шаг. На последнем шаге ничего не меняется.
func (f *Flow) NextStep() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.advance()
	return f.step
}

func (f *Flow) advance() {
	if f.step < LastStep {
		f.step++
	}
}

// PrevStep возвращается на предыдущий шаг. На шаге 0 возвращает false,
// и решение о навигации остается за вызывающей стороной.
func (f *Flow) PrevStep() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.step == StepWelcome {
		return false
	}
	f.step--
	return true
}

// Reset возвращает мастер на шаг 0, сохраняя введенные данные.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = StepWelcome
	f.complete = false
}

// FormData возвращает копию накопленных данных.
func (f *Flow) FormData() models.OnboardingFormData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data
}

// UpdateFormData кладет значение под ключ, не трогая остальные ключи.
// value может быть значением раздела, указателем на него или JSON.
func (f *Flow) UpdateFormData(key models.FormKey, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var patch models.OnboardingFormData

	switch key {
	case models.KeyHousehold:
		household, err := decodeAs[models.Household](value)
		if err != nil {
			return err
		}
		patch.Household = household
	case models.KeyPeriod:
		period, err := decodeAs[models.Period](value)
		if err != nil {
			return err
		}
		patch.Period = period
	case models.KeyIncome:
		income, err := decodeAs[models.IncomeData](value)
		if err != nil {
			return err
		}
		patch.Income = income
		f.drafts[ListIncomeSources] = forms.NewList(income.IncomeSources...)
	case models.KeySavingsAllocation:
		savings, err := decodeAs[models.SavingsAllocationData](value)
		if err != nil {
			return err
		}
		patch.SavingsAllocation = savings
		f.drafts[ListSavingsAllocations] = forms.NewList(savings.Allocations...)
	case models.KeyExpenses:
		expenses, err := decodeAs[models.ExpensesData](value)
		if err != nil {
			return err
		}
		patch.Expenses = expenses
		f.drafts[ListExpenses] = forms.NewList(expenses.Items...)
	case models.KeyNetWorth:
		netWorth, err := decodeAs[models.NetWorthData](value)
		if err != nil {
			return err
		}
		patch.NetWorth = netWorth
		f.drafts[ListAssets] = forms.NewList(netWorth.Assets...)
		f.drafts[ListLiabilities] = forms.NewList(netWorth.Liabilities...)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	f.data.Merge(patch)
	return nil
}

func decodeAs[T any](value any) (*T, error) {
	switch v := value.(type) {
	case T:
		return &v, nil
	case *T:
		if v == nil {
			return nil, fmt.Errorf("%w: nil value", ErrInvalidValue)
		}
		copied := *v
		return &copied, nil
	case json.RawMessage:
		return decodeJSON[T](v)
	case []byte:
		return decodeJSON[T](v)
	default:
		return nil, fmt.Errorf("%w: unexpected type %T", ErrInvalidValue, value)
	}
}

func decodeJSON[T any](payload []byte) (*T, error) {
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return &out, nil
}

// SetHouseholdAndPeriod заполняет домохозяйство и период первого шага.
func (f *Flow) SetHouseholdAndPeriod(household models.Household, period models.Period) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setHouseholdAndPeriod(household, period)
}

func (f *Flow) setHouseholdAndPeriod(household models.Household, period models.Period) {
	f.data.Household = &household
	f.data.Period = &period
}

// ListItems возвращает строки черновика списка.
func (f *Flow) ListItems(name ListName) ([]models.ListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list, ok := f.drafts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownList, name)
	}
	return list.Items(), nil
}

// AddListItem добавляет строку в черновик списка.
func (f *Flow) AddListItem(name ListName, item models.ListItem) (models.ListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list, ok := f.drafts[name]
	if !ok {
		return models.ListItem{}, fmt.Errorf("%w: %q", ErrUnknownList, name)
	}
	return list.Add(listKinds[name].normalize(item)), nil
}

// UpdateListItem заменяет строку черновика по идентификатору.
func (f *Flow) UpdateListItem(name ListName, id string, item models.ListItem) (models.ListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list, ok := f.drafts[name]
	if !ok {
		return models.ListItem{}, fmt.Errorf("%w: %q", ErrUnknownList, name)
	}
	return list.Update(id, listKinds[name].normalize(item))
}

// DeleteListItem удаляет строку черновика по идентификатору.
func (f *Flow) DeleteListItem(name ListName, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	list, ok := f.drafts[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownList, name)
	}
	return list.Delete(id)
}

// SubmitWelcome завершает шаг приветствия.
func (f *Flow) SubmitWelcome(ctx context.Context, household models.Household, period models.Period) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expect(StepWelcome); err != nil {
		return err
	}

	household.Name = strings.TrimSpace(household.Name)
	if !forms.HasValidString(household.Name) {
		return fmt.Errorf("%w: household name is required", ErrCannotContinue)
	}
	if household.Members < 0 {
		return fmt.Errorf("%w: members must not be negative", ErrInvalidValue)
	}

	switch period.Type {
	case "":
		period.Type = models.PeriodMonthly
	case models.PeriodMonthly, models.PeriodYearly:
	default:
		return fmt.Errorf("%w: period type %q", ErrInvalidValue, period.Type)
	}

	f.setHouseholdAndPeriod(household, period)
	return f.checkpoint(ctx, models.OnboardingFormData{Household: &household, Period: &period})
}

// SubmitIncome завершает шаг доходов по черновику источников.
func (f *Flow) SubmitIncome(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expect(StepIncome); err != nil {
		return err
	}

	view := f.incomeView()
	if !view.CanContinue {
		return fmt.Errorf("%w: income sources need a name and a positive amount", ErrCannotContinue)
	}

	income := computeIncome(f.drafts[ListIncomeSources].Items())
	f.data.Income = &income
	return f.checkpoint(ctx, models.OnboardingFormData{Income: &income})
}

// SubmitSavings завершает шаг распределения накоплений.
func (f *Flow) SubmitSavings(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expect(StepSavings); err != nil {
		return err
	}

	view := f.savingsView()
	if !view.CanContinue {
		return fmt.Errorf("%w: savings allocations are invalid or exceed income", ErrCannotContinue)
	}

	savings := computeSavings(f.drafts[ListSavingsAllocations].Items(), yearlyIncome(f.data))
	f.data.SavingsAllocation = &savings
	return f.checkpoint(ctx, models.OnboardingFormData{SavingsAllocation: &savings})
}

// SubmitExpenses завершает шаг расходов.
func (f *Flow) SubmitExpenses(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expect(StepExpenses); err != nil {
		return err
	}

	view := f.expensesView()
	if !view.CanContinue {
		return fmt.Errorf("%w: add at least one valid expense", ErrCannotContinue)
	}

	expenses := computeExpenses(f.drafts[ListExpenses].Items(), yearlyIncome(f.data), yearlySavings(f.data))
	f.data.Expenses = &expenses
	return f.checkpoint(ctx, models.OnboardingFormData{Expenses: &expenses})
}

// SubmitNetWorth завершает мастер: сохраняет полный набор данных с отметкой
// о завершении и возвращает его вызывающей стороне.
func (f *Flow) SubmitNetWorth(ctx context.Context) (models.OnboardingFormData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.expect(StepNetWorth); err != nil {
		return models.OnboardingFormData{}, err
	}

	view := f.netWorthView()
	if !view.CanContinue {
		return models.OnboardingFormData{}, fmt.Errorf("%w: assets and liabilities need a name and a non-negative amount", ErrCannotContinue)
	}

	netWorth := computeNetWorth(f.drafts[ListAssets].Items(), f.drafts[ListLiabilities].Items())
	f.data.NetWorth = &netWorth

	completed := f.data
	completed.OnboardingStep = int(LastStep) + 1
	completed.OnboardingComplete = true
	completed.CompletedAt = f.now().UTC().Format(time.RFC3339)

	if !completed.HasAllSections() {
		return models.OnboardingFormData{}, fmt.Errorf("%w: earlier steps are missing", ErrCannotContinue)
	}

	if err := f.store.SaveUserData(ctx, f.userID, completed); err != nil {
		return models.OnboardingFormData{}, fmt.Errorf("save completed onboarding: %w", err)
	}

	completed.SchemaVersion = models.SchemaVersion
	f.data = completed
	f.complete = true
	f.logger.Info("onboarding completed", slog.String("user_id", f.userID.String()))

	return completed, nil
}

func (f *Flow) expect(step Step) error {
	if f.complete {
		return ErrComplete
	}
	if f.step != step {
		return fmt.Errorf("%w: at %s, got %s", ErrStepMismatch, f.step, step)
	}
	return nil
}

// checkpoint читает сохраненную запись, накладывает вклад шага и перезаписывает
// её целиком с индексом следующего шага. Шаг меняется только после записи.
func (f *Flow) checkpoint(ctx context.Context, contribution models.OnboardingFormData) error {
	current, err := f.store.LoadUserData(ctx, f.userID)
	if err != nil {
		if !errors.Is(err, userdata.ErrCorruptData) {
			return fmt.Errorf("load checkpoint: %w", err)
		}
		f.logger.Warn("overwriting corrupt onboarding record",
			slog.String("user_id", f.userID.String()),
			slog.String("error", err.Error()),
		)
		current = nil
	}

	record := models.OnboardingFormData{}
	if current != nil {
		record = *current
	}
	record.Merge(contribution)
	record.OnboardingStep = int(f.step) + 1
	// Незавершенный мастер не может оставить в записи старую отметку о завершении.
	record.OnboardingComplete = false
	record.CompletedAt = ""

	if err := f.store.SaveUserData(ctx, f.userID, record); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	f.logger.Info("onboarding checkpoint saved",
		slog.String("user_id", f.userID.String()),
		slog.String("step", f.step.String()),
		slog.Int("onboarding_step", record.OnboardingStep),
	)

	f.advance()
	return nil
}
