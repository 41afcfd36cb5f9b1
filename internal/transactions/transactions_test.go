package transactions

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MShkut/personal-finance-tracker/internal/ai"
	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/notifications"
	"github.com/MShkut/personal-finance-tracker/internal/repository/memory"
	"github.com/MShkut/personal-finance-tracker/internal/review"
	"github.com/MShkut/personal-finance-tracker/internal/theme"
	"github.com/MShkut/personal-finance-tracker/internal/userdata"
)

type stubRecategorizer struct {
	suggestions []ai.Suggestion
	err         error
	inputs      []ai.CategorizeInput
}

func (r *stubRecategorizer) Categorize(_ context.Context, input ai.CategorizeInput) ([]ai.Suggestion, error) {
	r.inputs = append(r.inputs, input)
	return r.suggestions, r.err
}

type recordingPublisher struct {
	events []notifications.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ uuid.UUID, event notifications.Event) error {
	p.events = append(p.events, event)
	return nil
}

func newTestService(t *testing.T, recategorizer Recategorizer) (*Service, *userdata.Store, *recordingPublisher) {
	t.Helper()
	store := userdata.NewStore(memory.NewRecordStore())
	publisher := &recordingPublisher{}
	service := NewService(store, recategorizer, publisher, nil, "USD")
	counter := 0
	service.newID = func() string {
		counter++
		return fmt.Sprintf("tx-%d", counter)
	}
	return service, store, publisher
}

func seedTransactions(t *testing.T, store *userdata.Store, userID uuid.UUID, transactions ...models.Transaction) {
	t.Helper()
	if err := store.SaveTransactions(context.Background(), userID, transactions); err != nil {
		t.Fatalf("seed transactions: %v", err)
	}
}

// TestParseCSVAmountColumn проверяет разбор выписки с колонкой amount.
func TestParseCSVAmountColumn(t *testing.T) {
	input := "\ufeffDate,Description,Amount\n" +
		"03/15/2026,PAYROLL ACME,\"$1,200.00\"\n" +
		"\n" +
		"2026-03-16,WHOLE FOODS,(45.10)\n" +
		"\"Mar 17, 2026\",COFFEE,-4.5\n"

	rows, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Date != "2026-03-15" || !rows[0].Amount.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected 2026-03-15 and 1200, got %s and %s", rows[0].Date, rows[0].Amount)
	}
	if !rows[1].Amount.Equal(decimal.RequireFromString("-45.10")) {
		t.Fatalf("expected -45.10, got %s", rows[1].Amount)
	}
	if rows[1].Line != 4 {
		t.Fatalf("expected line 4, got %d", rows[1].Line)
	}
	if rows[2].Date != "2026-03-17" {
		t.Fatalf("expected 2026-03-17, got %s", rows[2].Date)
	}
	if rows[0].Raw["Description"] != "PAYROLL ACME" {
		t.Fatalf("expected raw description, got %v", rows[0].Raw)
	}
}

// TestParseCSVDebitCredit проверяет выписку с раздельными колонками списания и зачисления.
func TestParseCSVDebitCredit(t *testing.T) {
	input := "Posted Date,Payee,Debit,Credit\n2026-01-02,RENT,1500,\n2026-01-03,REFUND,,20.25\n"

	rows, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !rows[0].Amount.Equal(decimal.NewFromInt(-1500)) {
		t.Fatalf("expected -1500, got %s", rows[0].Amount)
	}
	if !rows[1].Amount.Equal(decimal.RequireFromString("20.25")) {
		t.Fatalf("expected 20.25, got %s", rows[1].Amount)
	}
}

// TestParseCSVErrors проверяет ошибки заголовка и строк.
func TestParseCSVErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: "empty file"},
		{name: "no amount", input: "date,description\n2026-01-01,x\n", want: "amount"},
		{name: "no date", input: "description,amount\nx,1\n", want: "date column"},
		{name: "bad date", input: "date,description,amount\n2026-01-01,x,1\nyesterday,y,2\n", want: "row 3"},
		{name: "bad amount", input: "date,description,amount\n2026-01-01,x,abc\n", want: "invalid amount"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tc.input))
			if !errors.Is(err, ErrImport) {
				t.Fatalf("expected ErrImport, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

// TestCategorizer проверяет порядок правил и уверенность.
func TestCategorizer(t *testing.T) {
	data := &models.OnboardingFormData{
		Expenses: &models.ExpensesData{Items: []models.ListItem{{Name: "Gym Membership", Category: models.ExpenseDiscretionary}}},
	}
	categorizer := NewCategorizer(Categories(data))

	cases := []struct {
		description string
		amount      int64
		category    string
		confidence  float64
	}{
		{description: "ACME PAYROLL", amount: 2000, category: "salary", confidence: keywordConfidence},
		{description: "UBER EATS ORDER", amount: -30, category: "dining", confidence: keywordConfidence},
		{description: "UBER TRIP", amount: -12, category: "transportation", confidence: keywordConfidence},
		{description: "GYM MEMBERSHIP MARCH", amount: -50, category: "expense-gym-membership", confidence: userRuleConfidence},
		{description: "PAYROLL CORRECTION", amount: -100, category: "salary", confidence: signMismatchConfidence},
		{description: "ZELLE FROM BOB", amount: 40, category: CategoryOtherIncome, confidence: incomeFallback},
		{description: "MYSTERY", amount: -5, category: "", confidence: uncategorizedFallback},
	}

	for _, tc := range cases {
		category, confidence := categorizer.Categorize(tc.description, decimal.NewFromInt(tc.amount))
		got := ""
		if category != nil {
			got = category.ID
		}
		if got != tc.category || confidence != tc.confidence {
			t.Fatalf("%s: expected %q/%v, got %q/%v", tc.description, tc.category, tc.confidence, got, confidence)
		}
	}
}

// TestCategoriesFromOnboarding проверяет добавление категорий пользователя без дублей.
func TestCategoriesFromOnboarding(t *testing.T) {
	data := &models.OnboardingFormData{
		Income:            &models.IncomeData{IncomeSources: []models.ListItem{{Name: "Side Gig"}, {Name: "side gig"}}},
		SavingsAllocation: &models.SavingsAllocationData{Allocations: []models.ListItem{{Name: "Emergency Fund"}}},
		Expenses:          &models.ExpensesData{Items: []models.ListItem{{Name: "  "}}},
	}

	categories := Categories(data)
	if len(categories) != len(defaultCategories)+2 {
		t.Fatalf("expected %d categories, got %d", len(defaultCategories)+2, len(categories))
	}

	last := categories[len(categories)-1]
	if last.ID != "savings-emergency-fund" || last.Type != models.CategoryTypeSavings {
		t.Fatalf("expected savings-emergency-fund, got %+v", last)
	}
}

// TestImportAppendsAndNotifies проверяет сохранение импорта и событие об обновлении.
func TestImportAppendsAndNotifies(t *testing.T) {
	service, store, publisher := newTestService(t, nil)
	ctx := context.Background()
	userID := uuid.New()
	seedTransactions(t, store, userID, models.Transaction{ID: "old", Date: "2026-01-01", Amount: decimal.NewFromInt(-1)})

	result, err := service.Import(ctx, userID, strings.NewReader("date,description,amount\n2026-02-01,NETFLIX,-15.99\n2026-02-02,MYSTERY,-3\n"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Imported != 2 || result.Total != 3 || result.Uncategorized != 1 || result.LowConfidence != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	stored, _ := store.LoadTransactions(ctx, userID)
	if len(stored) != 3 || stored[0].ID != "old" {
		t.Fatalf("expected old transaction first, got %+v", stored)
	}
	if stored[1].OriginalData == nil || stored[1].OriginalData.Source != models.SourceCSV || stored[1].OriginalData.Row != 2 {
		t.Fatalf("expected csv origin row 2, got %+v", stored[1].OriginalData)
	}

	if len(publisher.events) != 1 || publisher.events[0].Type != notifications.EventTransactionsUpdated {
		t.Fatalf("expected transactions_updated event, got %+v", publisher.events)
	}
}

// TestImportFailureKeepsStoredList проверяет, что ошибка строки не меняет сохраненный список.
func TestImportFailureKeepsStoredList(t *testing.T) {
	service, store, _ := newTestService(t, nil)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := service.Import(ctx, userID, strings.NewReader("date,description,amount\n2026-02-01,A,1\nbad,B,2\n")); !errors.Is(err, ErrImport) {
		t.Fatalf("expected ErrImport, got %v", err)
	}
	stored, _ := store.LoadTransactions(ctx, userID)
	if len(stored) != 0 {
		t.Fatalf("expected no transactions, got %d", len(stored))
	}
}

// TestImportRecategorize проверяет применение подсказок AI только к неуверенным операциям.
func TestImportRecategorize(t *testing.T) {
	recategorizer := &stubRecategorizer{suggestions: []ai.Suggestion{
		{ID: "tx-2", CategoryID: "groceries", Confidence: 0.75},
		{ID: "tx-1", CategoryID: "groceries", Confidence: 0.99},
	}}
	service, store, _ := newTestService(t, recategorizer)
	ctx := context.Background()
	userID := uuid.New()

	result, err := service.Import(ctx, userID, strings.NewReader("date,description,amount\n2026-02-01,NETFLIX,-15.99\n2026-02-02,CORNER SHOP,-3\n"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Recategorized != 1 {
		t.Fatalf("expected 1 recategorized, got %d", result.Recategorized)
	}
	if len(recategorizer.inputs) != 1 || len(recategorizer.inputs[0].Transactions) != 1 {
		t.Fatalf("expected one low-confidence transaction sent, got %+v", recategorizer.inputs)
	}

	stored, _ := store.LoadTransactions(ctx, userID)
	if stored[0].Category.ID != "entertainment" {
		t.Fatalf("expected entertainment to stay, got %s", stored[0].Category.ID)
	}
	if stored[1].Category == nil || stored[1].Category.ID != "groceries" || stored[1].Confidence != 0.75 {
		t.Fatalf("expected groceries at 0.75, got %+v", stored[1])
	}
}

// TestImportRecategorizeFailure проверяет, что ошибка AI не ломает импорт.
func TestImportRecategorizeFailure(t *testing.T) {
	service, _, _ := newTestService(t, &stubRecategorizer{err: errors.New("quota")})

	result, err := service.Import(context.Background(), uuid.New(), strings.NewReader("date,description,amount\n2026-02-02,CORNER SHOP,-3\n"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Imported != 1 || result.Recategorized != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
}

// TestAddManual проверяет ручной ввод с явной категорией и без неё.
func TestAddManual(t *testing.T) {
	service, _, _ := newTestService(t, nil)
	ctx := context.Background()
	userID := uuid.New()

	tx, err := service.AddManual(ctx, userID, ManualEntry{Date: "03/01/2026", Description: "Cash rent", Amount: decimal.NewFromInt(-900), CategoryID: "housing"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.Date != "2026-03-01" || tx.Confidence != 1 || !tx.Confirmed || tx.OriginalData.Source != models.SourceManual {
		t.Fatalf("unexpected manual transaction %+v", tx)
	}

	tx, err = service.AddManual(ctx, userID, ManualEntry{Date: "2026-03-02", Description: "Starbucks", Amount: decimal.NewFromInt(-5)})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.Category == nil || tx.Category.ID != "dining" || tx.Confirmed {
		t.Fatalf("expected unconfirmed dining, got %+v", tx)
	}

	if _, err := service.AddManual(ctx, userID, ManualEntry{Date: "2026-03-02", Description: "x", Amount: decimal.NewFromInt(1), CategoryID: "nope"}); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if _, err := service.AddManual(ctx, userID, ManualEntry{Date: "soon", Description: "x", Amount: decimal.NewFromInt(1)}); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
}

// TestChangeCategoryAndConfirmAll проверяет ручную категорию и массовое подтверждение.
func TestChangeCategoryAndConfirmAll(t *testing.T) {
	service, store, _ := newTestService(t, nil)
	ctx := context.Background()
	userID := uuid.New()
	seedTransactions(t, store, userID,
		models.Transaction{ID: "a", Date: "2026-01-01", Amount: decimal.NewFromInt(-10), Confidence: 0.3},
		models.Transaction{ID: "b", Date: "2026-01-02", Amount: decimal.NewFromInt(-20), Confidence: 0.9, Confirmed: true},
		models.Transaction{ID: "c", Date: "2026-01-03", Amount: decimal.NewFromInt(-30), Confidence: 0.6},
	)

	tx, err := service.ChangeCategory(ctx, userID, "a", "groceries")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.Confidence != 1 || !tx.Confirmed || tx.Category.ID != "groceries" {
		t.Fatalf("unexpected transaction %+v", tx)
	}

	if _, err := service.ChangeCategory(ctx, userID, "missing", "groceries"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := service.ChangeCategory(ctx, userID, "a", "missing"); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}

	changed, err := service.ConfirmAll(ctx, userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected 1 changed, got %d", changed)
	}
}

// TestSplitEqualParts проверяет равное деление с остатком в последней части.
func TestSplitEqualParts(t *testing.T) {
	service, store, _ := newTestService(t, nil)
	ctx := context.Background()
	userID := uuid.New()
	category := models.Category{ID: "shopping", Name: "Shopping", Type: models.CategoryTypeExpense}
	seedTransactions(t, store, userID,
		models.Transaction{ID: "first", Date: "2026-01-01", Amount: decimal.NewFromInt(-1)},
		models.Transaction{ID: "parent", Date: "2026-01-02", Amount: decimal.RequireFromString("-100.01"), Category: &category, Confirmed: true},
		models.Transaction{ID: "last", Date: "2026-01-03", Amount: decimal.NewFromInt(-2)},
	)

	children, err := service.Split(ctx, userID, "parent", review.SplitRequest{Parts: 3})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	expected := []string{"-33.33", "-33.33", "-33.35"}
	for i, child := range children {
		if !child.Amount.Equal(decimal.RequireFromString(expected[i])) {
			t.Fatalf("expected part %d to be %s, got %s", i, expected[i], child.Amount)
		}
		if child.OriginalData.SplitFrom != "parent" || child.OriginalData.SplitIndex != i+1 || child.OriginalData.SplitTotal != 3 {
			t.Fatalf("unexpected split origin %+v", child.OriginalData)
		}
		if child.Confirmed || child.Category.ID != "shopping" {
			t.Fatalf("expected unconfirmed shopping part, got %+v", child)
		}
	}

	stored, _ := store.LoadTransactions(ctx, userID)
	ids := make([]string, 0, len(stored))
	for _, tx := range stored {
		ids = append(ids, tx.ID)
	}
	if strings.Join(ids, ",") != "first,tx-1,tx-2,tx-3,last" {
		t.Fatalf("expected parts in place of parent, got %v", ids)
	}

	if _, err := service.Split(ctx, userID, "tx-1", review.SplitRequest{Parts: 2}); !errors.Is(err, ErrInvalidSplit) {
		t.Fatalf("expected ErrInvalidSplit for split part, got %v", err)
	}
}

// TestSplitExplicitAmounts проверяет явные суммы частей.
func TestSplitExplicitAmounts(t *testing.T) {
	service, store, _ := newTestService(t, nil)
	ctx := context.Background()
	userID := uuid.New()
	seedTransactions(t, store, userID, models.Transaction{ID: "p", Date: "2026-01-02", Amount: decimal.NewFromInt(-100)})

	cases := []struct {
		name    string
		amounts []string
	}{
		{name: "wrong sum", amounts: []string{"-60", "-30"}},
		{name: "wrong sign", amounts: []string{"-110", "10"}},
		{name: "single part", amounts: []string{"-100"}},
	}
	for _, tc := range cases {
		req := review.SplitRequest{}
		for _, amount := range tc.amounts {
			req.Amounts = append(req.Amounts, decimal.RequireFromString(amount))
		}
		if _, err := service.Split(ctx, userID, "p", req); !errors.Is(err, ErrInvalidSplit) {
			t.Fatalf("%s: expected ErrInvalidSplit, got %v", tc.name, err)
		}
	}

	children, err := service.Split(ctx, userID, "p", review.SplitRequest{Amounts: []decimal.Decimal{decimal.NewFromInt(-70), decimal.NewFromInt(-30)}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(children) != 2 || !children[1].Amount.Equal(decimal.NewFromInt(-30)) {
		t.Fatalf("unexpected parts %+v", children)
	}
}

// TestIsSplitWorthy проверяет признак операции, которую стоит разбить.
func TestIsSplitWorthy(t *testing.T) {
	cases := []struct {
		tx   models.Transaction
		want bool
	}{
		{tx: models.Transaction{Description: "AMAZON MKTPLACE", Amount: decimal.NewFromInt(-150)}, want: true},
		{tx: models.Transaction{Description: "AMAZON MKTPLACE", Amount: decimal.NewFromInt(-20)}, want: false},
		{tx: models.Transaction{Description: "RENT", Amount: decimal.NewFromInt(-1500)}, want: false},
		{tx: models.Transaction{Description: "COSTCO", Amount: decimal.NewFromInt(-300), OriginalData: &models.OriginalData{SplitFrom: "x"}}, want: false},
	}
	for _, tc := range cases {
		if got := IsSplitWorthy(tc.tx); got != tc.want {
			t.Fatalf("%s %s: expected %v, got %v", tc.tx.Description, tc.tx.Amount, tc.want, got)
		}
	}
}

// TestReviewUsesUserCategories проверяет, что страница проверки получает категории пользователя.
func TestReviewUsesUserCategories(t *testing.T) {
	service, store, _ := newTestService(t, nil)
	ctx := context.Background()
	userID := uuid.New()
	seedTransactions(t, store, userID, models.Transaction{ID: "a", Date: "2026-01-01", Amount: decimal.NewFromInt(-150), Description: "AMAZON"})

	result, err := service.Review(ctx, userID, review.Options{}, theme.Dark)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Categories) != len(defaultCategories) {
		t.Fatalf("expected default categories, got %d", len(result.Categories))
	}
	if !result.Items[0].SplitWorthy || result.Palette.Mode != "dark" {
		t.Fatalf("expected split-worthy item on dark palette, got %+v", result.Items[0])
	}
}

// TestWriteCSV проверяет выгрузку в CSV.
func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	category := models.Category{ID: "dining", Name: "Dining Out", Type: models.CategoryTypeExpense}
	err := WriteCSV(&buf, []models.Transaction{{
		ID: "a", Date: "2026-01-01", Description: "Cafe, downtown", Amount: decimal.RequireFromString("-4.5"),
		Category: &category, Confidence: 0.85, OriginalData: &models.OriginalData{Source: models.SourceCSV},
	}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("expected valid csv, got %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	row := records[1]
	if row[2] != "Cafe, downtown" || row[3] != "-4.50" || row[4] != "Dining Out" || row[6] != "0.85" || row[8] != "csv" {
		t.Fatalf("unexpected row %v", row)
	}
}
