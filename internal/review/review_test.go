package review

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/theme"
)

var (
	incomeCategory  = &models.Category{ID: "salary", Name: "Salary", Type: models.CategoryTypeIncome, Color: "bg-green-500"}
	expenseCategory = &models.Category{ID: "groceries", Name: "Groceries", Type: models.CategoryTypeExpense, Color: "bg-red-500"}
)

func tx(id string, amount int64, confidence float64) models.Transaction {
	return models.Transaction{
		ID:          id,
		Date:        "2026-03-01",
		Amount:      decimal.NewFromInt(amount),
		Description: id,
		Confidence:  confidence,
	}
}

func ids(transactions []models.Transaction) []string {
	out := make([]string, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, t.ID)
	}
	return out
}

// TestFilterLowConfidence проверяет фильтр low-confidence с порогом 0.7.
func TestFilterLowConfidence(t *testing.T) {
	input := []models.Transaction{tx("a", -1, 0.3), tx("b", -1, 0.6), tx("c", -1, 0.9)}

	got := ids(Filter(input, FilterLowConfidence))
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestSortByAmount проверяет сортировку по модулю суммы по убыванию.
func TestSortByAmount(t *testing.T) {
	input := []models.Transaction{tx("neg50", -50, 1), tx("pos200", 200, 1), tx("neg10", -10, 1)}

	got := ids(Sort(input, SortAmount))
	want := []string{"pos200", "neg50", "neg10"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if ids(input)[0] != "neg50" {
		t.Fatalf("expected input to stay untouched")
	}
}

// TestSortVariants проверяет сортировку по уверенности, дате и неизвестному ключу.
func TestSortVariants(t *testing.T) {
	early := tx("early", -1, 0.9)
	early.Date = "2026-01-05"
	late := tx("late", -1, 0.2)
	late.Date = "03/15/2026"
	mid := tx("mid", -1, 0.5)
	mid.Date = "2026-02-10"
	input := []models.Transaction{early, late, mid}

	cases := []struct {
		key  string
		want []string
	}{
		{key: SortConfidence, want: []string{"late", "mid", "early"}},
		{key: SortDate, want: []string{"late", "mid", "early"}},
		{key: "merchant", want: []string{"early", "late", "mid"}},
	}

	for _, tc := range cases {
		if got := ids(Sort(input, tc.key)); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("sort %s: expected %v, got %v", tc.key, tc.want, got)
		}
	}
}

// TestFilterVariants проверяет фильтры unconfirmed и по типу категории.
func TestFilterVariants(t *testing.T) {
	confirmed := tx("confirmed", 100, 0.9)
	confirmed.Confirmed = true
	confirmed.Category = incomeCategory
	groceries := tx("groceries", -40, 0.8)
	groceries.Category = expenseCategory
	uncategorized := tx("uncategorized", -5, 0.1)
	input := []models.Transaction{confirmed, groceries, uncategorized}

	cases := []struct {
		filter string
		want   []string
	}{
		{filter: FilterAll, want: []string{"confirmed", "groceries", "uncategorized"}},
		{filter: FilterUnconfirmed, want: []string{"groceries", "uncategorized"}},
		{filter: "expense", want: []string{"groceries"}},
		{filter: "travel", want: []string{}},
	}

	for _, tc := range cases {
		if got := ids(Filter(input, tc.filter)); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("filter %s: expected %v, got %v", tc.filter, tc.want, got)
		}
	}
}

// TestStatsUseFullList проверяет, что статистика не зависит от фильтра.
func TestStatsUseFullList(t *testing.T) {
	salary := tx("salary", 3000, 0.95)
	salary.Category = incomeCategory
	food := tx("food", -120, 0.4)
	food.Category = expenseCategory
	mystery := tx("mystery", -30, 0.65)
	input := []models.Transaction{salary, food, mystery}

	result := Build(input, nil, Options{FilterBy: "income"}, nil, theme.Light)

	if len(result.Items) != 1 {
		t.Fatalf("expected 1 filtered item, got %d", len(result.Items))
	}
	if result.Stats.Total != 3 || result.Stats.LowConfidence != 2 {
		t.Fatalf("unexpected stats %+v", result.Stats)
	}
	if !result.Stats.Totals["expense"].Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected expense total 120, got %s", result.Stats.Totals["expense"])
	}
	if !result.Stats.Totals[UnknownType].Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected unknown total 30, got %s", result.Stats.Totals[UnknownType])
	}
	if result.Summary != "Showing 1 of 3 transactions (filtered by income)" {
		t.Fatalf("unexpected summary %q", result.Summary)
	}
	if result.ConfirmLabel != "Confirm All (3)" {
		t.Fatalf("unexpected confirm label %q", result.ConfirmLabel)
	}
}

// TestBandsAndBorders проверяет пороги полос уверенности.
func TestBandsAndBorders(t *testing.T) {
	cases := []struct {
		confidence float64
		band       Band
		border     string
		label      string
	}{
		{confidence: 0.95, band: BandHigh, border: "high", label: "High (95%)"},
		{confidence: 0.8, band: BandHigh, border: "high", label: "High (80%)"},
		{confidence: 0.65, band: BandMedium, border: "medium", label: "Medium (65%)"},
		{confidence: 0.5, band: BandMedium, border: "medium", label: "Medium (50%)"},
		{confidence: 0.2, band: BandLow, border: "low", label: "Low (20%)"},
	}

	for _, tc := range cases {
		item := tx("x", -1, tc.confidence)
		if got := BandOf(tc.confidence); got != tc.band {
			t.Fatalf("confidence %.2f: expected band %s, got %s", tc.confidence, tc.band, got)
		}
		if got := Border(item); got != tc.border {
			t.Fatalf("confidence %.2f: expected border %s, got %s", tc.confidence, tc.border, got)
		}
		if got := ConfidenceLabel(tc.confidence); got != tc.label {
			t.Fatalf("confidence %.2f: expected label %s, got %s", tc.confidence, tc.label, got)
		}
	}

	confirmed := tx("c", -1, 0.1)
	confirmed.Confirmed = true
	if Border(confirmed) != "confirmed" {
		t.Fatalf("expected confirmed border")
	}
}

// TestItemDecorations проверяет метки разбиения, ручного ввода и суммы.
func TestItemDecorations(t *testing.T) {
	part := tx("part", -25, 0.9)
	part.OriginalData = &models.OriginalData{Source: models.SourceSplit, SplitFrom: "parent", SplitIndex: 2, SplitTotal: 3}
	manual := tx("manual", 200, 1)
	manual.OriginalData = &models.OriginalData{Source: models.SourceManual}

	worthy := func(t models.Transaction) bool { return t.ID == "manual" }
	result := Build([]models.Transaction{part, manual}, nil, Options{SortBy: "none", FilterBy: FilterLowConfidence}, worthy, theme.Dark)

	if len(result.Items) != 0 || result.EmptyMessage == "" || result.Summary != "" {
		t.Fatalf("expected empty filtered result, got %+v", result)
	}

	result = Build([]models.Transaction{part, manual}, nil, Options{SortBy: "none"}, worthy, theme.Dark)
	first, second := result.Items[0], result.Items[1]

	if first.SplitBadge != "Split 2/3" || first.SplitBadgeClass != theme.Dark.BadgeSplit {
		t.Fatalf("unexpected split badge %+v", first)
	}
	if first.AmountDisplay != "$25.00" || first.AmountClass != theme.Dark.Outflow {
		t.Fatalf("unexpected outflow display %+v", first)
	}
	if !second.Manual || second.AmountDisplay != "+$200.00" || !second.SplitWorthy {
		t.Fatalf("unexpected manual item %+v", second)
	}
	if second.CategoryName != "No category" || second.DateDisplay != "Mar 1, 2026" {
		t.Fatalf("unexpected defaults %+v", second)
	}
	if result.Summary != "Showing 2 of 2 transactions" {
		t.Fatalf("unexpected summary %q", result.Summary)
	}
}

// TestSummaryLowConfidence проверяет подпись фильтра с дефисом.
func TestSummaryLowConfidence(t *testing.T) {
	if got := Summary(2, 3, FilterLowConfidence); got != "Showing 2 of 3 transactions (filtered by low confidence)" {
		t.Fatalf("unexpected summary %q", got)
	}
}
