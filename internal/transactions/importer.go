package transactions

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MShkut/personal-finance-tracker/internal/review"
)

const dateLayout = "2006-01-02"

var ErrImport = errors.New("invalid import")

var headerAliases = map[string]string{
	"date":               "date",
	"transaction date":   "date",
	"posted date":        "date",
	"posting date":       "date",
	"description":        "description",
	"memo":               "description",
	"payee":              "description",
	"name":               "description",
	"details":            "description",
	"amount":             "amount",
	"transaction amount": "amount",
	"debit":              "debit",
	"withdrawal":         "debit",
	"withdrawals":        "debit",
	"credit":             "credit",
	"deposit":            "credit",
	"deposits":           "credit",
}

// Row описывает разобранную строку выписки. Line это номер строки в файле, заголовок это строка 1.
type Row struct {
	Line        int
	Date        string
	Description string
	Amount      decimal.Decimal
	Raw         map[string]string
}

// ParseCSV читает выписку с колонками date,description,amount или
// date,description,debit,credit. Пустые строки пропускаются.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrImport)
		}
		return nil, fmt.Errorf("%w: header: %v", ErrImport, err)
	}

	columns, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImport, err)
		}
		if blank(record) {
			continue
		}

		line, _ := reader.FieldPos(0)
		row, err := parseRow(line, header, record, columns)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func mapHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int)
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := headerAliases[key]; ok {
			if _, exists := columns[canonical]; !exists {
				columns[canonical] = i
			}
		}
	}

	if _, ok := columns["date"]; !ok {
		return nil, fmt.Errorf("%w: missing date column", ErrImport)
	}
	if _, ok := columns["description"]; !ok {
		return nil, fmt.Errorf("%w: missing description column", ErrImport)
	}

	_, hasAmount := columns["amount"]
	_, hasDebit := columns["debit"]
	_, hasCredit := columns["credit"]
	if !hasAmount && !(hasDebit && hasCredit) {
		return nil, fmt.Errorf("%w: expected amount or debit and credit columns", ErrImport)
	}

	return columns, nil
}

func parseRow(line int, header, record []string, columns map[string]int) (Row, error) {
	field := func(name string) string {
		index, ok := columns[name]
		if !ok || index >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[index])
	}

	row := Row{Line: line, Description: field("description"), Raw: make(map[string]string, len(header))}
	for i, name := range header {
		if i < len(record) {
			row.Raw[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = record[i]
		}
	}

	parsed, ok := review.ParseDate(field("date"))
	if !ok {
		return Row{}, fmt.Errorf("%w: row %d: invalid date %q", ErrImport, line, field("date"))
	}
	row.Date = parsed.Format(dateLayout)

	if row.Description == "" {
		return Row{}, fmt.Errorf("%w: row %d: empty description", ErrImport, line)
	}

	if _, ok := columns["amount"]; ok {
		amount, ok := parseAmount(field("amount"))
		if !ok {
			return Row{}, fmt.Errorf("%w: row %d: invalid amount %q", ErrImport, line, field("amount"))
		}
		row.Amount = amount
		return row, nil
	}

	debit, debitOK := parseAmount(field("debit"))
	credit, creditOK := parseAmount(field("credit"))
	if !debitOK && !creditOK {
		return Row{}, fmt.Errorf("%w: row %d: missing debit and credit", ErrImport, line)
	}
	row.Amount = credit.Abs().Sub(debit.Abs())

	return row, nil
}

// parseAmount понимает "1,234.50", "$-12", "-$12" и бухгалтерские скобки "(12.00)".
func parseAmount(value string) (decimal.Decimal, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
		negative = true
		value = strings.TrimSuffix(strings.TrimPrefix(value, "("), ")")
	}

	replacer := strings.NewReplacer(",", "", "$", "", " ", "")
	value = replacer.Replace(value)

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		amount = amount.Abs().Neg()
	}
	return amount, true
}

func blank(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
