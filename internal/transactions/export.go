package transactions

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/MShkut/personal-finance-tracker/internal/models"
)

var exportHeader = []string{"id", "date", "description", "amount", "category", "category_type", "confidence", "confirmed", "source", "split_from"}

// WriteCSV выгружает транзакции в CSV с заголовком.
func WriteCSV(w io.Writer, transactions []models.Transaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}

	for _, tx := range transactions {
		var category, categoryType, source, splitFrom string
		if tx.Category != nil {
			category = tx.Category.Name
			categoryType = string(tx.Category.Type)
		}
		if tx.OriginalData != nil {
			source = string(tx.OriginalData.Source)
			splitFrom = tx.OriginalData.SplitFrom
		}

		record := []string{
			tx.ID,
			tx.Date,
			tx.Description,
			tx.Amount.StringFixed(2),
			category,
			categoryType,
			strconv.FormatFloat(tx.Confidence, 'f', 2, 64),
			strconv.FormatBool(tx.Confirmed),
			source,
			splitFrom,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
