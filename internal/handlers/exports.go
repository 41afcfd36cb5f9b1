package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/MShkut/personal-finance-tracker/internal/auth"
	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/transactions"
)

const timeLayout = time.RFC3339

type TransactionsExport struct {
	ExportedAt   string               `json:"exported_at"`
	Count        int                  `json:"count"`
	Transactions []models.Transaction `json:"transactions"`
}

// ExportJSON выгружает транзакции в JSON-файл.
func (h *TransactionHandler) ExportJSON(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	list, err := h.Service.List(c.Request().Context(), userID)
	if err != nil {
		return h.serviceError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\"transactions.json\"")
	return c.JSON(http.StatusOK, TransactionsExport{
		ExportedAt:   time.Now().UTC().Format(timeLayout),
		Count:        len(list),
		Transactions: list,
	})
}

// ExportCSV выгружает транзакции в CSV-файл.
func (h *TransactionHandler) ExportCSV(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	list, err := h.Service.List(c.Request().Context(), userID)
	if err != nil {
		return h.serviceError(c, err)
	}

	var buf bytes.Buffer
	if err := transactions.WriteCSV(&buf, list); err != nil {
		return serverError(c)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\"transactions.csv\"")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
