package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/MShkut/personal-finance-tracker/internal/auth"
	"github.com/MShkut/personal-finance-tracker/internal/review"
	"github.com/MShkut/personal-finance-tracker/internal/theme"
	"github.com/MShkut/personal-finance-tracker/internal/transactions"
)

const maxImportSize = 5 << 20

type TransactionHandler struct {
	Service *transactions.Service
	Theme   *theme.Service
	Logger  *slog.Logger
}

// NewTransactionHandler создает обработчик импорта и проверки транзакций.
func NewTransactionHandler(service *transactions.Service, themes *theme.Service, logger *slog.Logger) *TransactionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransactionHandler{Service: service, Theme: themes, Logger: logger}
}

type ChangeCategoryRequest struct {
	CategoryID string `json:"categoryId" validate:"required"`
}

type SplitRequest struct {
	Amounts []decimal.Decimal `json:"amounts" validate:"omitempty,min=2,max=12"`
	Parts   int               `json:"parts" validate:"omitempty,min=2,max=12"`
}

type ConfirmResponse struct {
	Confirmed int `json:"confirmed"`
}

// Categories возвращает категории пользователя.
func (h *TransactionHandler) Categories(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	categories, err := h.Service.Categories(c.Request().Context(), userID)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"categories": categories})
}

// Review возвращает страницу проверки с сортировкой ?sort= и фильтром ?filter=.
func (h *TransactionHandler) Review(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	ctx := c.Request().Context()
	_, palette, err := h.Theme.Get(ctx, userID)
	if err != nil {
		h.Logger.WarnContext(ctx, "theme unavailable, using light palette", slog.String("error", err.Error()))
		palette = theme.Light
	}

	result, err := h.Service.Review(ctx, userID, review.Options{
		SortBy:   strings.TrimSpace(c.QueryParam("sort")),
		FilterBy: strings.TrimSpace(c.QueryParam("filter")),
	}, palette)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Import принимает выписку телом text/csv или файлом "file" в multipart-форме.
func (h *TransactionHandler) Import(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	body, closeBody, err := importBody(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	defer closeBody()

	result, err := h.Service.Import(c.Request().Context(), userID, io.LimitReader(body, maxImportSize))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// Create добавляет операцию, введенную вручную.
func (h *TransactionHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req transactions.ManualEntry
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	tx, err := h.Service.AddManual(c.Request().Context(), userID, req)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, tx)
}

// ChangeCategory назначает категорию операции :id.
func (h *TransactionHandler) ChangeCategory(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ChangeCategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	tx, err := h.Service.ChangeCategory(c.Request().Context(), userID, c.Param("id"), req.CategoryID)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, tx)
}

// ConfirmAll подтверждает все операции пользователя.
func (h *TransactionHandler) ConfirmAll(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	confirmed, err := h.Service.ConfirmAll(c.Request().Context(), userID)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(http.StatusOK, ConfirmResponse{Confirmed: confirmed})
}

// Split разбивает операцию :id на части.
func (h *TransactionHandler) Split(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req SplitRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	parts, err := h.Service.Split(c.Request().Context(), userID, c.Param("id"), review.SplitRequest{
		Amounts: req.Amounts,
		Parts:   req.Parts,
	})
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"transactions": parts})
}

func (h *TransactionHandler) serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, transactions.ErrNotFound):
		return notFound(c, "transaction not found")
	case errors.Is(err, transactions.ErrImport),
		errors.Is(err, transactions.ErrInvalidSplit),
		errors.Is(err, transactions.ErrInvalidEntry),
		errors.Is(err, transactions.ErrUnknownCategory):
		return badRequest(c, err.Error())
	default:
		h.Logger.ErrorContext(c.Request().Context(), "transactions request failed", slog.String("error", err.Error()))
		return serverError(c)
	}
}

func importBody(c echo.Context) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
	if mediaType != echo.MIMEMultipartForm {
		return c.Request().Body, func() {}, nil
	}

	header, err := c.FormFile("file")
	if err != nil {
		return nil, nil, errors.New("missing file")
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, errors.New("unreadable file")
	}
	return file, func() { _ = file.Close() }, nil
}
