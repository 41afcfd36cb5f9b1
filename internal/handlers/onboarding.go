package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/MShkut/personal-finance-tracker/internal/auth"
	"github.com/MShkut/personal-finance-tracker/internal/forms"
	"github.com/MShkut/personal-finance-tracker/internal/models"
	"github.com/MShkut/personal-finance-tracker/internal/notifications"
	"github.com/MShkut/personal-finance-tracker/internal/onboarding"
	"github.com/MShkut/personal-finance-tracker/internal/session"
	"github.com/MShkut/personal-finance-tracker/internal/views"
)

const maxFormBody = 1 << 20

type OnboardingHandler struct {
	Sessions  *session.Registry
	Publisher notifications.Publisher
	Logger    *slog.Logger
}

// NewOnboardingHandler создает обработчик мастера онбординга.
func NewOnboardingHandler(sessions *session.Registry, publisher notifications.Publisher, logger *slog.Logger) *OnboardingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnboardingHandler{Sessions: sessions, Publisher: publisher, Logger: logger}
}

type WelcomeRequest struct {
	Household models.Household `json:"household"`
	Period    models.Period    `json:"period"`
}

type ListItemRequest struct {
	Name      string          `json:"name" validate:"required,max=100"`
	Amount    forms.Amount    `json:"amount" validate:"non_negative_amount"`
	Frequency forms.Frequency `json:"frequency" validate:"omitempty,frequency"`
	Category  string          `json:"category" validate:"omitempty,oneof=essential discretionary"`
}

type OnboardingResponse struct {
	Step     onboarding.Step           `json:"step"`
	StepName string                    `json:"stepName"`
	Complete bool                      `json:"complete"`
	View     onboarding.View           `json:"view"`
	FormData models.OnboardingFormData `json:"formData"`
}

type CompletedResponse struct {
	App      views.State               `json:"app"`
	FormData models.OnboardingFormData `json:"formData"`
}

type ListResponse struct {
	List  onboarding.ListName `json:"list"`
	Items []models.ListItem   `json:"items"`
	View  onboarding.View     `json:"view"`
}

type BackResponse struct {
	Moved bool               `json:"moved"`
	State OnboardingResponse `json:"state"`
}

// Get возвращает текущий шаг, его представление и накопленные данные.
func (h *OnboardingHandler) Get(c echo.Context) error {
	s, _, ok, err := h.session(c)
	if !ok {
		return err
	}

	return c.JSON(http.StatusOK, onboardingResponse(s.Flow()))
}

// Submit завершает шаг :step. Шаг должен совпадать с текущим шагом мастера.
func (h *OnboardingHandler) Submit(c echo.Context) error {
	step, valid := onboarding.ParseStep(c.Param("step"))
	if !valid {
		return badRequest(c, "unknown step")
	}

	s, userID, ok, err := h.session(c)
	if !ok {
		return err
	}
	if s.Router.State().View != views.ViewOnboarding {
		return conflict(c, "onboarding is not the current view")
	}

	ctx := c.Request().Context()
	flow := s.Flow()

	switch step {
	case onboarding.StepWelcome:
		var req WelcomeRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "invalid payload")
		}
		err = flow.SubmitWelcome(ctx, req.Household, req.Period)
	case onboarding.StepIncome:
		err = flow.SubmitIncome(ctx)
	case onboarding.StepSavings:
		err = flow.SubmitSavings(ctx)
	case onboarding.StepExpenses:
		err = flow.SubmitExpenses(ctx)
	case onboarding.StepNetWorth:
		var completed models.OnboardingFormData
		completed, err = flow.SubmitNetWorth(ctx)
		if err == nil {
			state := s.Router.Complete(completed)
			notifications.Notify(ctx, h.Publisher, h.Logger, userID, notifications.EventOnboardingCompleted, map[string]interface{}{
				"completedAt": completed.CompletedAt,
			})
			return c.JSON(http.StatusOK, CompletedResponse{App: state, FormData: completed})
		}
	}
	if err != nil {
		return h.flowError(c, err)
	}

	notifications.Notify(ctx, h.Publisher, h.Logger, userID, notifications.EventOnboardingStep, map[string]interface{}{
		"completed": step.String(),
		"step":      flow.CurrentStep().String(),
	})

	return c.JSON(http.StatusOK, onboardingResponse(flow))
}

// Back возвращает мастер на шаг назад. На первом шаге moved=false, и клиент
// сам решает, куда уйти.
func (h *OnboardingHandler) Back(c echo.Context) error {
	s, _, ok, err := h.session(c)
	if !ok {
		return err
	}

	flow := s.Flow()
	moved := flow.PrevStep()
	return c.JSON(http.StatusOK, BackResponse{Moved: moved, State: onboardingResponse(flow)})
}

// UpdateForm кладет тело запроса в данные формы под ключом :key.
func (h *OnboardingHandler) UpdateForm(c echo.Context) error {
	s, _, ok, err := h.session(c)
	if !ok {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxFormBody))
	if err != nil || !json.Valid(body) {
		return badRequest(c, "invalid payload")
	}

	flow := s.Flow()
	if err := flow.UpdateFormData(models.FormKey(c.Param("key")), json.RawMessage(body)); err != nil {
		return h.flowError(c, err)
	}

	return c.JSON(http.StatusOK, onboardingResponse(flow))
}

// ListItems возвращает черновик списка :list.
func (h *OnboardingHandler) ListItems(c echo.Context) error {
	s, name, ok, err := h.listSession(c)
	if !ok {
		return err
	}

	flow := s.Flow()
	items, err := flow.ListItems(name)
	if err != nil {
		return h.flowError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{List: name, Items: items, View: flow.View()})
}

// AddListItem добавляет строку в черновик списка.
func (h *OnboardingHandler) AddListItem(c echo.Context) error {
	s, name, ok, err := h.listSession(c)
	if !ok {
		return err
	}

	item, ok, err := bindListItem(c)
	if !ok {
		return err
	}

	flow := s.Flow()
	created, err := flow.AddListItem(name, item)
	if err != nil {
		return h.flowError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateListItem заменяет строку черновика по :itemId.
func (h *OnboardingHandler) UpdateListItem(c echo.Context) error {
	s, name, ok, err := h.listSession(c)
	if !ok {
		return err
	}

	item, ok, err := bindListItem(c)
	if !ok {
		return err
	}

	updated, err := s.Flow().UpdateListItem(name, c.Param("itemId"), item)
	if err != nil {
		return h.flowError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteListItem удаляет строку черновика по :itemId.
func (h *OnboardingHandler) DeleteListItem(c echo.Context) error {
	s, name, ok, err := h.listSession(c)
	if !ok {
		return err
	}

	if err := s.Flow().DeleteListItem(name, c.Param("itemId")); err != nil {
		return h.flowError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// session открывает сессию пользователя. ok=false означает, что ответ уже записан.
func (h *OnboardingHandler) session(c echo.Context) (*session.Session, uuid.UUID, bool, error) {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return nil, uuid.Nil, false, unauthorized(c)
	}

	s, err := h.Sessions.Get(c.Request().Context(), userID)
	if err != nil {
		return nil, uuid.Nil, false, sessionError(c, h.Logger, userID, err)
	}
	return s, userID, true, nil
}

func (h *OnboardingHandler) listSession(c echo.Context) (*session.Session, onboarding.ListName, bool, error) {
	name, valid := onboarding.ParseListName(c.Param("list"))
	if !valid {
		return nil, "", false, notFound(c, "unknown list")
	}

	s, _, ok, err := h.session(c)
	if !ok {
		return nil, "", false, err
	}
	return s, name, true, nil
}

func bindListItem(c echo.Context) (models.ListItem, bool, error) {
	var req ListItemRequest
	if err := c.Bind(&req); err != nil {
		return models.ListItem{}, false, badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return models.ListItem{}, false, badRequest(c, "validation failed")
	}

	return models.ListItem{
		Name:      req.Name,
		Amount:    req.Amount,
		Frequency: req.Frequency,
		Category:  req.Category,
	}, true, nil
}

func (h *OnboardingHandler) flowError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, onboarding.ErrStepMismatch), errors.Is(err, onboarding.ErrComplete):
		return conflict(c, err.Error())
	case errors.Is(err, onboarding.ErrCannotContinue):
		return unprocessable(c, err.Error())
	case errors.Is(err, onboarding.ErrUnknownKey), errors.Is(err, onboarding.ErrInvalidValue):
		return badRequest(c, err.Error())
	case errors.Is(err, onboarding.ErrUnknownList), errors.Is(err, forms.ErrItemNotFound):
		return notFound(c, err.Error())
	default:
		h.Logger.ErrorContext(c.Request().Context(), "onboarding step failed", slog.String("error", err.Error()))
		return serverError(c)
	}
}

func onboardingResponse(flow *onboarding.Flow) OnboardingResponse {
	step := flow.CurrentStep()
	return OnboardingResponse{
		Step:     step,
		StepName: step.String(),
		Complete: flow.IsComplete(),
		View:     flow.View(),
		FormData: flow.FormData(),
	}
}
