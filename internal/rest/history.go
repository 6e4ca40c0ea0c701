package rest

import (
	"campusEvents/domain"
	"context"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HistoryService interface {
	RecordSearch(ctx context.Context, userID uint, query string) error
	RecordView(ctx context.Context, userID uint, eventID uint64) error
	GetHistory(ctx context.Context, userID uint) (domain.History, error)
	ClearHistory(ctx context.Context, userID uint) error
}

type HistoryHandler struct {
	historyService HistoryService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewHistoryHandler(historyService HistoryService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
		validator:      validator.New(),
		timeout:        5 * time.Second,
	}
}

type SearchHistoryRequest struct {
	Query string `json:"query" validate:"required,max=200"`
}

type ViewHistoryRequest struct {
	EventID uint64 `json:"event_id" validate:"required"`
}

func (h *HistoryHandler) Get(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	history, err := h.historyService.GetHistory(ctx, userID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(history))
}

func (h *HistoryHandler) Clear(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.historyService.ClearHistory(ctx, userID); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("history cleared"))
}

func (h *HistoryHandler) RecordSearch(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req SearchHistoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.historyService.RecordSearch(ctx, userID, req.Query); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("search recorded"))
}

func (h *HistoryHandler) RecordView(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var req ViewHistoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.historyService.RecordView(ctx, userID, req.EventID); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("view recorded"))
}
