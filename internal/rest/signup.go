package rest

import (
	"campusEvents/domain"
	"campusEvents/pkg/logger"
	"context"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type SignupService interface {
	SignUp(ctx context.Context, userID uint, eventID uint64) (domain.Signup, error)
	Cancel(ctx context.Context, userID uint, eventID uint64) error
	ListByUser(ctx context.Context, userID uint) ([]domain.Signup, error)
}

type SignupHandler struct {
	signupService SignupService
	timeout       time.Duration
}

func NewSignupHandler(signupService SignupService) *SignupHandler {
	return &SignupHandler{
		signupService: signupService,
		timeout:       10 * time.Second,
	}
}

func (h *SignupHandler) SignUp(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}
	eventID, err := eventIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	signup, err := h.signupService.SignUp(ctx, userID, eventID)
	if err != nil {
		logger.Error("Failed to sign up", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(signup))
}

func (h *SignupHandler) Cancel(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}
	eventID, err := eventIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.signupService.Cancel(ctx, userID, eventID); err != nil {
		logger.Error("Failed to cancel signup", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("signup cancelled"))
}

func (h *SignupHandler) ListMine(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	signups, err := h.signupService.ListByUser(ctx, userID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(signups))
}
