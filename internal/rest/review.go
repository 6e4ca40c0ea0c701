package rest

import (
	"campusEvents/domain"
	"campusEvents/pkg/logger"
	"context"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ReviewService interface {
	SubmitReview(ctx context.Context, userID uint, eventID uint64, rating int, comment string) (domain.Review, error)
	ListByEvent(ctx context.Context, eventID uint64) ([]domain.Review, error)
	ListByUser(ctx context.Context, userID uint) ([]domain.Review, error)
}

type ReviewHandler struct {
	reviewService ReviewService
	validator     *validator.Validate
	timeout       time.Duration
}

func NewReviewHandler(reviewService ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
		timeout:       10 * time.Second,
	}
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func (h *ReviewHandler) Submit(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}
	eventID, err := eventIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var req ReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	review, err := h.reviewService.SubmitReview(ctx, userID, eventID, req.Rating, req.Comment)
	if err != nil {
		logger.Error("Failed to submit review", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(review))
}

func (h *ReviewHandler) ListByEvent(c echo.Context) error {
	eventID, err := eventIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	reviews, err := h.reviewService.ListByEvent(ctx, eventID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(reviews))
}

func (h *ReviewHandler) ListMine(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	reviews, err := h.reviewService.ListByUser(ctx, userID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(reviews))
}
