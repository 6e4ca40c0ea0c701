package rest

import (
	"campusEvents/app/echo-server/metrics"
	"campusEvents/business/recommend"
	"campusEvents/domain"
	"campusEvents/pkg/logger"
	"context"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type RecommendationService interface {
	Recommend(ctx context.Context, userID uint, limit int, includeSignedUp bool) (domain.RecommendationResult, error)
}

type (
	RecommendationHandler struct {
		validate *validator.Validate
		service  RecommendationService
		timeout  time.Duration
	}

	RecommendationQuery struct {
		Limit           int  `query:"limit" validate:"omitempty,min=1,max=50"`
		IncludeSignedUp bool `query:"includeSignedUp"`
	}
)

func NewRecommendationHandler(service RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		validate: validator.New(),
		service:  service,
		timeout:  10 * time.Second,
	}
}

// GET /api/v1/recommendations?limit=10&includeSignedUp=false
func (h *RecommendationHandler) Recommend(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.RecommendDuration.Observe(time.Since(start).Seconds())
	}()

	userID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var q RecommendationQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	result, err := h.service.Recommend(ctx, userID, q.Limit, q.IncludeSignedUp)
	if err != nil {
		logger.Error("recommend_failed",
			"trace_id", recommend.TraceIDFromContext(ctx),
			"user_id", userID,
			"error", err,
		)
		metrics.RecommendTotal.WithLabelValues("error").Inc()
		return errorJSON(c, err)
	}

	metrics.RecommendTotal.WithLabelValues(string(result.RecommendationType)).Inc()

	return c.JSON(http.StatusOK, fres.Response.StatusOK(result))
}
