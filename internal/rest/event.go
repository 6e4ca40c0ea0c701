package rest

import (
	"campusEvents/business/event"
	"campusEvents/domain"
	"campusEvents/pkg/logger"
	"context"
	"net/http"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type EventService interface {
	CreateEvent(ctx context.Context, actor event.Actor, e *domain.Event) (*domain.Event, error)
	UpdateEvent(ctx context.Context, actor event.Actor, e *domain.Event) (*domain.Event, error)
	DeleteEvent(ctx context.Context, actor event.Actor, id uint64) error
	GetEvent(ctx context.Context, id uint64, viewerID uint) (*domain.Event, error)
	ListEvents(ctx context.Context, query string, viewerID uint) ([]domain.Event, error)
}

type SignupChecker interface {
	IsSignedUp(ctx context.Context, userID uint, eventID uint64) (bool, error)
}

type EventHandler struct {
	eventService  EventService
	signupChecker SignupChecker
	validator     *validator.Validate
	timeout       time.Duration
}

func NewEventHandler(eventService EventService, signupChecker SignupChecker) *EventHandler {
	return &EventHandler{
		eventService:  eventService,
		signupChecker: signupChecker,
		validator:     validator.New(),
		timeout:       10 * time.Second,
	}
}

// EventDetail is an event as seen by one viewer.
type EventDetail struct {
	*domain.Event
	IsSignedUp bool `json:"is_signed_up"`
}

type EventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	Location    string    `json:"location" validate:"max=200"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date"`
	Interests   []string  `json:"interests" validate:"omitempty,max=20,dive,required,max=64"`
	Capacity    *int      `json:"capacity" validate:"omitempty,gte=0"`
	SignupsOpen *bool     `json:"signups_open"`
	OrganiserID uint      `json:"organiser_id"`
}

type EventListQuery struct {
	Q string `query:"q" validate:"max=200"`
}

func (r EventRequest) toDomain() *domain.Event {
	open := true
	if r.SignupsOpen != nil {
		open = *r.SignupsOpen
	}
	return &domain.Event{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		Interests:   r.Interests,
		Capacity:    r.Capacity,
		SignupsOpen: open,
		OrganiserID: r.OrganiserID,
	}
}

func actorFrom(c echo.Context) event.Actor {
	userID, _ := currentUser(c)
	return event.Actor{UserID: userID, Role: currentRole(c)}
}

func (h *EventHandler) ListEvents(c echo.Context) error {
	var q EventListQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	viewerID, _ := currentUser(c)
	events, err := h.eventService.ListEvents(ctx, q.Q, viewerID)
	if err != nil {
		logger.Error("Failed to list events", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(events))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	viewerID, _ := currentUser(c)
	e, err := h.eventService.GetEvent(ctx, id, viewerID)
	if err != nil {
		return errorJSON(c, err)
	}

	detail := EventDetail{Event: e}
	if viewerID != 0 && h.signupChecker != nil {
		detail.IsSignedUp, err = h.signupChecker.IsSignedUp(ctx, viewerID, id)
		if err != nil {
			logger.Error("Failed to check signup", "event_id", id, "user_id", viewerID, "error", err)
			return errorJSON(c, err)
		}
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(detail))
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req EventRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate event request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	created, err := h.eventService.CreateEvent(ctx, actorFrom(c), req.toDomain())
	if err != nil {
		logger.Error("Failed to create event", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(created))
}

func (h *EventHandler) UpdateEvent(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	var req EventRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate event request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	e := req.toDomain()
	e.ID = id
	updated, err := h.eventService.UpdateEvent(ctx, actorFrom(c), e)
	if err != nil {
		logger.Error("Failed to update event", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updated))
}

func (h *EventHandler) DeleteEvent(c echo.Context) error {
	id, err := eventIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.eventService.DeleteEvent(ctx, actorFrom(c), id); err != nil {
		logger.Error("Failed to delete event", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("event deleted"))
}
