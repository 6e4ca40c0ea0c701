package rest

import (
	"campusEvents/business/user"
	"campusEvents/domain"
	"campusEvents/pkg/logger"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type UserService interface {
	Register(ctx context.Context, user *domain.User) (domain.User, error)
	Login(ctx context.Context, email, password, ipAddress, userAgent string) (string, domain.User, error)
	ValidateTokenFromRedis(ctx context.Context, token string) (string, error)
	RefreshToken(ctx context.Context, oldToken, ipAddress, userAgent string) (string, domain.User, error)
	Logout(ctx context.Context, userID uint, token string) error
	VerifyEmail(ctx context.Context, verificationCodeEncrypt string) error
	GetUserByID(ctx context.Context, id uint) (domain.User, error)
	GetAllUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, id uint, input user.UpdateInput) (domain.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

type UserHandler struct {
	userService UserService
	validator   *validator.Validate
	timeout     time.Duration
}

func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
		timeout:     10 * time.Second,
	}
}

type UserRegisterRequest struct {
	FullName  string   `json:"full_name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=6"`
	Role      string   `json:"role" validate:"omitempty,oneof=student organiser"`
	Interests []string `json:"interests" validate:"omitempty,max=20,dive,required,max=64"`
}

type UserLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserUpdateRequest struct {
	FullName  string    `json:"full_name,omitempty"`
	Password  string    `json:"password,omitempty" validate:"omitempty,min=6"`
	Interests *[]string `json:"interests,omitempty" validate:"omitempty,max=20,dive,required,max=64"`
}

type RefreshTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

func (h *UserHandler) Register(c echo.Context) error {
	var reqUser UserRegisterRequest

	if err := c.Bind(&reqUser); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&reqUser); err != nil {
		logger.Error("Failed to validation user register", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	newUser, err := h.userService.Register(ctx, &domain.User{
		FullName:  reqUser.FullName,
		Email:     reqUser.Email,
		Password:  reqUser.Password,
		Role:      reqUser.Role,
		Interests: reqUser.Interests,
	})
	if err != nil {
		logger.Error("Failed to register user", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Registration successful. Please check your email to verify your account.",
		"user":    newUser,
	})
}

func (h *UserHandler) Login(c echo.Context) error {
	var reqUser UserLoginRequest

	if err := c.Bind(&reqUser); err != nil {
		logger.Error("Failed to bind request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&reqUser); err != nil {
		logger.Error("Failed to validate user login", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	token, loggedIn, err := h.userService.Login(ctx, reqUser.Email, reqUser.Password, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		logger.Error("Failed to login with user", err)
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"user":    loggedIn,
	})
}

// Logout handles user logout by invalidating token
func (h *UserHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	userID, ok := currentUser(c)
	if !ok {
		logger.Error("Failed to get user_id from context")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	token, ok := c.Get("token").(string)
	if !ok {
		logger.Error("Failed to get token from context")
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	if err := h.userService.Logout(ctx, userID, token); err != nil {
		logger.Error("Failed to logout user", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Logout successful",
	})
}

// RefreshToken used for refresh user token
func (h *UserHandler) RefreshToken(c echo.Context) error {
	var req RefreshTokenRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate refresh token request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	newToken, refreshed, err := h.userService.RefreshToken(ctx, req.Token, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		logger.Error("Failed to refresh token", err)
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Token refreshed successfully",
		"token":   newToken,
		"user":    refreshed,
	})
}

func (h *UserHandler) VerifyEmail(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.userService.VerifyEmail(ctx, c.Param("code")); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("Successfully verified email"))
}

// Me returns the authenticated user's profile.
func (h *UserHandler) Me(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	me, err := h.userService.GetUserByID(ctx, userID)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(me))
}

// UpdateMe changes name, password or interests of the authenticated user.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "unauthorized"})
	}

	var reqUpdate UserUpdateRequest
	if err := c.Bind(&reqUpdate); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&reqUpdate); err != nil {
		logger.Error("Failed to validate user update", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	updatedUser, err := h.userService.UpdateUser(ctx, userID, user.UpdateInput{
		FullName:  reqUpdate.FullName,
		Password:  reqUpdate.Password,
		Interests: reqUpdate.Interests,
	})
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(updatedUser))
}

// GetAllUsers handles getting all users
func (h *UserHandler) GetAllUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	users, err := h.userService.GetAllUsers(ctx)
	if err != nil {
		logger.Error("Failed to get all users", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(users))
}

// DeleteUser handles deleting a user
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		logger.Error("Invalid user ID", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid user ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.userService.DeleteUser(ctx, uint(id)); err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "User deleted successfully",
	})
}
