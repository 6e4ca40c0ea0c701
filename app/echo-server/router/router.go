package router

import (
	"campusEvents/domain"
	"campusEvents/internal/middleware"
	"campusEvents/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.GET("/email-verification/:code", handler.VerifyEmail)
	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)
	users.POST("/refresh", handler.RefreshToken)
	users.POST("/logout", handler.Logout, authRequired)

	users.GET("/me", handler.Me, authRequired)
	users.PUT("/me", handler.UpdateMe, authRequired)

	users.GET("", handler.GetAllUsers, authRequired, middleware.AdminOnly())
	users.DELETE("/:id", handler.DeleteUser, authRequired, middleware.AdminOnly())
}

func SetupEventRoutes(api *echo.Group, handler *rest.EventHandler, authRequired, authOptional echo.MiddlewareFunc) {
	events := api.Group("/events")
	manage := middleware.RequireRoles(domain.RoleOrganiser, domain.RoleAdmin)

	events.GET("", handler.ListEvents, authOptional)
	events.GET("/:id", handler.GetEvent, authOptional)
	events.POST("", handler.CreateEvent, authRequired, manage)
	events.PUT("/:id", handler.UpdateEvent, authRequired, manage)
	events.DELETE("/:id", handler.DeleteEvent, authRequired, manage)
}

func SetupSignupRoutes(api *echo.Group, handler *rest.SignupHandler, authRequired echo.MiddlewareFunc) {
	api.POST("/events/:id/signup", handler.SignUp, authRequired)
	api.DELETE("/events/:id/signup", handler.Cancel, authRequired)
	api.GET("/signups", handler.ListMine, authRequired)
}

func SetupReviewRoutes(api *echo.Group, handler *rest.ReviewHandler, authRequired echo.MiddlewareFunc) {
	api.POST("/events/:id/reviews", handler.Submit, authRequired)
	api.GET("/events/:id/reviews", handler.ListByEvent)
	api.GET("/reviews", handler.ListMine, authRequired)
}

func SetupHistoryRoutes(api *echo.Group, handler *rest.HistoryHandler, authRequired echo.MiddlewareFunc) {
	history := api.Group("/history", authRequired)

	history.GET("", handler.Get)
	history.DELETE("", handler.Clear)
	history.POST("/searches", handler.RecordSearch)
	history.POST("/views", handler.RecordView)
}

func SetRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler, authRequired echo.MiddlewareFunc, limiter *middleware.UserRateLimiter) {
	reco := api.Group("/recommendations", authRequired, middleware.RateLimitPerUser(limiter))
	reco.GET("", handler.Recommend)
}
