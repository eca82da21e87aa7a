package api

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	intconfig "railway/internal/config"
	h "railway/internal/http/handlers"
	"railway/internal/http/middleware"
)

// NewRouter builds the gin engine and installs app as the handlers' collaborators.
func NewRouter(env intconfig.Env, app h.App) *gin.Engine {
	h.Configure(app)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		logrus.WithError(err).Warn("failed to set trusted proxies")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":      "route not found",
			"code":       "not_found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": middleware.GetRequestID(c),
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireUser := middleware.RequireUser(app.Tokens)
	requireEmployee := middleware.RequireEmployee(app.Tokens)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)

		// Trains
		trains := api.Group("/trains")
		trains.GET("/search", h.SearchTrains)
		trains.GET("/availability", h.GetAvailability)
		trains.GET("/:train_no/route", h.GetTrainRoute)

		// Passenger bookings
		bookings := api.Group("/bookings", requireUser)
		mountBookings(bookings)
		bookings.GET("/transactions", h.GetTransactions)
		bookings.GET("/:pnr/receipt", h.GetReceiptPDF)

		// Passenger account
		users := api.Group("/users", requireUser)
		users.GET("/profile", h.GetProfile)
		users.PUT("/profile", h.UpdateProfile)
		users.PUT("/change-password", h.ChangePassword)
		users.GET("/stats", h.GetUserStats)
		users.GET("/bookings", h.GetBookingHistory)
		users.GET("/transactions", h.GetTransactions)

		payments := api.Group("/payments", requireUser)
		payments.GET("/history", h.GetTransactions)
		payments.GET("/:transaction_id", h.GetPayment)

		// Employees
		employees := api.Group("/employees")
		employees.POST("/auth/login", h.EmployeeLogin)

		staff := employees.Group("", requireEmployee)
		staff.GET("/quota", h.GetEmployeeQuota)
		staff.GET("/dependents", h.GetDependents)
		staff.GET("/my-profile", h.GetEmployeeProfile)
		staff.GET("/my-bookings", h.GetBookingHistory)
		mountBookings(staff.Group("/bookings"))
	}

	h.SetRouter(r)
	return r
}

func mountBookings(g *gin.RouterGroup) {
	g.POST("", h.BookTicket)
	g.GET("/history", h.GetBookingHistory)
	g.GET("/:pnr", h.GetPNRStatus)
	g.DELETE("/:pnr", h.CancelTicket)
	g.POST("/:pnr/cancel", h.CancelTicket)
	g.GET("/:pnr/e-ticket", h.GetETicketPDF)
}
