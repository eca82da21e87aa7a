package handlers

import (
	"database/sql"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"railway/internal/http/middleware"
	"railway/internal/notify"
	"railway/internal/reservation"
	"railway/internal/services"
)

// App carries the long-lived collaborators request-scoped services are built from.
type App struct {
	Engine   *reservation.Engine
	Fares    services.FareSource
	People   services.People
	Trains   services.TrainCatalog
	History  services.HistoryReader
	Payments services.PaymentReader
	Profiles services.ProfileStore
	Accounts services.Accounts
	Tokens   services.TokenService
	Events   notify.Publisher
	Location *time.Location
	DB       *sql.DB
}

var (
	appMu sync.RWMutex
	app   App
)

// Configure installs the collaborators used by every handler.
func Configure(a App) {
	appMu.Lock()
	defer appMu.Unlock()
	app = a
}

func current() App {
	appMu.RLock()
	defer appMu.RUnlock()
	return app
}

func bookingService(c *gin.Context) services.BookingService {
	a := current()
	return services.BookingService{
		Engine:    a.Engine,
		Fares:     a.Fares,
		People:    a.People,
		Events:    a.Events,
		Location:  a.Location,
		RequestID: middleware.GetRequestID(c),
	}
}

func ticketService(c *gin.Context) services.TicketService {
	a := current()
	return services.TicketService{Engine: a.Engine, History: a.History, Payments: a.Payments, RequestID: middleware.GetRequestID(c)}
}

func profileService(c *gin.Context) services.ProfileService {
	a := current()
	var now func() time.Time
	if a.Engine != nil {
		now = a.Engine.Now
	}
	return services.ProfileService{Profiles: a.Profiles, Location: a.Location, Now: now, RequestID: middleware.GetRequestID(c)}
}

func docsService(c *gin.Context) services.DocsService {
	return services.DocsService{
		Tickets:   ticketService(c),
		Location:  current().Location,
		RequestID: middleware.GetRequestID(c),
	}
}

func availabilityService(c *gin.Context) services.AvailabilityService {
	a := current()
	return services.AvailabilityService{Engine: a.Engine, Fares: a.Fares, Trains: a.Trains, RequestID: middleware.GetRequestID(c)}
}

func authService(c *gin.Context) services.AuthService {
	a := current()
	return services.AuthService{Accounts: a.Accounts, Tokens: a.Tokens, RequestID: middleware.GetRequestID(c)}
}

func employeeService(c *gin.Context) services.EmployeeService {
	a := current()
	return services.EmployeeService{Engine: a.Engine, People: a.People, RequestID: middleware.GetRequestID(c)}
}
