package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"railway/internal/services"
)

// Booking handlers serve both passengers and employees; the owner policy follows
// the authenticated principal.

// POST /api/bookings, POST /api/employees/bookings
func BookTicket(c *gin.Context) {
	who, ok := principal(c)
	if !ok {
		return
	}
	var req services.BookingInput
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := bookingService(c).Book(c.Request.Context(), who, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// DELETE /api/bookings/:pnr, POST /api/bookings/:pnr/cancel
func CancelTicket(c *gin.Context) {
	who, ok := principal(c)
	if !ok {
		return
	}
	res, err := bookingService(c).Cancel(c.Request.Context(), who, c.Param("pnr"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/bookings/:pnr
func GetPNRStatus(c *gin.Context) {
	who, ok := principal(c)
	if !ok {
		return
	}
	st, err := ticketService(c).Status(c.Request.Context(), who, c.Param("pnr"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GET /api/bookings/history
func GetBookingHistory(c *gin.Context) {
	who, ok := principal(c)
	if !ok {
		return
	}
	entries, err := ticketService(c).BookingHistory(c.Request.Context(), who, limitParam(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries, "count": len(entries)})
}

// GET /api/bookings/transactions
func GetTransactions(c *gin.Context) {
	who, ok := principal(c)
	if !ok {
		return
	}
	txns, err := ticketService(c).Transactions(c.Request.Context(), who, limitParam(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns, "count": len(txns)})
}
