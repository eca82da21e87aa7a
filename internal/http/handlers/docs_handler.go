package handlers

import (
	"github.com/gin-gonic/gin"
)

// GET /api/bookings/:pnr/e-ticket (inline PDF)
func GetETicketPDF(c *gin.Context) {
	who, ok := principal(c)
	if !ok {
		return
	}
	pdf, filename, err := docsService(c).GenerateETicket(c.Request.Context(), who, c.Param("pnr"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendPDF(c, pdf, filename)
}

// GET /api/bookings/:pnr/receipt (inline PDF)
func GetReceiptPDF(c *gin.Context) {
	who, ok := principal(c)
	if !ok {
		return
	}
	pdf, filename, err := docsService(c).GenerateReceipt(c.Request.Context(), who, c.Param("pnr"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	sendPDF(c, pdf, filename)
}
