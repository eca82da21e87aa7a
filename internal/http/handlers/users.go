package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"railway/internal/services"
)

// GET /api/users/profile
func GetProfile(c *gin.Context) {
	who, ok := principal(c)
	if !ok {
		return
	}
	p, err := profileService(c).Profile(c.Request.Context(), who)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// PUT /api/users/profile
func UpdateProfile(c *gin.Context) {
	who, ok := principal(c)
	if !ok {
		return
	}
	var req services.ProfileInput
	if !BindJSONOrError(c, &req) {
		return
	}
	p, err := profileService(c).UpdateProfile(c.Request.Context(), who, req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated", "profile": p})
}

// GET /api/users/stats
func GetUserStats(c *gin.Context) {
	who, ok := principal(c)
	if !ok {
		return
	}
	st, err := profileService(c).Stats(c.Request.Context(), who)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GET /api/payments/:transaction_id
func GetPayment(c *gin.Context) {
	who, ok := principal(c)
	if !ok {
		return
	}
	p, err := ticketService(c).Payment(c.Request.Context(), who, c.Param("transaction_id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
