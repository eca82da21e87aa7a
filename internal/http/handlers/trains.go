package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/trains/search?source=&destination=
func SearchTrains(c *gin.Context) {
	matches, err := availabilityService(c).Search(c.Request.Context(), c.Query("source"), c.Query("destination"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trains": matches, "count": len(matches)})
}

// GET /api/trains/:train_no/route
func GetTrainRoute(c *gin.Context) {
	route, err := availabilityService(c).Route(c.Request.Context(), c.Param("train_no"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// GET /api/trains/availability?train_no=&source=&destination=&journey_date=
func GetAvailability(c *gin.Context) {
	trainNo := c.Query("train_no")
	date := c.Query("journey_date")
	if date == "" {
		date = c.Query("date")
	}
	classes, err := availabilityService(c).Availability(c.Request.Context(), trainNo, c.Query("source"), c.Query("destination"), date)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"train_no":     trainNo,
		"journey_date": date,
		"classes":      classes,
	})
}
