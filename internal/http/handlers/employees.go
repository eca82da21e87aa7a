package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/employees/quota
func GetEmployeeQuota(c *gin.Context) {
	who, ok := principal(c)
	if !ok {
		return
	}
	q, err := employeeService(c).Quota(c.Request.Context(), who)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// GET /api/employees/dependents
func GetDependents(c *gin.Context) {
	who, ok := principal(c)
	if !ok {
		return
	}
	deps, err := employeeService(c).Dependents(c.Request.Context(), who)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dependents": deps, "count": len(deps)})
}

// GET /api/employees/my-profile
func GetEmployeeProfile(c *gin.Context) {
	who, ok := principal(c)
	if !ok {
		return
	}
	p, err := profileService(c).EmployeeProfile(c.Request.Context(), who)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
