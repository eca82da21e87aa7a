package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"railway/internal/services"
)

type loginRequest struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type employeeLoginRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// POST /api/auth/register
func Register(c *gin.Context) {
	var req services.RegisterInput
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := authService(c).Register(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "registration successful", "user": u})
}

// POST /api/auth/login accepts a user name or email in "login" (or "email").
func Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	login := req.Login
	if login == "" {
		login = req.Email
	}
	res, err := authService(c).LoginUser(c.Request.Context(), login, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/employees/auth/login
func EmployeeLogin(c *gin.Context) {
	var req employeeLoginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := authService(c).LoginEmployee(c.Request.Context(), req.EmployeeID, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// PUT /api/users/change-password
func ChangePassword(c *gin.Context) {
	who, ok := principal(c)
	if !ok {
		return
	}
	var req services.ChangePasswordInput
	if !BindJSONOrError(c, &req) {
		return
	}
	if err := authService(c).ChangePassword(c.Request.Context(), who, req); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}
