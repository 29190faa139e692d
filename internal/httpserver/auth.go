package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	usersvc "carton-service/internal/service/user"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func signupHandler(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req usersvc.SignupInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		u, err := svc.Signup(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"user": u})
	}
}

// loginHandler authenticates the actor. The session token header ties the
// login to the browsing session so the anonymous cart can be merged.
func loginHandler(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		sessionToken := strings.TrimSpace(c.GetHeader(sessionHeader))

		u, access, err := svc.Login(c.Request.Context(), req.Email, req.Password, sessionToken)
		if err != nil {
			if errors.Is(err, usersvc.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "login failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user":        u,
			"accessToken": access,
			"expiresIn":   svc.AccessTTLSeconds(),
		})
	}
}
