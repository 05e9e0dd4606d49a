package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/auth"
)

func login(sessions *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" || body.Password == "" {
			fail(c, apperr.Invalid("email and password are required"))
			return
		}
		token, err := sessions.Login(c.Request.Context(), body.Email, body.Password)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

func logout(sessions *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Token string `json:"token"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Token == "" {
			fail(c, apperr.Invalid("token is required"))
			return
		}
		if err := sessions.Logout(c.Request.Context(), body.Token); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

func verify(sessions *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Token string `json:"token"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || body.Token == "" {
			fail(c, apperr.Invalid("token is required"))
			return
		}
		if err := sessions.Verify(c.Request.Context(), body.Token); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "token is valid"})
	}
}
