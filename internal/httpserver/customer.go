package httpserver

import (
	"errors"
	"log"
	"net/http"

	"storefront/internal/domain"
	customersvc "storefront/internal/service/customer"
	"github.com/gin-gonic/gin"
)

type tokenRequest struct {
	GrantType string `form:"grant_type" binding:"required"`
	Username  string `form:"username" binding:"required"`
	Password  string `form:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

func signupHandler(svc CustomerService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req customersvc.SignupInput
		if err := c.ShouldBindJSON(&req); err != nil {
			apiError(c, http.StatusBadRequest, "invalid signup payload")
			return
		}
		customer, err := svc.Signup(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				apiError(c, http.StatusConflict, "customer already exists")
				return
			}
			// validation failures from the service carry a readable message
			apiError(c, http.StatusBadRequest, err.Error())
			return
		}
		c.JSON(http.StatusCreated, gin.H{"customer": customer})
	}
}

func tokenHandler(svc CustomerService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req tokenRequest
		if err := c.ShouldBind(&req); err != nil {
			apiError(c, http.StatusBadRequest, "grant_type, username and password are required")
			return
		}
		if req.GrantType != "password" {
			apiError(c, http.StatusBadRequest, "unsupported grant_type")
			return
		}

		_, access, refresh, err := svc.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, customersvc.ErrInvalidCredentials) {
				apiError(c, http.StatusUnauthorized, "invalid customer credentials")
				return
			}
			internalError(c, logger, "login", err)
			return
		}
		c.JSON(http.StatusOK, tokenResponse{
			AccessToken:  access,
			TokenType:    "Bearer",
			ExpiresIn:    svc.AccessTTLSeconds(),
			RefreshToken: refresh,
		})
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"customer": currentCustomer(c)})
	}
}
