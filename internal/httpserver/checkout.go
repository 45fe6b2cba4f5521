package httpserver

import (
	"errors"
	"log"
	"net/http"

	"storefront/internal/domain"
	checkoutsvc "storefront/internal/service/checkout"
	"storefront/internal/stripe"
	"github.com/gin-gonic/gin"
)

const declinedMessage = "Your payment cannot be completed. The card has been declined."

type payRequest struct {
	Token string `json:"token" binding:"required"`
}

type checkoutInfoResponse struct {
	Cart     cartResponse     `json:"cart"`
	Customer *domain.Customer `json:"customer"`
}

type payResponse struct {
	Order   cartResponse   `json:"order"`
	Payment domain.Payment `json:"payment"`
}

func checkoutInfoHandler(svc CheckoutService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer := currentCustomer(c)
		order, cust, err := svc.Info(c.Request.Context(), customer.ID)
		if err != nil {
			if errors.Is(err, checkoutsvc.ErrNoActiveCart) {
				apiError(c, http.StatusNotFound, "no active cart")
				return
			}
			internalError(c, logger, "checkout info", err)
			return
		}
		c.JSON(http.StatusOK, checkoutInfoResponse{
			Cart:     toCartResponse(*order),
			Customer: cust,
		})
	}
}

func payHandler(svc CheckoutService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apiError(c, http.StatusBadRequest, "card token required")
			return
		}

		customer := currentCustomer(c)
		order, payment, err := svc.Pay(c.Request.Context(), customer.ID, req.Token)
		if err != nil {
			switch {
			case errors.Is(err, checkoutsvc.ErrNoActiveCart):
				apiError(c, http.StatusNotFound, "no active cart")
			case errors.Is(err, checkoutsvc.ErrEmptyCart):
				apiError(c, http.StatusBadRequest, "cart is empty")
			case errors.Is(err, stripe.ErrCardDeclined):
				apiError(c, http.StatusPaymentRequired, declinedMessage)
			default:
				logger.Printf("pay: %v", err)
				apiError(c, http.StatusBadGateway, "payment gateway unavailable")
			}
			return
		}
		c.JSON(http.StatusOK, payResponse{
			Order:   toCartResponse(*order),
			Payment: *payment,
		})
	}
}

func paymentsHandler(svc CheckoutService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer := currentCustomer(c)
		payments, err := svc.Payments(c.Request.Context(), customer.ID)
		if err != nil {
			internalError(c, logger, "list payments", err)
			return
		}
		if payments == nil {
			payments = []domain.Payment{}
		}
		c.JSON(http.StatusOK, gin.H{
			"payments": payments,
			"total":    len(payments),
		})
	}
}
