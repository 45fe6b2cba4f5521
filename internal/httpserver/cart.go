package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"

	"storefront/internal/domain"
	"github.com/gin-gonic/gin"
)

const currencyCode = "jpy"

type cartLine struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	UnitPriceYen int64  `json:"unitPriceYen"`
	TotalYen     int64  `json:"totalYen"`
}

type cartResponse struct {
	ID       string     `json:"id,omitempty"`
	Status   string     `json:"status"`
	Currency string     `json:"currency"`
	Items    []cartLine `json:"items"`
	TotalYen int64      `json:"totalYen"`
}

func toCartResponse(order domain.Order) cartResponse {
	lines := make([]cartLine, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, cartLine{
			Slug:         l.ItemSlug,
			Name:         l.ItemName,
			Quantity:     l.Quantity,
			UnitPriceYen: l.UnitPriceYen,
			TotalYen:     l.UnitPriceYen * int64(l.Quantity),
		})
	}
	return cartResponse{
		ID:       order.ID,
		Status:   order.Status,
		Currency: currencyCode,
		Items:    lines,
		TotalYen: order.Total(),
	}
}

func viewCartHandler(svc CartService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer := currentCustomer(c)
		order, err := svc.View(c.Request.Context(), customer.ID)
		if err != nil {
			internalError(c, logger, "view cart", err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(*order))
	}
}

func addCartItemHandler(svc CartService, logger *log.Logger) gin.HandlerFunc {
	return cartMutationHandler(logger, "add cart item", svc.AddItem)
}

func removeCartItemHandler(svc CartService, logger *log.Logger) gin.HandlerFunc {
	return cartMutationHandler(logger, "remove cart item", svc.RemoveItem)
}

func decrementCartItemHandler(svc CartService, logger *log.Logger) gin.HandlerFunc {
	return cartMutationHandler(logger, "decrement cart item", svc.RemoveSingleItem)
}

func cartMutationHandler(logger *log.Logger, action string, mutate func(ctx context.Context, customerID, slug string) (*domain.Order, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer := currentCustomer(c)
		order, err := mutate(c.Request.Context(), customer.ID, c.Param("slug"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				apiError(c, http.StatusNotFound, "item not found")
				return
			}
			internalError(c, logger, action, err)
			return
		}
		c.JSON(http.StatusOK, toCartResponse(*order))
	}
}
