package httpserver

import (
	"errors"
	"log"
	"net/http"

	"storefront/internal/domain"
	"github.com/gin-gonic/gin"
)

func listItemsHandler(svc CatalogService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.List(c.Request.Context())
		if err != nil {
			internalError(c, logger, "list items", err)
			return
		}
		if items == nil {
			items = []domain.Item{}
		}
		c.JSON(http.StatusOK, gin.H{
			"items": items,
			"total": len(items),
		})
	}
}

func getItemHandler(svc CatalogService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		item, err := svc.Get(c.Request.Context(), slug)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				apiError(c, http.StatusNotFound, "item not found")
				return
			}
			internalError(c, logger, "get item", err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}
