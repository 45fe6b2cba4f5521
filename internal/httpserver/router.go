package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"storefront/internal/domain"
	customersvc "storefront/internal/service/customer"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogService exposes read access to the item catalog.
type CatalogService interface {
	List(ctx context.Context) ([]domain.Item, error)
	Get(ctx context.Context, slug string) (*domain.Item, error)
}

// CartService mutates and reads the customer's active cart.
type CartService interface {
	AddItem(ctx context.Context, customerID, slug string) (*domain.Order, error)
	RemoveItem(ctx context.Context, customerID, slug string) (*domain.Order, error)
	RemoveSingleItem(ctx context.Context, customerID, slug string) (*domain.Order, error)
	View(ctx context.Context, customerID string) (*domain.Order, error)
}

// CheckoutService drives payment of the active cart.
type CheckoutService interface {
	Info(ctx context.Context, customerID string) (*domain.Order, *domain.Customer, error)
	Pay(ctx context.Context, customerID, cardToken string) (*domain.Order, *domain.Payment, error)
	Payments(ctx context.Context, customerID string) ([]domain.Payment, error)
}

// CustomerService handles signup, login and token lookup.
type CustomerService interface {
	Signup(ctx context.Context, in customersvc.SignupInput) (*domain.Customer, error)
	Login(ctx context.Context, email, password string) (*domain.Customer, string, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.Customer, error)
	AccessTTLSeconds() int
}

// Deps bundles the services the router needs.
type Deps struct {
	CatalogSvc  CatalogService
	CartSvc     CartService
	CheckoutSvc CheckoutService
	CustomerSvc CustomerService
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.GET("/items", listItemsHandler(deps.CatalogSvc, logger))
	router.GET("/items/:slug", getItemHandler(deps.CatalogSvc, logger))

	router.POST("/me/signup", signupHandler(deps.CustomerSvc, logger))
	router.POST("/oauth/customers/token", tokenHandler(deps.CustomerSvc, logger))

	me := router.Group("/me", authMiddleware(deps.CustomerSvc))
	me.GET("", meHandler())
	me.GET("/cart", viewCartHandler(deps.CartSvc, logger))
	me.POST("/cart/items/:slug", addCartItemHandler(deps.CartSvc, logger))
	me.DELETE("/cart/items/:slug", removeCartItemHandler(deps.CartSvc, logger))
	me.POST("/cart/items/:slug/decrement", decrementCartItemHandler(deps.CartSvc, logger))
	me.GET("/checkout", checkoutInfoHandler(deps.CheckoutSvc, logger))
	me.POST("/checkout", payHandler(deps.CheckoutSvc, logger))
	me.GET("/payments", paymentsHandler(deps.CheckoutSvc, logger))

	return router
}

func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"statusCode": status, "message": message})
}

func internalError(c *gin.Context, logger *log.Logger, action string, err error) {
	logger.Printf("%s: %v", action, err)
	apiError(c, http.StatusInternalServerError, "internal error")
}
