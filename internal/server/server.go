package server

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/avagner/foodgram-backend/config"
	"github.com/avagner/foodgram-backend/internal/api"
	"github.com/avagner/foodgram-backend/internal/middleware"
	"github.com/avagner/foodgram-backend/internal/service"
)

// Server wires services, handlers and the HTTP listener together.
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
}

// New assembles the full application around an open database handle.
// redisClient may be nil; caching and rate limiting are then disabled.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.JWTExpiry)
	shoppingList := service.NewShoppingListService(db, service.NewRedisListCache(redisClient), cfg.ShoppingListTTL)
	recipeService := service.NewRecipeService(db, shoppingList)
	relationService := service.NewRelationService(db)
	catalogService := service.NewCatalogService(db)
	userService := service.NewUserService(db)

	var rateLimiter *middleware.RateLimiter
	if redisClient != nil {
		rateLimiter = middleware.NewRecipeMutationRateLimiter(redisClient)
	}

	router := gin.Default()
	router.Use(middleware.CORS(cfg.CORSOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	api.NewAuthHandler(authService).RegisterRoutes(v1)
	api.NewCatalogHandler(catalogService).RegisterRoutes(v1)
	api.NewRecipeHandler(recipeService, relationService, shoppingList, authService, rateLimiter).RegisterRoutes(v1)
	api.NewUserHandler(userService, relationService, recipeService, authService).RegisterRoutes(v1)

	return &Server{
		router: router,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: router,
		},
		db: db,
	}
}

// Router exposes the gin engine, mostly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
