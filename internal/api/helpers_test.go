package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avagner/foodgram-backend/internal/models"
	"github.com/avagner/foodgram-backend/internal/service"
)

// TestDB holds the test database and the services built on it
type TestDB struct {
	DB              *gorm.DB
	Cache           *memoryListCache
	AuthService     *service.AuthService
	RecipeService   *service.RecipeService
	RelationService *service.RelationService
	CatalogService  *service.CatalogService
	UserService     *service.UserService
	ShoppingList    *service.ShoppingListService
}

// memoryListCache is an in-process stand-in for the Redis list cache.
type memoryListCache struct {
	entries map[string]string
}

func newMemoryListCache() *memoryListCache {
	return &memoryListCache{entries: map[string]string{}}
}

func (c *memoryListCache) Get(ctx context.Context, key string) (string, error) {
	text, ok := c.entries[key]
	if !ok {
		return "", service.ErrCacheMiss
	}
	return text, nil
}

func (c *memoryListCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.entries[key] = value
	return nil
}

func (c *memoryListCache) Del(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

// SetupTestDB creates an in-memory database with the full schema and services
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.RecipeTag{},
		&models.Favorite{},
		&models.ShoppingCartEntry{},
		&models.Subscription{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	cache := newMemoryListCache()
	shoppingList := service.NewShoppingListService(db, cache, time.Minute)

	return &TestDB{
		DB:              db,
		Cache:           cache,
		AuthService:     service.NewAuthService(db, "test-secret", time.Hour),
		RecipeService:   service.NewRecipeService(db, shoppingList),
		RelationService: service.NewRelationService(db),
		CatalogService:  service.NewCatalogService(db),
		UserService:     service.NewUserService(db),
		ShoppingList:    shoppingList,
	}
}

// SetupTestRouter creates a router with every handler registered, backed by
// a fresh test database.
func SetupTestRouter(t *testing.T) (*gin.Engine, *TestDB) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	testDB := SetupTestDB(t)

	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	NewAuthHandler(testDB.AuthService).RegisterRoutes(v1)
	NewCatalogHandler(testDB.CatalogService).RegisterRoutes(v1)
	NewRecipeHandler(testDB.RecipeService, testDB.RelationService, testDB.ShoppingList, testDB.AuthService, nil).RegisterRoutes(v1)
	NewUserHandler(testDB.UserService, testDB.RelationService, testDB.RecipeService, testDB.AuthService).RegisterRoutes(v1)

	return router, testDB
}

// CreateTestUserAndToken creates a user and returns their id and a valid JWT
func CreateTestUserAndToken(t *testing.T, testDB *TestDB, username string) (uuid.UUID, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("testpassword123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := models.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(hashedPassword),
	}
	if err := testDB.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	token, err := testDB.AuthService.GenerateToken(&service.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	return user.ID, token
}

// PerformRequest is a helper to make HTTP requests in tests. token may be
// empty for anonymous requests.
func PerformRequest(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// SeedCatalog inserts a couple of ingredients and a tag for recipe payloads.
func SeedCatalog(t *testing.T, testDB *TestDB) (flour, sugar models.Ingredient, dinner models.Tag) {
	t.Helper()

	flour = models.Ingredient{Name: "Flour", MeasurementUnit: "g"}
	sugar = models.Ingredient{Name: "Sugar", MeasurementUnit: "g"}
	dinner = models.Tag{Name: "Dinner", Color: "#8775D2", Slug: "dinner"}

	for _, row := range []interface{}{&flour, &sugar, &dinner} {
		if err := testDB.DB.Create(row).Error; err != nil {
			t.Fatalf("failed to seed catalog: %v", err)
		}
	}
	return flour, sugar, dinner
}
