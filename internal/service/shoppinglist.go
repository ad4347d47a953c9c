package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/avagner/foodgram-backend/internal/models"
)

// LineItem is one consolidated row of the shopping list.
type LineItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// Aggregate groups ingredient rows by (name, measurement unit) and sums the
// amounts within each group. Ingredients sharing a name but measured in
// different units stay separate, so incompatible units are never summed.
// Output order is the order of first occurrence in rows, which makes the
// result deterministic for a fixed cart and ingredient ordering.
func Aggregate(rows []models.RecipeIngredient) []LineItem {
	type key struct {
		name string
		unit string
	}

	index := make(map[key]int, len(rows))
	items := make([]LineItem, 0, len(rows))

	for _, row := range rows {
		k := key{name: row.Ingredient.Name, unit: row.Ingredient.MeasurementUnit}
		if i, ok := index[k]; ok {
			items[i].Amount += row.Amount
			continue
		}
		index[k] = len(items)
		items = append(items, LineItem{
			Name:            row.Ingredient.Name,
			MeasurementUnit: row.Ingredient.MeasurementUnit,
			Amount:          row.Amount,
		})
	}

	return items
}

// RenderList renders aggregated items as numbered plain-text lines,
// one "{index}. {name} - {amount} {unit}" per ingredient, 1-indexed.
func RenderList(items []LineItem) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s - %d %s\n", i+1, item.Name, item.Amount, item.MeasurementUnit)
	}
	return b.String()
}

// ErrCacheMiss is returned by ListCache implementations for absent keys.
var ErrCacheMiss = errors.New("cache miss")

// ListCache stores rendered shopping lists keyed per user.
type ListCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type redisListCache struct {
	client *redis.Client
}

// NewRedisListCache wraps a Redis client as a ListCache. A nil client yields
// a nil cache, disabling caching.
func NewRedisListCache(client *redis.Client) ListCache {
	if client == nil {
		return nil
	}
	return &redisListCache{client: client}
}

func (c *redisListCache) Get(ctx context.Context, key string) (string, error) {
	text, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	return text, err
}

func (c *redisListCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisListCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// ShoppingListService compiles a user's cart into a consolidated shopping
// list. The rendered text is cached; the cache is best-effort and any cache
// failure falls back to recomputation.
type ShoppingListService struct {
	db    *gorm.DB
	cache ListCache
	ttl   time.Duration
}

// NewShoppingListService creates a ShoppingListService. cache may be nil,
// in which case every call recomputes.
func NewShoppingListService(db *gorm.DB, cache ListCache, ttl time.Duration) *ShoppingListService {
	return &ShoppingListService{db: db, cache: cache, ttl: ttl}
}

func cacheKey(userID uuid.UUID) string {
	return "shopping_list:" + userID.String()
}

// Compile resolves the user's cart entries to their recipes' ingredient rows
// and aggregates them. Cart entries are walked oldest first and each recipe's
// ingredients in their stored order, so output is stable across runs.
func (s *ShoppingListService) Compile(ctx context.Context, userID uuid.UUID) ([]LineItem, error) {
	var entries []models.ShoppingCartEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []LineItem{}, nil
	}

	recipeIDs := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		recipeIDs[i] = e.RecipeID
	}

	var rows []models.RecipeIngredient
	err = s.db.WithContext(ctx).
		Preload("Ingredient").
		Where("recipe_id IN ?", recipeIDs).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byRecipe := make(map[uuid.UUID][]models.RecipeIngredient, len(entries))
	for _, row := range rows {
		byRecipe[row.RecipeID] = append(byRecipe[row.RecipeID], row)
	}

	// Flatten in cart order; recipes with no ingredients contribute nothing.
	ordered := make([]models.RecipeIngredient, 0, len(rows))
	for _, e := range entries {
		ordered = append(ordered, byRecipe[e.RecipeID]...)
	}

	return Aggregate(ordered), nil
}

// RenderText returns the plain-text shopping list for the user, serving the
// cached rendering when one exists.
func (s *ShoppingListService) RenderText(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.cache != nil {
		text, err := s.cache.Get(ctx, cacheKey(userID))
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("shopping list cache read failed: %v", err)
		}
	}

	items, err := s.Compile(ctx, userID)
	if err != nil {
		return "", err
	}
	text := RenderList(items)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(userID), text, s.ttl); err != nil {
			log.Printf("shopping list cache write failed: %v", err)
		}
	}
	return text, nil
}

// Invalidate drops the user's cached rendering. Called on cart mutation.
func (s *ShoppingListService) Invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(userID)); err != nil {
		log.Printf("shopping list cache invalidation failed: %v", err)
	}
}
