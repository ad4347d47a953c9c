package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avagner/foodgram-backend/internal/middleware"
	"github.com/avagner/foodgram-backend/internal/service"
)

type RecipeHandler struct {
	recipeService   *service.RecipeService
	relationService *service.RelationService
	shoppingList    *service.ShoppingListService
	authService     *service.AuthService
	rateLimiter     *middleware.RateLimiter
}

func NewRecipeHandler(
	recipeService *service.RecipeService,
	relationService *service.RelationService,
	shoppingList *service.ShoppingListService,
	authService *service.AuthService,
	rateLimiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:   recipeService,
		relationService: relationService,
		shoppingList:    shoppingList,
		authService:     authService,
		rateLimiter:     rateLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.authService)
	optionalAuth := middleware.OptionalAuthMiddleware(h.authService)

	mutation := []gin.HandlerFunc{requireAuth}
	if h.rateLimiter != nil {
		mutation = append(mutation, h.rateLimiter.RateLimitMiddleware())
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optionalAuth, h.ListRecipes)
		recipes.GET("/download_shopping_cart", requireAuth, h.DownloadShoppingCart)
		recipes.GET("/:id", optionalAuth, h.GetRecipe)
		recipes.POST("", append(mutation, h.CreateRecipe)...)
		recipes.PATCH("/:id", append(mutation, h.UpdateRecipe)...)
		recipes.DELETE("/:id", append(mutation, h.DeleteRecipe)...)
		recipes.POST("/:id/favorite", requireAuth, h.Favorite)
		recipes.DELETE("/:id/favorite", requireAuth, h.Unfavorite)
		recipes.POST("/:id/shopping_cart", requireAuth, h.AddToCart)
		recipes.DELETE("/:id/shopping_cart", requireAuth, h.RemoveFromCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var filter service.RecipeFilter

	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}
	if tags := c.Query("tags"); tags != "" {
		filter.TagSlugs = strings.Split(tags, ",")
	}

	callerID, authenticated := middleware.CallerID(c)
	if authenticated {
		if c.Query("is_favorited") == "1" {
			filter.FavoritedBy = &callerID
		}
		if c.Query("is_in_shopping_cart") == "1" {
			filter.InShoppingCartOf = &callerID
		}
	}

	recipes, err := h.recipeService.ListRecipes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	favorited := map[uuid.UUID]bool{}
	inCart := map[uuid.UUID]bool{}
	if authenticated {
		ids := make([]uuid.UUID, len(recipes))
		for i := range recipes {
			ids[i] = recipes[i].ID
		}
		favorited, inCart, err = h.recipeService.RelationFlags(c.Request.Context(), callerID, ids)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, toRecipeResponse(&recipes[i], favorited[recipes[i].ID], inCart[recipes[i].ID]))
	}
	c.JSON(http.StatusOK, gin.H{"recipes": out})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	var isFavorited, isInCart bool
	if callerID, ok := middleware.CallerID(c); ok {
		favorited, inCart, err := h.recipeService.RelationFlags(c.Request.Context(), callerID, []uuid.UUID{id})
		if err != nil {
			respondError(c, err)
			return
		}
		isFavorited, isInCart = favorited[id], inCart[id]
	}

	c.JSON(http.StatusOK, toRecipeResponse(recipe, isFavorited, isInCart))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), callerID, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipe": toRecipeResponse(recipe, false, false)})
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), callerID, id, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	favorited, inCart, err := h.recipeService.RelationFlags(c.Request.Context(), callerID, []uuid.UUID{id})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": toRecipeResponse(recipe, favorited[id], inCart[id])})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), callerID, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) Favorite(c *gin.Context) {
	h.toggleRelation(c, h.relationService.Favorite, false)
}

func (h *RecipeHandler) Unfavorite(c *gin.Context) {
	h.removeRelation(c, h.relationService.Unfavorite, false)
}

func (h *RecipeHandler) AddToCart(c *gin.Context) {
	h.toggleRelation(c, h.relationService.AddToCart, true)
}

func (h *RecipeHandler) RemoveFromCart(c *gin.Context) {
	h.removeRelation(c, h.relationService.RemoveFromCart, true)
}

func (h *RecipeHandler) toggleRelation(c *gin.Context, create func(ctx context.Context, userID, recipeID uuid.UUID) error, cartChanged bool) {
	callerID, recipeID, ok := h.relationArgs(c)
	if !ok {
		return
	}

	if err := create(c.Request.Context(), callerID, recipeID); err != nil {
		respondError(c, err)
		return
	}
	if cartChanged {
		h.shoppingList.Invalidate(c.Request.Context(), callerID)
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":           recipe.ID,
		"name":         recipe.Name,
		"image_url":    recipe.ImageURL,
		"cooking_time": recipe.CookingTime,
	})
}

func (h *RecipeHandler) removeRelation(c *gin.Context, remove func(ctx context.Context, userID, recipeID uuid.UUID) error, cartChanged bool) {
	callerID, recipeID, ok := h.relationArgs(c)
	if !ok {
		return
	}

	if err := remove(c.Request.Context(), callerID, recipeID); err != nil {
		respondError(c, err)
		return
	}
	if cartChanged {
		h.shoppingList.Invalidate(c.Request.Context(), callerID)
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) relationArgs(c *gin.Context) (callerID, recipeID uuid.UUID, ok bool) {
	callerID, authed := middleware.CallerID(c)
	if !authed {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, uuid.Nil, false
	}

	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return uuid.Nil, uuid.Nil, false
	}
	return callerID, recipeID, true
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	text, err := h.shoppingList.RenderText(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=shopping_list.txt")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}
