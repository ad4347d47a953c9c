package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avagner/foodgram-backend/internal/middleware"
	"github.com/avagner/foodgram-backend/internal/service"
)

// UserHandler serves profiles and the subscribe/unsubscribe toggle.
type UserHandler struct {
	userService     *service.UserService
	relationService *service.RelationService
	recipeService   *service.RecipeService
	authService     *service.AuthService
}

func NewUserHandler(
	userService *service.UserService,
	relationService *service.RelationService,
	recipeService *service.RecipeService,
	authService *service.AuthService,
) *UserHandler {
	return &UserHandler{
		userService:     userService,
		relationService: relationService,
		recipeService:   recipeService,
		authService:     authService,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.authService)

	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/me", requireAuth, h.Me)
		users.GET("/subscriptions", requireAuth, h.Subscriptions)
		users.GET("/:id", h.GetUser)
		users.POST("/:id/subscribe", requireAuth, h.Subscribe)
		users.DELETE("/:id/subscribe", requireAuth, h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (h *UserHandler) Me(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	callerID, authorID, ok := h.subscriptionArgs(c)
	if !ok {
		return
	}

	if err := h.relationService.Subscribe(c.Request.Context(), callerID, authorID); err != nil {
		respondError(c, err)
		return
	}

	author, err := h.userService.GetUser(c.Request.Context(), authorID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(author))
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	callerID, authorID, ok := h.subscriptionArgs(c)
	if !ok {
		return
	}

	if err := h.relationService.Unsubscribe(c.Request.Context(), callerID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Subscriptions lists the authors the caller follows, each with their recipes.
func (h *UserHandler) Subscriptions(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	authors, err := h.relationService.Subscriptions(c.Request.Context(), callerID)
	if err != nil {
		respondError(c, err)
		return
	}

	type subscriptionResponse struct {
		UserResponse
		Recipes []RecipeResponse `json:"recipes"`
	}

	out := make([]subscriptionResponse, 0, len(authors))
	for i := range authors {
		authorID := authors[i].ID
		recipes, err := h.recipeService.ListRecipes(c.Request.Context(), service.RecipeFilter{AuthorID: &authorID})
		if err != nil {
			respondError(c, err)
			return
		}
		entry := subscriptionResponse{
			UserResponse: toUserResponse(&authors[i]),
			Recipes:      make([]RecipeResponse, 0, len(recipes)),
		}
		for j := range recipes {
			entry.Recipes = append(entry.Recipes, toRecipeResponse(&recipes[j], false, false))
		}
		out = append(out, entry)
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": out})
}

func (h *UserHandler) subscriptionArgs(c *gin.Context) (callerID, authorID uuid.UUID, ok bool) {
	callerID, authed := middleware.CallerID(c)
	if !authed {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, uuid.Nil, false
	}

	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return uuid.Nil, uuid.Nil, false
	}
	return callerID, authorID, true
}
