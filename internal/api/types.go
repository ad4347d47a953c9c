package api

import (
	"github.com/google/uuid"

	"github.com/avagner/foodgram-backend/internal/models"
	"github.com/avagner/foodgram-backend/internal/service"
)

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type RecipeIngredientRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount" binding:"required"`
}

type RecipeRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Text        string                    `json:"text" binding:"required"`
	CookingTime int                       `json:"cooking_time" binding:"required"`
	ImageURL    string                    `json:"image_url"`
	Ingredients []RecipeIngredientRequest `json:"ingredients" binding:"required"`
	Tags        []uuid.UUID               `json:"tags"`
}

func (r *RecipeRequest) toInput() *service.RecipeInput {
	in := &service.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		ImageURL:    r.ImageURL,
		TagIDs:      r.Tags,
	}
	for _, ia := range r.Ingredients {
		in.Ingredients = append(in.Ingredients, service.IngredientAmount{
			IngredientID: ia.ID,
			Amount:       ia.Amount,
		})
	}
	return in
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

type RecipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

type RecipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Author           UserResponse               `json:"author"`
	Name             string                     `json:"name"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
	ImageURL         string                     `json:"image_url"`
	Tags             []models.Tag               `json:"tags"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
}

func toRecipeResponse(r *models.Recipe, favorited, inCart bool) RecipeResponse {
	resp := RecipeResponse{
		ID:               r.ID,
		Author:           toUserResponse(&r.Author),
		Name:             r.Name,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		ImageURL:         r.ImageURL,
		Tags:             r.Tags,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
	}
	if resp.Tags == nil {
		resp.Tags = []models.Tag{}
	}
	for _, ri := range r.Ingredients {
		resp.Ingredients = append(resp.Ingredients, RecipeIngredientResponse{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}
	return resp
}
