package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avagner/foodgram-backend/internal/models"
)

// IngredientAmount pairs a catalog ingredient with its per-recipe amount.
type IngredientAmount struct {
	IngredientID uuid.UUID
	Amount       int
}

// RecipeInput is everything a caller supplies to create or replace a recipe.
type RecipeInput struct {
	Name        string
	Text        string
	CookingTime int
	ImageURL    string
	Ingredients []IngredientAmount
	TagIDs      []uuid.UUID
}

// RecipeFilter narrows ListRecipes. Zero values mean "no filter".
type RecipeFilter struct {
	AuthorID         *uuid.UUID
	TagSlugs         []string
	FavoritedBy      *uuid.UUID
	InShoppingCartOf *uuid.UUID
}

// RecipeService handles recipe CRUD with the author-only mutation gate.
type RecipeService struct {
	db           *gorm.DB
	shoppingList *ShoppingListService
}

// NewRecipeService creates a RecipeService. shoppingList may be nil; cached
// shopping lists are then never dropped when recipes change.
func NewRecipeService(db *gorm.DB, shoppingList *ShoppingListService) *RecipeService {
	return &RecipeService{db: db, shoppingList: shoppingList}
}

func (in *RecipeInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if in.Text == "" {
		return fmt.Errorf("%w: text is required", ErrValidation)
	}
	if in.CookingTime <= 0 {
		return fmt.Errorf("%w: cooking_time must be positive", ErrValidation)
	}
	if len(in.Ingredients) == 0 {
		return fmt.Errorf("%w: at least one ingredient is required", ErrValidation)
	}
	seen := make(map[uuid.UUID]bool, len(in.Ingredients))
	for _, ia := range in.Ingredients {
		if ia.Amount <= 0 {
			return fmt.Errorf("%w: ingredient amount must be positive", ErrValidation)
		}
		if seen[ia.IngredientID] {
			return fmt.Errorf("%w: duplicate ingredient %s", ErrConflict, ia.IngredientID)
		}
		seen[ia.IngredientID] = true
	}
	return nil
}

// checkReferences confirms every ingredient and tag id exists.
func (s *RecipeService) checkReferences(tx *gorm.DB, in *RecipeInput) error {
	ids := make([]uuid.UUID, 0, len(in.Ingredients))
	for _, ia := range in.Ingredients {
		ids = append(ids, ia.IngredientID)
	}
	var count int64
	if err := tx.Model(&models.Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return fmt.Errorf("%w: unknown ingredient id", ErrNotFound)
	}

	if len(in.TagIDs) > 0 {
		if err := tx.Model(&models.Tag{}).Where("id IN ?", in.TagIDs).Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(in.TagIDs)) {
			return fmt.Errorf("%w: unknown tag id", ErrNotFound)
		}
	}
	return nil
}

// CreateRecipe creates a recipe with its ingredient and tag rows in one
// transaction. The caller becomes the author.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, in *RecipeInput) (*models.Recipe, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
		ImageURL:    in.ImageURL,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkReferences(tx, in); err != nil {
			return err
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return s.writeAssociations(tx, recipe.ID, in)
	})
	if err != nil {
		return nil, err
	}

	return s.GetRecipe(ctx, recipe.ID)
}

// GetRecipe retrieves a recipe with its ingredient list and tags.
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Ingredients", orderedByPosition).
		Preload("Ingredients.Ingredient").
		Preload("Tags").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: recipe %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &recipe, nil
}

// UpdateRecipe replaces the recipe's fields and its full ingredient and tag
// sets atomically. Only the author may update; partial replacement is never
// observable.
func (s *RecipeService) UpdateRecipe(ctx context.Context, callerID, id uuid.UUID, in *RecipeInput) (*models.Recipe, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var cartHolders []uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: recipe %s", ErrNotFound, id)
			}
			return err
		}
		if recipe.AuthorID != callerID {
			return fmt.Errorf("%w: only the author can edit a recipe", ErrForbidden)
		}
		if err := s.checkReferences(tx, in); err != nil {
			return err
		}
		if err := s.cartHolders(tx, id, &cartHolders); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
			"image_url":    in.ImageURL,
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		return s.writeAssociations(tx, id, in)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateListsFor(ctx, cartHolders)

	return s.GetRecipe(ctx, id)
}

// DeleteRecipe deletes a recipe and its join rows. Only the author may delete.
// Users holding the recipe in their cart get their cached lists dropped.
func (s *RecipeService) DeleteRecipe(ctx context.Context, callerID, id uuid.UUID) error {
	var cartHolders []uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: recipe %s", ErrNotFound, id)
			}
			return err
		}
		if recipe.AuthorID != callerID {
			return fmt.Errorf("%w: only the author can delete a recipe", ErrForbidden)
		}
		if err := s.cartHolders(tx, id, &cartHolders); err != nil {
			return err
		}

		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.ShoppingCartEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
	if err != nil {
		return err
	}
	s.invalidateListsFor(ctx, cartHolders)
	return nil
}

// ListRecipes lists recipes newest first, narrowed by filter.
func (s *RecipeService) ListRecipes(ctx context.Context, filter RecipeFilter) ([]models.Recipe, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Recipe{}).
		Preload("Author").
		Preload("Ingredients", orderedByPosition).
		Preload("Ingredients.Ingredient").
		Preload("Tags").
		Order("recipes.created_at DESC")

	if filter.AuthorID != nil {
		query = query.Where("recipes.author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		query = query.
			Joins("JOIN recipe_tags ON recipe_tags.recipe_id = recipes.id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", filter.TagSlugs).
			Distinct("recipes.*")
	}
	if filter.FavoritedBy != nil {
		query = query.
			Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
			Where("favorites.user_id = ?", *filter.FavoritedBy)
	}
	if filter.InShoppingCartOf != nil {
		query = query.
			Joins("JOIN shopping_cart_entries ON shopping_cart_entries.recipe_id = recipes.id").
			Where("shopping_cart_entries.user_id = ?", *filter.InShoppingCartOf)
	}

	var recipes []models.Recipe
	if err := query.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// RelationFlags reports which of the given recipes the user has favorited
// and which are in their cart, for response decoration.
func (s *RecipeService) RelationFlags(ctx context.Context, userID uuid.UUID, recipeIDs []uuid.UUID) (favorited, inCart map[uuid.UUID]bool, err error) {
	favorited = make(map[uuid.UUID]bool)
	inCart = make(map[uuid.UUID]bool)
	if len(recipeIDs) == 0 {
		return favorited, inCart, nil
	}

	var favs []models.Favorite
	if err = s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Find(&favs).Error; err != nil {
		return nil, nil, err
	}
	for _, f := range favs {
		favorited[f.RecipeID] = true
	}

	var entries []models.ShoppingCartEntry
	if err = s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Find(&entries).Error; err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		inCart[e.RecipeID] = true
	}
	return favorited, inCart, nil
}

func orderedByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("recipe_ingredients.position ASC")
}

// cartHolders collects the users holding the recipe in their cart, read
// inside the mutating transaction so the set matches what the change affects.
func (s *RecipeService) cartHolders(tx *gorm.DB, recipeID uuid.UUID, out *[]uuid.UUID) error {
	if s.shoppingList == nil {
		return nil
	}
	return tx.Model(&models.ShoppingCartEntry{}).
		Where("recipe_id = ?", recipeID).
		Distinct().
		Pluck("user_id", out).Error
}

// invalidateListsFor drops cached shopping lists for users whose cart
// contents just changed underneath them.
func (s *RecipeService) invalidateListsFor(ctx context.Context, userIDs []uuid.UUID) {
	if s.shoppingList == nil {
		return
	}
	for _, id := range userIDs {
		s.shoppingList.Invalidate(ctx, id)
	}
}

func (s *RecipeService) writeAssociations(tx *gorm.DB, recipeID uuid.UUID, in *RecipeInput) error {
	for i, ia := range in.Ingredients {
		row := models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: ia.IngredientID,
			Amount:       ia.Amount,
			Position:     i,
		}
		if err := tx.Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: duplicate ingredient %s", ErrConflict, ia.IngredientID)
			}
			return err
		}
	}
	for _, tagID := range in.TagIDs {
		if err := tx.Create(&models.RecipeTag{RecipeID: recipeID, TagID: tagID}).Error; err != nil {
			return err
		}
	}
	return nil
}
