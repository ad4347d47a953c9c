package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avagner/foodgram-backend/internal/models"
)

// RelationService manages the unique-pair relations: favorites, shopping
// cart entries and subscriptions. All three share one toggle state machine:
// creating an existing pair or deleting an absent one is a Conflict.
type RelationService struct {
	db *gorm.DB
}

func NewRelationService(db *gorm.DB) *RelationService {
	return &RelationService{db: db}
}

// addPair inserts row after confirming the pair is absent. The pre-check is
// racy under concurrent duplicates; the store's unique index is the final
// arbiter, so a duplicate-key error maps to the same Conflict.
func addPair[T any](db *gorm.DB, row *T, cond map[string]interface{}, validate func() error) error {
	if validate != nil {
		if err := validate(); err != nil {
			return err
		}
	}

	var count int64
	if err := db.Model(new(T)).Where(cond).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrConflict
	}

	if err := db.Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// removePair deletes the pair row. Deleting an absent pair is rejected
// rather than treated as idempotent, surfacing client misuse.
func removePair[T any](db *gorm.DB, cond map[string]interface{}) error {
	res := db.Where(cond).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *RelationService) recipeExists(recipeID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.Select("id").First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: recipe %s", ErrNotFound, recipeID)
		}
		return err
	}
	return nil
}

func (s *RelationService) userExists(userID uuid.UUID) error {
	var user models.User
	if err := s.db.Select("id").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return err
	}
	return nil
}

// Favorite adds a recipe to the user's favorites.
func (s *RelationService) Favorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := s.recipeExists(recipeID); err != nil {
		return err
	}
	row := models.Favorite{UserID: userID, RecipeID: recipeID}
	return addPair(s.db.WithContext(ctx), &row, map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	}, nil)
}

// Unfavorite removes a recipe from the user's favorites.
func (s *RelationService) Unfavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := s.recipeExists(recipeID); err != nil {
		return err
	}
	return removePair[models.Favorite](s.db.WithContext(ctx), map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})
}

// AddToCart adds a recipe to the user's shopping cart.
func (s *RelationService) AddToCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := s.recipeExists(recipeID); err != nil {
		return err
	}
	row := models.ShoppingCartEntry{UserID: userID, RecipeID: recipeID}
	return addPair(s.db.WithContext(ctx), &row, map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	}, nil)
}

// RemoveFromCart removes a recipe from the user's shopping cart.
func (s *RelationService) RemoveFromCart(ctx context.Context, userID, recipeID uuid.UUID) error {
	if err := s.recipeExists(recipeID); err != nil {
		return err
	}
	return removePair[models.ShoppingCartEntry](s.db.WithContext(ctx), map[string]interface{}{
		"user_id":   userID,
		"recipe_id": recipeID,
	})
}

// Subscribe makes follower follow author. Following yourself is rejected.
func (s *RelationService) Subscribe(ctx context.Context, followerID, authorID uuid.UUID) error {
	if err := s.userExists(authorID); err != nil {
		return err
	}
	row := models.Subscription{FollowerID: followerID, AuthorID: authorID}
	return addPair(s.db.WithContext(ctx), &row, map[string]interface{}{
		"follower_id": followerID,
		"author_id":   authorID,
	}, func() error {
		if followerID == authorID {
			return fmt.Errorf("%w: you can't follow yourself", ErrInvalidRelationship)
		}
		return nil
	})
}

// Unsubscribe makes follower stop following author.
func (s *RelationService) Unsubscribe(ctx context.Context, followerID, authorID uuid.UUID) error {
	if err := s.userExists(authorID); err != nil {
		return err
	}
	return removePair[models.Subscription](s.db.WithContext(ctx), map[string]interface{}{
		"follower_id": followerID,
		"author_id":   authorID,
	})
}

// Subscriptions returns the authors the user follows, newest first.
func (s *RelationService) Subscriptions(ctx context.Context, followerID uuid.UUID) ([]models.User, error) {
	var authors []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.follower_id = ?", followerID).
		Order("subscriptions.created_at DESC").
		Find(&authors).Error
	if err != nil {
		return nil, err
	}
	return authors, nil
}
