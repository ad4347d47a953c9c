package database

import (
	"log"

	"gorm.io/gorm"

	"github.com/avagner/foodgram-backend/internal/models"
)

// RunMigrations brings the schema up to date for every entity and join table.
func RunMigrations(db *gorm.DB) error {
	log.Printf("Running schema migrations")
	return db.AutoMigrate(
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
}
