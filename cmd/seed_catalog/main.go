// seed_catalog loads the ingredient and tag reference data into the database.
// Ingredients come from a CSV of "name,measurement_unit" rows; tags are a
// fixed starter set. Existing rows are left untouched.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avagner/foodgram-backend/config"
	"github.com/avagner/foodgram-backend/internal/database"
	"github.com/avagner/foodgram-backend/internal/models"
)

var defaultTags = []models.Tag{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

func main() {
	csvPath := flag.String("ingredients", "data/ingredients.csv", "path to the ingredients CSV")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := seedTags(db); err != nil {
		log.Fatalf("Failed to seed tags: %v", err)
	}

	n, err := seedIngredients(db, *csvPath)
	if err != nil {
		log.Fatalf("Failed to seed ingredients: %v", err)
	}
	log.Printf("Seeded %d ingredients and %d tags", n, len(defaultTags))
}

func seedTags(db *gorm.DB) error {
	for _, tag := range defaultTags {
		err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error
		if err != nil {
			return fmt.Errorf("tag %q: %w", tag.Slug, err)
		}
	}
	return nil
}

func seedIngredients(db *gorm.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("reading %s: %w", path, err)
		}

		ingredient := models.Ingredient{
			Name:            record[0],
			MeasurementUnit: record[1],
		}
		err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ingredient).Error
		if err != nil {
			return count, fmt.Errorf("ingredient %q: %w", record[0], err)
		}
		count++
	}
	return count, nil
}
