package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListIngredientsPrefixSearch(t *testing.T) {
	db := setupTestDB(t)
	createTestIngredient(t, db, "Flour", "g")
	createTestIngredient(t, db, "Sugar", "g")
	createTestIngredient(t, db, "Sunflower oil", "ml")

	svc := NewCatalogService(db)
	ctx := context.Background()

	// case-insensitive prefix match
	matches, err := svc.ListIngredients(ctx, "fl")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Flour", matches[0].Name)

	matches, err = svc.ListIngredients(ctx, "su")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	// empty prefix returns the whole catalog
	matches, err = svc.ListIngredients(ctx, "")
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestListIngredientsTreatsWildcardsAsLiterals(t *testing.T) {
	db := setupTestDB(t)
	createTestIngredient(t, db, "Flour", "g")
	createTestIngredient(t, db, "Sugar", "g")
	createTestIngredient(t, db, "sea_salt", "g")
	createTestIngredient(t, db, "seaweed", "g")

	svc := NewCatalogService(db)
	ctx := context.Background()

	// "%" is not "match everything"
	matches, err := svc.ListIngredients(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, matches)

	// "_" is not "match any character": "sea_" must not match "seaweed"
	matches, err = svc.ListIngredients(ctx, "sea_")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "sea_salt", matches[0].Name)
}

func TestGetIngredientNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := NewCatalogService(db).GetIngredient(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListTagsOrdered(t *testing.T) {
	db := setupTestDB(t)
	createTestTag(t, db, "Dinner", "dinner")
	createTestTag(t, db, "Breakfast", "breakfast")

	tags, err := NewCatalogService(db).ListTags(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Breakfast", tags[0].Name)
	assert.Equal(t, "Dinner", tags[1].Name)
}
