package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avagner/foodgram-backend/internal/models"
)

func TestListTagsEndpoint(t *testing.T) {
	router, testDB := SetupTestRouter(t)
	_, _, dinner := SeedCatalog(t, testDB)

	w := PerformRequest(router, http.MethodGet, "/api/v1/tags", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tags []models.Tag `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, dinner.Slug, resp.Tags[0].Slug)
}

func TestIngredientSearchEndpoint(t *testing.T) {
	router, testDB := SetupTestRouter(t)
	SeedCatalog(t, testDB)

	w := PerformRequest(router, http.MethodGet, "/api/v1/ingredients?name=fl", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Ingredients []models.Ingredient `json:"ingredients"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Ingredients, 1)
	assert.Equal(t, "Flour", resp.Ingredients[0].Name)
}

func TestGetIngredientNotFound(t *testing.T) {
	router, _ := SetupTestRouter(t)

	w := PerformRequest(router, http.MethodGet, "/api/v1/ingredients/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
