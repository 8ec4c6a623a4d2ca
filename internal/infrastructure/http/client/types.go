package client

import (
	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/domain/user"
)

// Endpoint paths of the personalization service
const (
	PathLike           = "/like"
	PathRecipes        = "/recipes/"
	PathIngredients    = "/ingredients"
	PathSearch         = "/api/recherche"
	PathRecommendation = "/api/machine_learning"
)

// LikeRequest is the body of POST /like
type LikeRequest struct {
	IDUser   user.ID   `json:"id_user"`
	IDRecipe recipe.ID `json:"id_recipe"`
}

// SearchResponse is the body returned by GET /api/recherche
type SearchResponse struct {
	Recipes []recipe.ID `json:"recipes"`
}

// RecommendationResponse is the body returned by GET /api/machine_learning
type RecommendationResponse struct {
	RecipeList []recipe.ID `json:"recipe_list"`
}

// LegacyRecipe is one element of GET /recipes/{query}. Only the identifier
// is used; the record itself comes from the local catalog.
type LegacyRecipe struct {
	RecipeID recipe.ID `json:"recipe_id"`
	Name     string    `json:"name,omitempty"`
}

// IngredientResponse is one element of GET /ingredients
type IngredientResponse struct {
	IDIngredient int64  `json:"id_ingredient"`
	Name         string `json:"name"`
}
