package outbound

import (
	"context"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/domain/user"
)

// PersonalizationService is the remote recommendation/search service. It only
// ever hands back recipe identifiers; records come from the local catalog.
type PersonalizationService interface {
	// Like notifies the service that userID liked recipeID (POST /like)
	Like(ctx context.Context, userID user.ID, recipeID recipe.ID) error

	// Search returns identifiers matching free text or a tag (GET /api/recherche)
	Search(ctx context.Context, text string) ([]recipe.ID, error)

	// Recommend returns the personalized identifier list for userID
	// (GET /api/machine_learning)
	Recommend(ctx context.Context, userID user.ID) ([]recipe.ID, error)

	// RecipesByQuery is the legacy catalog fetch (GET /recipes/{query}),
	// reduced to identifiers
	RecipesByQuery(ctx context.Context, query string) ([]recipe.ID, error)

	// Ingredients returns the ingredient vocabulary (GET /ingredients)
	Ingredients(ctx context.Context) ([]string, error)
}
