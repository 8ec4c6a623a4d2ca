// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"github.com/brianvoe/gofakeit/v6"

	"github.com/alchemorsel/recipebook/internal/domain/recipe"
	"github.com/alchemorsel/recipebook/internal/domain/user"
)

// CatalogTags is the tag vocabulary factories draw from
var CatalogTags = []string{"Breakfast", "Sweet", "Vegan", "Dessert", "Inexpensive", "Appetizers", "Dietary", "Gluten-free"}

// RecipeFactory provides methods to create test recipes
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a new recipe factory with seeded faker
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{
		faker: gofakeit.New(seed),
	}
}

// Record creates a complete record with the given identifier
func (f *RecipeFactory) Record(id recipe.ID) *recipe.Record {
	ingredients := make([]recipe.Ingredient, f.faker.Number(2, 6))
	for i := range ingredients {
		ingredients[i] = recipe.Ingredient{
			Quantity: f.faker.Numerify("# ") + f.faker.RandomString([]string{"cup", "tbsp", "tsp", "g"}),
			Name:     f.faker.Noun(),
		}
	}

	steps := make([]string, f.faker.Number(2, 5))
	for i := range steps {
		steps[i] = f.faker.Sentence(8)
	}

	return &recipe.Record{
		RecipeID:    id,
		Name:        f.faker.Sentence(3),
		Image:       f.faker.URL(),
		Ingredients: ingredients,
		Steps:       steps,
		Tags: []string{
			f.faker.RandomString(CatalogTags),
			f.faker.RandomString(CatalogTags),
		},
		Nutrition: recipe.Nutrition{
			recipe.NutrientCalories: f.faker.Float64Range(50, 900),
			recipe.NutrientSugar:    f.faker.Float64Range(0, 80),
			recipe.NutrientProtein:  f.faker.Float64Range(0, 60),
		},
		Servings: f.faker.Numerify("# servings"),
		Time:     f.faker.Numerify("## min"),
	}
}

// Catalog creates records with identifiers 1..n in order
func (f *RecipeFactory) Catalog(n int) []*recipe.Record {
	records := make([]*recipe.Record, n)
	for i := range records {
		records[i] = f.Record(recipe.ID(i + 1))
	}
	return records
}

// Index builds an index over a generated catalog of n records
func (f *RecipeFactory) Index(n int) *recipe.Index {
	idx, _ := recipe.NewIndex(f.Catalog(n))
	return idx
}

// UserFactory provides methods to create test users
type UserFactory struct {
	faker *gofakeit.Faker
}

// NewUserFactory creates a new user factory with seeded faker
func NewUserFactory(seed int64) *UserFactory {
	return &UserFactory{
		faker: gofakeit.New(seed),
	}
}

// Info creates a valid user record with the given identifier
func (f *UserFactory) Info(id user.ID) user.Info {
	return user.Info{
		IDUser:    id,
		Username:  f.faker.Username(),
		Email:     f.faker.Email(),
		FirstName: f.faker.FirstName(),
		LastName:  f.faker.LastName(),
	}
}

// IDs converts ints to recipe identifiers
func IDs(ids ...int) []recipe.ID {
	out := make([]recipe.ID, len(ids))
	for i, id := range ids {
		out[i] = recipe.ID(id)
	}
	return out
}
