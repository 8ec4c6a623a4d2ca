// Package recipe contains the recipe catalog domain: the immutable records
// bundled with the client and the index used to resolve identifier lists
// returned by the personalization service.
package recipe

import (
	"strings"
)

// Record is a single catalog entry. Records are loaded once at startup and
// shared by pointer across components; they must not be mutated afterwards.
type Record struct {
	RecipeID    ID           `json:"recipe_id"`
	Name        string       `json:"name"`
	Image       string       `json:"image"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []string     `json:"steps"`
	Tags        []string     `json:"tags"`
	Nutrition   Nutrition    `json:"nutrition"`
	Servings    string       `json:"servings"`
	Time        string       `json:"time"`
}

// Validate checks the minimum a record needs to be indexed
func (r *Record) Validate() error {
	if r == nil {
		return ErrNilRecord
	}
	if r.RecipeID <= 0 {
		return ErrInvalidIdentifier
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrMissingName
	}
	return nil
}

// HasTag reports whether the record carries the tag, ignoring case
func (r *Record) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Calories returns the calorie entry of the nutrition table, zero if absent
func (r *Record) Calories() float64 {
	return r.Nutrition[NutrientCalories]
}

// Sugar returns the sugar entry of the nutrition table, zero if absent
func (r *Record) Sugar() float64 {
	return r.Nutrition[NutrientSugar]
}
