package recipe

import (
	"bytes"
	"strconv"
)

// ID identifies a recipe in the catalog and in every remote response
type ID int64

// String returns the decimal form used in URLs and logs
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses the decimal form of an identifier
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(n), nil
}

// UnmarshalJSON accepts both numbers and numeric strings. The recommendation
// service has been seen returning either.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		data = data[1 : len(data)-1]
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return ErrInvalidIdentifier
	}
	*id = ID(n)
	return nil
}

// Ingredient is one line of a recipe's ingredient list
type Ingredient struct {
	Quantity string `json:"quantity"`
	Name     string `json:"name"`
}

// Nutrition maps nutrient names to their value per serving
type Nutrition map[string]float64

// Nutrient names used by the bundled catalog
const (
	NutrientCalories      = "calories"
	NutrientSugar         = "sugar"
	NutrientTotalFat      = "total fat"
	NutrientSodium        = "sodium"
	NutrientProtein       = "protein"
	NutrientSaturatedFat  = "saturated fat"
	NutrientCarbohydrates = "carbohydrates"
)

// ResultSet is an ordered sequence of records resolved from an identifier
// list. It is never persisted and is rebuilt for every query.
type ResultSet []*Record

// IDs returns the identifiers of the records in order
func (rs ResultSet) IDs() []ID {
	ids := make([]ID, len(rs))
	for i, r := range rs {
		ids[i] = r.RecipeID
	}
	return ids
}

// Limit returns at most n leading records. A non-positive n returns the whole set.
func (rs ResultSet) Limit(n int) ResultSet {
	if n <= 0 || n >= len(rs) {
		return rs
	}
	return rs[:n]
}
