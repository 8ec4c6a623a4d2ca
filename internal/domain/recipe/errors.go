package recipe

import "errors"

// Domain errors for catalog records

var (
	ErrNilRecord           = errors.New("recipe record is nil")
	ErrInvalidIdentifier   = errors.New("recipe identifier must be a positive integer")
	ErrMissingName         = errors.New("recipe name is required")
	ErrDuplicateIdentifier = errors.New("duplicate recipe identifier")
	ErrRecipeNotFound      = errors.New("recipe not found")
)
