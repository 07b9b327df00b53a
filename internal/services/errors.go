package services

import "github.com/abrezinsky/m8keys/internal/errors"

// Service errors
var (
	ErrNoKeys      = errors.InvalidInput("at least one key is required")
	ErrNoShareBase = errors.InvalidInput("share base URL is not configured")
)
