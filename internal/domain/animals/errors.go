package animals

import (
	"errors"

	"shelter-operations/internal/domain/catalog"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidValue = catalog.ErrInvalidValue
	ErrNotFound     = errors.New("animal not found")
	ErrPersistence  = errors.New("persistence failure")
)
