package domain

import "errors"

var (
	ErrNotFound    = errors.New("country_not_found")
	ErrInvalidSort = errors.New("invalid_sort")
)
