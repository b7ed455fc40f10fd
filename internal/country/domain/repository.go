package domain

import (
	"context"

	"gorm.io/gorm"
)

// Sort orders accepted by the list query.
const (
	SortGDPAsc         = "gdp_asc"
	SortGDPDesc        = "gdp_desc"
	SortPopulationAsc  = "population_asc"
	SortPopulationDesc = "population_desc"
)

// ListFilter narrows and orders the country listing. Empty fields are
// ignored; filters match case-insensitively and exactly.
type ListFilter struct {
	Region   string
	Currency string
	Sort     string
}

// Repository provides persistence for countries. Upsert runs against the
// caller's transaction so a refresh cycle commits as one unit.
type Repository interface {
	FindByName(ctx context.Context, name string) (*Country, error)
	List(ctx context.Context, filter ListFilter) ([]Country, error)
	TopByGDP(ctx context.Context, limit int) ([]Country, error)
	Count(ctx context.Context) (int64, error)
	DeleteByName(ctx context.Context, name string) (bool, error)
	Upsert(ctx context.Context, tx *gorm.DB, candidate *Country) error
}
