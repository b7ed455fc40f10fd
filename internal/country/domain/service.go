package domain

import (
	"context"
	"time"
)

// Status reports the persisted dataset size and the last completed cycle.
type Status struct {
	TotalCountries  int64      `json:"total_countries"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
}

// Service is the read/delete surface over persisted countries.
type Service interface {
	List(ctx context.Context, filter ListFilter) ([]Country, error)
	GetByName(ctx context.Context, name string) (*Country, error)
	DeleteByName(ctx context.Context, name string) error
	Status(ctx context.Context) (Status, error)
}
