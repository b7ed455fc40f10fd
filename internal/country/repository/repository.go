package repository

import (
	"context"
	"errors"

	"github.com/geopulse/geopulse/internal/country/domain"
	"gorm.io/gorm"
)

type CountryRepository struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &CountryRepository{db: db}
}

func (r *CountryRepository) FindByName(ctx context.Context, name string) (*domain.Country, error) {
	return findByNormalizedName(ctx, r.db, domain.NormalizeName(name))
}

func (r *CountryRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Country, error) {
	query := r.db.WithContext(ctx).Model(&domain.Country{})

	if filter.Region != "" {
		query = query.Where("lower(region) = lower(?)", filter.Region)
	}
	if filter.Currency != "" {
		query = query.Where("lower(currency_code) = lower(?)", filter.Currency)
	}

	switch filter.Sort {
	case "":
		// default storage order
	case domain.SortGDPAsc:
		query = query.Order("estimated_gdp ASC")
	case domain.SortGDPDesc:
		query = query.Order("estimated_gdp DESC")
	case domain.SortPopulationAsc:
		query = query.Order("population ASC")
	case domain.SortPopulationDesc:
		query = query.Order("population DESC")
	default:
		return nil, domain.ErrInvalidSort
	}

	var countries []domain.Country
	if err := query.Find(&countries).Error; err != nil {
		return nil, err
	}
	return countries, nil
}

func (r *CountryRepository) TopByGDP(ctx context.Context, limit int) ([]domain.Country, error) {
	var countries []domain.Country
	err := r.db.WithContext(ctx).
		Order("estimated_gdp DESC").
		Limit(limit).
		Find(&countries).Error
	if err != nil {
		return nil, err
	}
	return countries, nil
}

func (r *CountryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Country{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CountryRepository) DeleteByName(ctx context.Context, name string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("name_normalized = ?", domain.NormalizeName(name)).
		Delete(&domain.Country{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Upsert writes the candidate into the caller's transaction, matching any
// existing row by normalized name. The second writer always wins; a
// duplicate-key failure from a racing insert is recovered as an update.
func (r *CountryRepository) Upsert(ctx context.Context, tx *gorm.DB, candidate *domain.Country) error {
	candidate.NameNormalized = domain.NormalizeName(candidate.Name)

	existing, err := findByNormalizedName(ctx, tx, candidate.NameNormalized)
	if err != nil {
		return err
	}
	if existing != nil {
		return overwrite(ctx, tx, existing, candidate)
	}

	err = tx.WithContext(ctx).Create(candidate).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		existing, findErr := findByNormalizedName(ctx, tx, candidate.NameNormalized)
		if findErr != nil {
			return findErr
		}
		if existing == nil {
			return err
		}
		return overwrite(ctx, tx, existing, candidate)
	}
	return err
}

func findByNormalizedName(ctx context.Context, db *gorm.DB, normalized string) (*domain.Country, error) {
	var country domain.Country
	err := db.WithContext(ctx).
		Where("name_normalized = ?", normalized).
		First(&country).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &country, nil
}

func overwrite(ctx context.Context, tx *gorm.DB, existing, candidate *domain.Country) error {
	existing.Name = candidate.Name
	existing.NameNormalized = candidate.NameNormalized
	existing.Capital = candidate.Capital
	existing.Region = candidate.Region
	existing.Population = candidate.Population
	existing.CurrencyCode = candidate.CurrencyCode
	existing.ExchangeRate = candidate.ExchangeRate
	existing.EstimatedGDP = candidate.EstimatedGDP
	existing.FlagURL = candidate.FlagURL
	existing.LastRefreshedAt = candidate.LastRefreshedAt
	existing.UpdatedAt = candidate.LastRefreshedAt

	if err := tx.WithContext(ctx).Save(existing).Error; err != nil {
		return err
	}
	*candidate = *existing
	return nil
}
