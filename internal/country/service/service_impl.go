package service

import (
	"context"
	"strings"

	"github.com/geopulse/geopulse/internal/country/domain"
	"github.com/geopulse/geopulse/internal/metadata"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log         *zap.Logger
	CountryRepo domain.Repository
	MetaRepo    metadata.Repository
}

type Service struct {
	log         *zap.Logger
	countryRepo domain.Repository
	metaRepo    metadata.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:         p.Log.Named("country.service"),
		countryRepo: p.CountryRepo,
		metaRepo:    p.MetaRepo,
	}
}

func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.Country, error) {
	filter.Region = strings.TrimSpace(filter.Region)
	filter.Currency = strings.TrimSpace(filter.Currency)
	filter.Sort = strings.TrimSpace(filter.Sort)

	countries, err := s.countryRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if countries == nil {
		countries = []domain.Country{}
	}
	return countries, nil
}

func (s *Service) GetByName(ctx context.Context, name string) (*domain.Country, error) {
	country, err := s.countryRepo.FindByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if country == nil {
		return nil, domain.ErrNotFound
	}
	return country, nil
}

func (s *Service) DeleteByName(ctx context.Context, name string) error {
	deleted, err := s.countryRepo.DeleteByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	s.log.Info("country deleted", zap.String("name", name))
	return nil
}

func (s *Service) Status(ctx context.Context) (domain.Status, error) {
	total, err := s.countryRepo.Count(ctx)
	if err != nil {
		return domain.Status{}, err
	}

	status := domain.Status{TotalCountries: total}
	meta, err := s.metaRepo.Get(ctx)
	if err != nil {
		return domain.Status{}, err
	}
	if meta != nil {
		status.LastRefreshedAt = meta.LastRefreshedAt
	}
	return status, nil
}
