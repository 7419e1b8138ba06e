package service

import (
	"context"

	"localMarketplace/internal/models"
	"localMarketplace/internal/repository"
)

type StatsService interface {
	Counts(ctx context.Context) (*models.Stats, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
}

func NewStatsService(statsRepo repository.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) Counts(ctx context.Context) (*models.Stats, error) {
	stats, err := s.statsRepo.Counts(ctx)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
