package repository

import (
	"context"
	"fmt"

	"localMarketplace/internal/models"
)

type statsRepository struct {
	db DB
}

func NewStatsRepository(db DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Counts(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats

	err := r.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM listings WHERE is_active = TRUE) AS active_listings,
			(SELECT COUNT(*) FROM messages) AS messages
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка при подсчёте записей базы данных: %w", err)
	}

	return &stats, nil
}
