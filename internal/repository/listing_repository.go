package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"localMarketplace/internal/models"
)

const listingColumns = `id, seller_id, title, price, category, condition, description, image_urls,
		latitude, longitude, location, listing_date, is_active`

type listingRepository struct {
	db DB
}

func NewListingRepository(db DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	query := `
		INSERT INTO listings (seller_id, title, price, category, condition, description, image_urls,
			latitude, longitude, location, listing_date, is_active)
		VALUES (:seller_id, :title, :price, :category, :condition, :description, :image_urls,
			:latitude, :longitude, :location, :listing_date, :is_active)
		RETURNING id
	`

	listing.ListingDate = time.Now()
	listing.IsActive = true
	if listing.ImageURLs == nil {
		listing.ImageURLs = pq.StringArray{}
	}

	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, listing)
	if err != nil {
		return fmt.Errorf("ошибка при создании объявления: %w", err)
	}
	defer rows.Close()

	return scanReturnedID(rows, &listing.ID, "объявления")
}

func (r *listingRepository) GetByID(ctx context.Context, listingID int64) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	var listing models.Listing
	err := r.db.GetContext(ctx, &listing, query, listingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: ID %d", ErrListingNotFound, listingID)
		}
		return nil, fmt.Errorf("ошибка при получении объявления: %w", err)
	}

	return &listing, nil
}

func (r *listingRepository) ListActive(ctx context.Context) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings
		WHERE is_active = TRUE
		ORDER BY listing_date DESC, id DESC`

	listings := []models.Listing{}
	err := r.db.SelectContext(ctx, &listings, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении активных объявлений: %w", err)
	}

	return listings, nil
}

func (r *listingRepository) ListFiltered(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE is_active = TRUE`
	args := []interface{}{}
	idx := 1

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", idx)
		args = append(args, filter.Category)
		idx++
	}
	if filter.Condition != "" {
		query += fmt.Sprintf(" AND condition = $%d", idx)
		args = append(args, filter.Condition)
		idx++
	}
	if filter.MinPrice != nil {
		query += fmt.Sprintf(" AND price >= $%d", idx)
		args = append(args, *filter.MinPrice)
		idx++
	}
	if filter.MaxPrice != nil {
		query += fmt.Sprintf(" AND price <= $%d", idx)
		args = append(args, *filter.MaxPrice)
		idx++
	}

	query += fmt.Sprintf(" ORDER BY listing_date DESC, id DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, filter.Limit, filter.Offset)

	listings := []models.Listing{}
	err := r.db.SelectContext(ctx, &listings, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка при поиске объявлений: %w", err)
	}

	return listings, nil
}

func (r *listingRepository) ListBySeller(ctx context.Context, sellerID int64) ([]models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings
		WHERE seller_id = $1
		ORDER BY listing_date DESC, id DESC`

	listings := []models.Listing{}
	err := r.db.SelectContext(ctx, &listings, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении объявлений продавца: %w", err)
	}

	return listings, nil
}

// Update replaces every mutable column; id, seller and listing date stay as stored.
func (r *listingRepository) Update(ctx context.Context, listing *models.Listing) error {
	query := `
		UPDATE listings SET
			title = :title,
			price = :price,
			category = :category,
			condition = :condition,
			description = :description,
			image_urls = :image_urls,
			latitude = :latitude,
			longitude = :longitude,
			location = :location,
			is_active = :is_active
		WHERE id = :id AND seller_id = :seller_id
	`

	if listing.ImageURLs == nil {
		listing.ImageURLs = pq.StringArray{}
	}

	result, err := r.db.NamedExecContext(ctx, query, listing)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении объявления: %w", err)
	}

	return expectAffected(result, fmt.Errorf("%w: ID %d", ErrListingNotFound, listing.ID))
}

func (r *listingRepository) Deactivate(ctx context.Context, listingID int64) error {
	query := `UPDATE listings SET is_active = FALSE WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, listingID)
	if err != nil {
		return fmt.Errorf("ошибка при снятии объявления: %w", err)
	}

	return expectAffected(result, fmt.Errorf("%w: ID %d", ErrListingNotFound, listingID))
}

func (r *listingRepository) Delete(ctx context.Context, listingID int64) error {
	query := `DELETE FROM listings WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, listingID)
	if err != nil {
		return fmt.Errorf("ошибка при удалении объявления: %w", err)
	}

	return expectAffected(result, fmt.Errorf("%w: ID %d", ErrListingNotFound, listingID))
}

func (r *listingRepository) AppendImage(ctx context.Context, listingID int64, imageURL string) error {
	query := `UPDATE listings SET image_urls = array_append(image_urls, $1) WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, imageURL, listingID)
	if err != nil {
		return fmt.Errorf("ошибка при добавлении изображения: %w", err)
	}

	return expectAffected(result, fmt.Errorf("%w: ID %d", ErrListingNotFound, listingID))
}

func (r *listingRepository) RemoveImage(ctx context.Context, listingID int64, imageURL string) error {
	query := `UPDATE listings SET image_urls = array_remove(image_urls, $1) WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, imageURL, listingID)
	if err != nil {
		return fmt.Errorf("ошибка при удалении изображения: %w", err)
	}

	return expectAffected(result, fmt.Errorf("%w: ID %d", ErrListingNotFound, listingID))
}
