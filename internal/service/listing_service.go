package service

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"localMarketplace/internal/events"
	"localMarketplace/internal/models"
	"localMarketplace/internal/repository"
	"localMarketplace/internal/storage"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ListingInput struct {
	Title       string
	Price       decimal.Decimal
	Category    string
	Condition   string
	Description string
	ImageURLs   []string
	Latitude    float64
	Longitude   float64
	Location    string
	// On Update a nil ImageURLs or IsActive keeps the stored value.
	IsActive *bool
}

type ListingService interface {
	Create(ctx context.Context, sellerID int64, input ListingInput) (*models.Listing, error)
	Get(ctx context.Context, listingID int64) (*models.Listing, error)
	Browse(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error)
	BySeller(ctx context.Context, sellerID int64) ([]models.Listing, error)
	Update(ctx context.Context, sellerID, listingID int64, input ListingInput) (*models.Listing, error)
	Deactivate(ctx context.Context, sellerID, listingID int64) error
	Delete(ctx context.Context, sellerID, listingID int64) error
	AddImage(ctx context.Context, sellerID, listingID int64, fileName string, file io.Reader, size int64) (*models.Listing, error)
	RemoveImage(ctx context.Context, sellerID, listingID int64, imageURL string) (*models.Listing, error)
}

type listingService struct {
	listingRepo repository.ListingRepository
	storage     storage.Storage
	events      events.Publisher
}

func NewListingService(listingRepo repository.ListingRepository, storage storage.Storage, publisher events.Publisher) ListingService {
	return &listingService{
		listingRepo: listingRepo,
		storage:     storage,
		events:      publisher,
	}
}

func (s *listingService) Create(ctx context.Context, sellerID int64, input ListingInput) (*models.Listing, error) {
	if input.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	// bucket images are attached through AddImage once the listing exists
	if err := checkImageURLs(s.storage, "", input.ImageURLs...); err != nil {
		return nil, err
	}

	listing := &models.Listing{
		SellerID:    sellerID,
		Title:       input.Title,
		Price:       input.Price,
		Category:    input.Category,
		Condition:   input.Condition,
		Description: input.Description,
		ImageURLs:   input.ImageURLs,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Location:    input.Location,
	}

	err := s.listingRepo.Create(ctx, listing)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ListingCreated, listing)
	return listing, nil
}

func (s *listingService) Get(ctx context.Context, listingID int64) (*models.Listing, error) {
	return s.listingRepo.GetByID(ctx, listingID)
}

func (s *listingService) Browse(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	if filter.MinPrice != nil && filter.MinPrice.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if filter.MaxPrice != nil && filter.MaxPrice.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, fmt.Errorf("%w: минимальная цена больше максимальной", ErrInvalidPrice)
	}

	if filter.Limit <= 0 {
		filter.Limit = DefaultPageSize
	}
	if filter.Limit > MaxPageSize {
		filter.Limit = MaxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	return s.listingRepo.ListFiltered(ctx, filter)
}

func (s *listingService) BySeller(ctx context.Context, sellerID int64) ([]models.Listing, error) {
	return s.listingRepo.ListBySeller(ctx, sellerID)
}

// owned loads the listing and checks that sellerID owns it.
func (s *listingService) owned(ctx context.Context, sellerID, listingID int64) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if listing.SellerID != sellerID {
		return nil, ErrForbidden
	}

	return listing, nil
}

func (s *listingService) Update(ctx context.Context, sellerID, listingID int64, input ListingInput) (*models.Listing, error) {
	if input.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	listing, err := s.owned(ctx, sellerID, listingID)
	if err != nil {
		return nil, err
	}

	ownerPrefix := storage.OwnerPrefix(storage.PrefixListings, listingID)
	var dropped []string
	if input.ImageURLs != nil {
		if err := checkImageURLs(s.storage, ownerPrefix, input.ImageURLs...); err != nil {
			return nil, err
		}
		dropped = missing(listing.ImageURLs, input.ImageURLs)
	}

	listing.Title = input.Title
	listing.Price = input.Price
	listing.Category = input.Category
	listing.Condition = input.Condition
	listing.Description = input.Description
	if input.ImageURLs != nil {
		listing.ImageURLs = input.ImageURLs
	}
	listing.Latitude = input.Latitude
	listing.Longitude = input.Longitude
	listing.Location = input.Location
	if input.IsActive != nil {
		listing.IsActive = *input.IsActive
	}

	err = s.listingRepo.Update(ctx, listing)
	if err != nil {
		return nil, err
	}

	for _, imageURL := range dropped {
		removeStoredImage(ctx, s.storage, imageURL, ownerPrefix)
	}

	s.publish(ctx, events.ListingUpdated, listing)
	return listing, nil
}

func (s *listingService) Deactivate(ctx context.Context, sellerID, listingID int64) error {
	listing, err := s.owned(ctx, sellerID, listingID)
	if err != nil {
		return err
	}

	err = s.listingRepo.Deactivate(ctx, listingID)
	if err != nil {
		return err
	}

	listing.IsActive = false
	s.publish(ctx, events.ListingDeactivated, listing)
	return nil
}

func (s *listingService) Delete(ctx context.Context, sellerID, listingID int64) error {
	listing, err := s.owned(ctx, sellerID, listingID)
	if err != nil {
		return err
	}

	err = s.listingRepo.Delete(ctx, listingID)
	if err != nil {
		return err
	}

	ownerPrefix := storage.OwnerPrefix(storage.PrefixListings, listingID)
	for _, imageURL := range listing.ImageURLs {
		removeStoredImage(ctx, s.storage, imageURL, ownerPrefix)
	}

	s.publish(ctx, events.ListingDeleted, listing)
	return nil
}

func (s *listingService) AddImage(ctx context.Context, sellerID, listingID int64, fileName string, file io.Reader, size int64) (*models.Listing, error) {
	listing, err := s.owned(ctx, sellerID, listingID)
	if err != nil {
		return nil, err
	}

	objectName, imageURL, err := s.storage.UploadImage(ctx, storage.PrefixListings, listingID, fileName, file, size)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки изображения в MinIO: %w", err)
	}

	err = s.listingRepo.AppendImage(ctx, listingID, imageURL)
	if err != nil {
		s.storage.DeleteImage(ctx, objectName)
		return nil, fmt.Errorf("ошибка сохранения изображения в БД: %w", err)
	}

	listing.ImageURLs = append(listing.ImageURLs, imageURL)
	s.publish(ctx, events.ListingUpdated, listing)
	return listing, nil
}

func (s *listingService) RemoveImage(ctx context.Context, sellerID, listingID int64, imageURL string) (*models.Listing, error) {
	listing, err := s.owned(ctx, sellerID, listingID)
	if err != nil {
		return nil, err
	}

	remaining := make([]string, 0, len(listing.ImageURLs))
	found := false
	for _, u := range listing.ImageURLs {
		if u == imageURL {
			found = true
			continue
		}
		remaining = append(remaining, u)
	}
	if !found {
		return nil, ErrImageNotFound
	}

	err = s.listingRepo.RemoveImage(ctx, listingID, imageURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка удаления из БД: %w", err)
	}

	removeStoredImage(ctx, s.storage, imageURL, storage.OwnerPrefix(storage.PrefixListings, listingID))

	listing.ImageURLs = remaining
	s.publish(ctx, events.ListingUpdated, listing)
	return listing, nil
}

// missing returns the entries of before that are absent from after.
func missing(before, after []string) []string {
	kept := make(map[string]bool, len(after))
	for _, u := range after {
		kept[u] = true
	}

	var out []string
	for _, u := range before {
		if !kept[u] {
			out = append(out, u)
		}
	}
	return out
}

func (s *listingService) publish(ctx context.Context, topic string, listing *models.Listing) {
	s.events.Publish(ctx, events.Event{
		Topic:    topic,
		EntityID: listing.ID,
		ActorID:  listing.SellerID,
		Payload:  *listing,
	})
}
