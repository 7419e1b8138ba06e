package service

import (
	"context"

	"localMarketplace/internal/events"
	"localMarketplace/internal/geo"
	"localMarketplace/internal/models"
	"localMarketplace/internal/repository"
)

// ListingStore supplies the candidates of a nearby search and records
// where users are.
type ListingStore interface {
	// ListActive returns active listings, newest first.
	ListActive(ctx context.Context) ([]models.Listing, error)
	SaveUserLocation(ctx context.Context, userID int64, coord geo.Coordinate) error
}

type LocationService interface {
	SearchNearby(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]models.NearbyListing, error)
	UpdateUserLocation(ctx context.Context, userID int64, coord geo.Coordinate) error
	UserCenter(ctx context.Context, userID int64) (geo.Coordinate, error)
}

type locationService struct {
	store    ListingStore
	userRepo repository.UserRepository
	events   events.Publisher
}

func NewLocationService(store ListingStore, userRepo repository.UserRepository, publisher events.Publisher) LocationService {
	return &locationService{
		store:    store,
		userRepo: userRepo,
		events:   publisher,
	}
}

// SearchNearby keeps the store's order and tags each hit with its distance.
func (s *locationService) SearchNearby(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]models.NearbyListing, error) {
	candidates, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	found := geo.FindWithinRadius(center, radiusKm, candidates)

	result := make([]models.NearbyListing, 0, len(found))
	for _, listing := range found {
		result = append(result, models.NearbyListing{
			Listing:    listing,
			DistanceKm: geo.DistanceKm(center, listing.Coordinate()),
		})
	}

	return result, nil
}

func (s *locationService) UpdateUserLocation(ctx context.Context, userID int64, coord geo.Coordinate) error {
	err := s.store.SaveUserLocation(ctx, userID, coord)
	if err != nil {
		return err
	}

	s.events.Publish(ctx, events.Event{
		Topic:    events.UserLocationUpdated,
		EntityID: userID,
		ActorID:  userID,
		Payload:  coord,
	})

	return nil
}

func (s *locationService) UserCenter(ctx context.Context, userID int64) (geo.Coordinate, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return geo.Coordinate{}, err
	}

	if !user.HasLocation() {
		return geo.Coordinate{}, ErrLocationUnknown
	}

	return user.Coordinate(), nil
}
