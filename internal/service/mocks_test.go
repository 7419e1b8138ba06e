package service

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"localMarketplace/internal/events"
	"localMarketplace/internal/geo"
	"localMarketplace/internal/models"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	args := m.Called(ctx, user, password)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateLocation(ctx context.Context, userID int64, coord geo.Coordinate) error {
	args := m.Called(ctx, userID, coord)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID int64, refreshToken string, expiryTime time.Time) error {
	args := m.Called(ctx, userID, refreshToken, expiryTime)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) ClearRefreshToken(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) GetByID(ctx context.Context, listingID int64) (*models.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingRepository) ListActive(ctx context.Context) ([]models.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingRepository) ListFiltered(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingRepository) ListBySeller(ctx context.Context, sellerID int64) ([]models.Listing, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) Deactivate(ctx context.Context, listingID int64) error {
	args := m.Called(ctx, listingID)
	return args.Error(0)
}

func (m *MockListingRepository) Delete(ctx context.Context, listingID int64) error {
	args := m.Called(ctx, listingID)
	return args.Error(0)
}

func (m *MockListingRepository) AppendImage(ctx context.Context, listingID int64, imageURL string) error {
	args := m.Called(ctx, listingID, imageURL)
	return args.Error(0)
}

func (m *MockListingRepository) RemoveImage(ctx context.Context, listingID int64, imageURL string) error {
	args := m.Called(ctx, listingID, imageURL)
	return args.Error(0)
}

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockMessageRepository) GetByID(ctx context.Context, messageID int64) (*models.Message, error) {
	args := m.Called(ctx, messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageRepository) GetConversation(ctx context.Context, userID1, userID2 int64) ([]models.Message, error) {
	args := m.Called(ctx, userID1, userID2)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageRepository) GetByListing(ctx context.Context, listingID int64) ([]models.Message, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageRepository) MarkRead(ctx context.Context, messageID int64) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

func (m *MockMessageRepository) CountUnread(ctx context.Context, receiverID int64) (int, error) {
	args := m.Called(ctx, receiverID)
	return args.Int(0), args.Error(1)
}

func (m *MockMessageRepository) Delete(ctx context.Context, messageID int64) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Counts(ctx context.Context) (*models.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) UploadImage(ctx context.Context, prefix string, ownerID int64, fileName string, file io.Reader, size int64) (string, string, error) {
	args := m.Called(ctx, prefix, ownerID, fileName, file, size)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockStorage) DeleteImage(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}

func (m *MockStorage) ObjectNameFromURL(imageURL string) (string, error) {
	args := m.Called(imageURL)
	return args.String(0), args.Error(1)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockSessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionStore) Close() error {
	return m.Called().Error(0)
}

type MockListingStore struct {
	mock.Mock
}

func (m *MockListingStore) ListActive(ctx context.Context) ([]models.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingStore) SaveUserLocation(ctx context.Context, userID int64, coord geo.Coordinate) error {
	args := m.Called(ctx, userID, coord)
	return args.Error(0)
}

// recorder collects published events.
type recorder struct {
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, event events.Event) {
	r.events = append(r.events, event)
}

func (r *recorder) topics() []string {
	topics := make([]string, 0, len(r.events))
	for _, e := range r.events {
		topics = append(topics, e.Topic)
	}
	return topics
}
