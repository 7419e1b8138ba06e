package test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"localMarketplace/internal/geo"
	"localMarketplace/internal/models"
	"localMarketplace/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input service.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.User, string, string, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*models.User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockAuthService) RefreshTokens(ctx context.Context, refreshToken string) (*models.User, string, string, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*models.User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockAuthService) Logout(ctx context.Context, claims *service.Claims) error {
	args := m.Called(ctx, claims)
	return args.Error(0)
}

func (m *MockAuthService) ValidateToken(ctx context.Context, tokenString string) (*service.Claims, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID int64, input service.UpdateProfileInput) (*models.User, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UploadAvatar(ctx context.Context, userID int64, fileName string, file io.Reader, size int64) (*models.User, error) {
	args := m.Called(ctx, userID, fileName, file, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Create(ctx context.Context, sellerID int64, input service.ListingInput) (*models.Listing, error) {
	args := m.Called(ctx, sellerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Get(ctx context.Context, listingID int64) (*models.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Browse(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingService) BySeller(ctx context.Context, sellerID int64) ([]models.Listing, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingService) Update(ctx context.Context, sellerID, listingID int64, input service.ListingInput) (*models.Listing, error) {
	args := m.Called(ctx, sellerID, listingID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) Deactivate(ctx context.Context, sellerID, listingID int64) error {
	args := m.Called(ctx, sellerID, listingID)
	return args.Error(0)
}

func (m *MockListingService) Delete(ctx context.Context, sellerID, listingID int64) error {
	args := m.Called(ctx, sellerID, listingID)
	return args.Error(0)
}

func (m *MockListingService) AddImage(ctx context.Context, sellerID, listingID int64, fileName string, file io.Reader, size int64) (*models.Listing, error) {
	args := m.Called(ctx, sellerID, listingID, fileName, file, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) RemoveImage(ctx context.Context, sellerID, listingID int64, imageURL string) (*models.Listing, error) {
	args := m.Called(ctx, sellerID, listingID, imageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) Send(ctx context.Context, senderID int64, input service.SendMessageInput) (*models.Message, error) {
	args := m.Called(ctx, senderID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockMessageService) Conversation(ctx context.Context, userID, otherUserID int64) ([]models.Message, error) {
	args := m.Called(ctx, userID, otherUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageService) ForListing(ctx context.Context, userID, listingID int64) ([]models.Message, error) {
	args := m.Called(ctx, userID, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockMessageService) MarkRead(ctx context.Context, userID, messageID int64) error {
	args := m.Called(ctx, userID, messageID)
	return args.Error(0)
}

func (m *MockMessageService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockMessageService) UploadAttachment(ctx context.Context, userID int64, fileName string, file io.Reader, size int64) (string, error) {
	args := m.Called(ctx, userID, fileName, file, size)
	return args.String(0), args.Error(1)
}

func (m *MockMessageService) Delete(ctx context.Context, userID, messageID int64) error {
	args := m.Called(ctx, userID, messageID)
	return args.Error(0)
}

type MockLocationService struct {
	mock.Mock
}

func (m *MockLocationService) SearchNearby(ctx context.Context, center geo.Coordinate, radiusKm float64) ([]models.NearbyListing, error) {
	args := m.Called(ctx, center, radiusKm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NearbyListing), args.Error(1)
}

func (m *MockLocationService) UpdateUserLocation(ctx context.Context, userID int64, coord geo.Coordinate) error {
	args := m.Called(ctx, userID, coord)
	return args.Error(0)
}

func (m *MockLocationService) UserCenter(ctx context.Context, userID int64) (geo.Coordinate, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(geo.Coordinate), args.Error(1)
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Counts(ctx context.Context) (*models.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) HealthCheck() error {
	args := m.Called()
	return args.Error(0)
}
