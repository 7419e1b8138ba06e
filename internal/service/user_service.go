package service

import (
	"context"
	"fmt"
	"io"

	"localMarketplace/internal/models"
	"localMarketplace/internal/repository"
	"localMarketplace/internal/storage"
)

// UpdateProfileInput holds the profile fields to change; nil keeps the stored value.
type UpdateProfileInput struct {
	Username    *string
	PhoneNumber *string
}

type UserService interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, error)
	UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*models.User, error)
	UploadAvatar(ctx context.Context, userID int64, fileName string, file io.Reader, size int64) (*models.User, error)
	DeleteUser(ctx context.Context, userID int64) error
}

type userService struct {
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	storage     storage.Storage
}

func NewUserService(userRepo repository.UserRepository, listingRepo repository.ListingRepository, storage storage.Storage) UserService {
	return &userService{
		userRepo:    userRepo,
		listingRepo: listingRepo,
		storage:     storage,
	}
}

func (s *userService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

// ListUsers pages through all accounts ordered by id.
func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	return s.userRepo.ListUsers(ctx, limit, offset)
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) (*models.User, error) {
	// get user by id
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		user.Username = *input.Username
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = *input.PhoneNumber
	}

	// update user
	err = s.userRepo.UpdateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID int64, fileName string, file io.Reader, size int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	objectName, imageURL, err := s.storage.UploadImage(ctx, storage.PrefixAvatars, userID, fileName, file, size)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки аватара: %w", err)
	}

	previous := user.ProfileImageURL
	user.ProfileImageURL = imageURL

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		s.storage.DeleteImage(ctx, objectName)
		return nil, fmt.Errorf("ошибка сохранения аватара: %w", err)
	}

	if previous != "" {
		removeStoredImage(ctx, s.storage, previous, storage.OwnerPrefix(storage.PrefixAvatars, userID))
	}

	return user, nil
}

// DeleteUser removes the account; listings go with it through the foreign key,
// so their images are collected first and removed once the row is gone.
func (s *userService) DeleteUser(ctx context.Context, userID int64) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	listings, err := s.listingRepo.ListBySeller(ctx, userID)
	if err != nil {
		return err
	}

	err = s.userRepo.DeleteUser(ctx, userID)
	if err != nil {
		return err
	}

	if user.ProfileImageURL != "" {
		removeStoredImage(ctx, s.storage, user.ProfileImageURL, storage.OwnerPrefix(storage.PrefixAvatars, userID))
	}

	for _, listing := range listings {
		ownerPrefix := storage.OwnerPrefix(storage.PrefixListings, listing.ID)
		for _, imageURL := range listing.ImageURLs {
			removeStoredImage(ctx, s.storage, imageURL, ownerPrefix)
		}
	}

	return nil
}
