package service

import (
	"errors"

	"localMarketplace/internal/config"
	"localMarketplace/internal/events"
	"localMarketplace/internal/repository"
	"localMarketplace/internal/session"
	"localMarketplace/internal/storage"
)

var (
	ErrForbidden          = errors.New("недостаточно прав для этого действия")
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrInvalidToken       = errors.New("недействительный токен")
	ErrInvalidPrice       = errors.New("некорректная цена")
	ErrLocationUnknown    = errors.New("местоположение пользователя неизвестно")
	ErrEmptyMessage       = errors.New("сообщение должно содержать текст или вложение")
	ErrImageNotFound      = errors.New("изображение не найдено в объявлении")
	ErrForeignImage       = errors.New("изображение принадлежит другому владельцу")

	// ErrEmailTaken is the repository error, re-exported for handlers.
	ErrEmailTaken = repository.ErrEmailTaken
)

type Service struct {
	Auth     AuthService
	User     UserService
	Listing  ListingService
	Message  MessageService
	Location LocationService
	Stats    StatsService
}

func NewService(rep *repository.Repository, cfg *config.Config, storage storage.Storage, sessions session.Store, publisher events.Publisher) *Service {
	return &Service{
		Auth:     NewAuthService(rep.User, sessions, cfg),
		User:     NewUserService(rep.User, rep.Listing, storage),
		Listing:  NewListingService(rep.Listing, storage, publisher),
		Message:  NewMessageService(rep.Message, rep.User, rep.Listing, storage, publisher),
		Location: NewLocationService(repository.NewStore(rep), rep.User, publisher),
		Stats:    NewStatsService(rep.Stats),
	}
}
