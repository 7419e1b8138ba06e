package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"localMarketplace/internal/geo"
	"localMarketplace/internal/models"
)

var (
	ErrUserNotFound        = errors.New("пользователь не найден")
	ErrEmailTaken          = errors.New("пользователь с таким email уже существует")
	ErrInvalidPassword     = errors.New("неверный пароль")
	ErrInvalidRefreshToken = errors.New("недействительный или просроченный refresh token")
	ErrListingNotFound     = errors.New("объявление не найдено")
	ErrMessageNotFound     = errors.New("сообщение не найдено")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID int64) error
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
	UpdateLocation(ctx context.Context, userID int64, coord geo.Coordinate) error
	UpdateRefreshToken(ctx context.Context, userID int64, refreshToken string, expiryTime time.Time) error
	GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error)
	ClearRefreshToken(ctx context.Context, userID int64) error
}

type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, listingID int64) (*models.Listing, error)
	ListActive(ctx context.Context) ([]models.Listing, error)
	ListFiltered(ctx context.Context, filter models.ListingFilter) ([]models.Listing, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	Deactivate(ctx context.Context, listingID int64) error
	Delete(ctx context.Context, listingID int64) error
	AppendImage(ctx context.Context, listingID int64, imageURL string) error
	RemoveImage(ctx context.Context, listingID int64, imageURL string) error
}

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, messageID int64) (*models.Message, error)
	GetConversation(ctx context.Context, userID1, userID2 int64) ([]models.Message, error)
	GetByListing(ctx context.Context, listingID int64) ([]models.Message, error)
	MarkRead(ctx context.Context, messageID int64) error
	CountUnread(ctx context.Context, receiverID int64) (int, error)
	Delete(ctx context.Context, messageID int64) error
}

type StatsRepository interface {
	Counts(ctx context.Context) (*models.Stats, error)
}

type Repository struct {
	User    UserRepository
	Listing ListingRepository
	Message MessageRepository
	Stats   StatsRepository
}

// DB is the query surface shared by *sqlx.DB and *sqlx.Tx.
type DB interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

func NewRepository(db DB) *Repository {
	return &Repository{
		User:    NewUserRepository(db),
		Listing: NewListingRepository(db),
		Message: NewMessageRepository(db),
		Stats:   NewStatsRepository(db),
	}
}

var errNoReturnedID = errors.New("база не вернула ID")

// scanReturnedID reads the id produced by an INSERT ... RETURNING id.
func scanReturnedID(rows *sqlx.Rows, id *int64, what string) error {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("ошибка при чтении ID %s: %w", what, err)
		}
		return fmt.Errorf("ошибка при чтении ID %s: %w", what, errNoReturnedID)
	}

	if err := rows.Scan(id); err != nil {
		return fmt.Errorf("ошибка при чтении ID %s: %w", what, err)
	}
	return rows.Err()
}

// WithTx runs fn against repositories bound to a single transaction.
// The transaction is committed when fn returns nil and rolled back otherwise.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(repo *Repository) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}

	if err := fn(NewRepository(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (откат транзакции: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}
	return nil
}

// Store is the listing source and location sink of the nearby search.
type Store struct {
	Listings ListingRepository
	Users    UserRepository
}

func NewStore(repo *Repository) *Store {
	return &Store{Listings: repo.Listing, Users: repo.User}
}

func (s *Store) ListActive(ctx context.Context) ([]models.Listing, error) {
	return s.Listings.ListActive(ctx)
}

func (s *Store) SaveUserLocation(ctx context.Context, userID int64, coord geo.Coordinate) error {
	return s.Users.UpdateLocation(ctx, userID, coord)
}
