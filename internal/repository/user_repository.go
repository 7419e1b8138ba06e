package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"localMarketplace/internal/geo"
	"localMarketplace/internal/models"
)

const userColumns = `id, username, email, password_hash, phone_number, profile_image_url, average_rating,
		latitude, longitude, location_updated_at, created_at, refresh_token, refresh_token_expiry_time`

// unique_violation
const pqUniqueViolation = "23505"

type userRepository struct {
	db DB
}

func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	// create password hash
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ошибка при хешировании пароля: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO users (username, email, password_hash, phone_number, profile_image_url, average_rating,
			latitude, longitude, location_updated_at, created_at, refresh_token, refresh_token_expiry_time)
		VALUES (:username, :email, :password_hash, :phone_number, :profile_image_url, :average_rating,
			:latitude, :longitude, :location_updated_at, :created_at, :refresh_token, :refresh_token_expiry_time)
		RETURNING id
	`

	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, user)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrEmailTaken, user.Email)
		}
		return fmt.Errorf("ошибка при создании пользователя: %w", err)
	}
	defer rows.Close()

	return scanReturnedID(rows, &user.ID, "пользователя")
}

func (r *userRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: ID %d", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: email %s", ErrUserNotFound, email)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя по email: %w", err)
	}

	return &user, nil
}

func (r *userRepository) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// checking that the password hash is the same
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, ErrInvalidPassword
	}

	return user, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET username = :username, phone_number = :phone_number, profile_image_url = :profile_image_url
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении пользователя: %w", err)
	}

	return expectAffected(result, fmt.Errorf("%w: ID %d", ErrUserNotFound, user.ID))
}

func (r *userRepository) DeleteUser(ctx context.Context, userID int64) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("ошибка при удалении пользователя: %w", err)
	}

	return expectAffected(result, fmt.Errorf("%w: ID %d", ErrUserNotFound, userID))
}

func (r *userRepository) UpdateLocation(ctx context.Context, userID int64, coord geo.Coordinate) error {
	query := `
		UPDATE users
		SET latitude = $1, longitude = $2, location_updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, coord.Latitude, coord.Longitude, userID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении местоположения: %w", err)
	}

	return expectAffected(result, fmt.Errorf("%w: ID %d", ErrUserNotFound, userID))
}

func (r *userRepository) UpdateRefreshToken(ctx context.Context, userID int64, refreshToken string, expiryTime time.Time) error {
	query := `
		UPDATE users
		SET refresh_token = $1, refresh_token_expiry_time = $2
		WHERE id = $3
	`

	_, err := r.db.ExecContext(ctx, query, refreshToken, expiryTime, userID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении refresh token: %w", err)
	}

	return nil
}

func (r *userRepository) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	var user models.User

	query := `SELECT ` + userColumns + ` FROM users
		WHERE refresh_token = $1
		AND refresh_token_expiry_time > CURRENT_TIMESTAMP`

	err := r.db.GetContext(ctx, &user, query, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("ошибка при получении пользователя по refresh token: %w", err)
	}

	return &user, nil
}

func (r *userRepository) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT $1 OFFSET $2`

	users := []models.User{}
	err := r.db.SelectContext(ctx, &users, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка пользователей: %w", err)
	}

	return users, nil
}

func (r *userRepository) ClearRefreshToken(ctx context.Context, userID int64) error {
	query := `UPDATE users SET refresh_token = '', refresh_token_expiry_time = CURRENT_TIMESTAMP WHERE id = $1`

	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("ошибка при сбросе refresh token: %w", err)
	}

	return nil
}

// expectAffected returns notFound when the statement touched no rows.
func expectAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке затронутых строк: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}
