package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"localMarketplace/internal/config"
	"localMarketplace/internal/models"
	"localMarketplace/internal/repository"
	"localMarketplace/internal/session"
)

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	PhoneNumber string
}

// Claims is the payload of an access token; ID (jti) is the revocation key.
type Claims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, string, string, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*models.User, string, string, error)
	Logout(ctx context.Context, claims *Claims) error
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

type authService struct {
	userRepo repository.UserRepository
	sessions session.Store
	cfg      *config.Config
}

func NewAuthService(userRepo repository.UserRepository, sessions session.Store, cfg *config.Config) AuthService {
	return &authService{
		userRepo: userRepo,
		sessions: sessions,
		cfg:      cfg,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	existingUser, err := s.userRepo.GetUserByEmail(ctx, input.Email)
	if err == nil && existingUser != nil {
		return nil, fmt.Errorf("%w: %s", ErrEmailTaken, input.Email)
	}
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	refreshToken, refreshTokenExpiry := s.generateRefreshToken()

	user := &models.User{
		Username:               input.Username,
		Email:                  input.Email,
		PhoneNumber:            input.PhoneNumber,
		RefreshToken:           refreshToken,
		RefreshTokenExpiryTime: refreshTokenExpiry,
	}

	err = s.userRepo.CreateUser(ctx, user, input.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, string, error) {
	user, err := s.userRepo.VerifyPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) || errors.Is(err, repository.ErrInvalidPassword) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", fmt.Errorf("ошибка аутентификации: %w", err)
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*models.User, string, string, error) {
	user, err := s.userRepo.GetUserByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, "", "", fmt.Errorf("недействительный refresh token: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// issueTokens signs a new access token and rotates the stored refresh token.
func (s *authService) issueTokens(ctx context.Context, user *models.User) (*models.User, string, string, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", "", fmt.Errorf("ошибка генерации access token: %w", err)
	}

	refreshToken, refreshTokenExpiry := s.generateRefreshToken()

	err = s.userRepo.UpdateRefreshToken(ctx, user.ID, refreshToken, refreshTokenExpiry)
	if err != nil {
		return nil, "", "", fmt.Errorf("ошибка сохранения refresh token: %w", err)
	}

	user.RefreshToken = refreshToken
	user.RefreshTokenExpiryTime = refreshTokenExpiry

	return user, accessToken, refreshToken, nil
}

func (s *authService) Logout(ctx context.Context, claims *Claims) error {
	if claims.ExpiresAt != nil {
		if err := s.sessions.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			return err
		}
	}

	return s.userRepo.ClearRefreshToken(ctx, claims.UserID)
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenDuration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecretKey))
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	return tokenString, nil
}

func (s *authService) generateRefreshToken() (string, time.Time) {
	return uuid.New().String(), time.Now().Add(s.cfg.RefreshTokenDuration)
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	revoked, err := s.sessions.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: токен отозван", ErrInvalidToken)
	}

	return claims, nil
}
