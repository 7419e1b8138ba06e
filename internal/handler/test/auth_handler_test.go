package test

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	handlers "localMarketplace/internal/handler"
	"localMarketplace/internal/models"
	"localMarketplace/internal/repository"
	"localMarketplace/internal/service"
)

func TestRegisterHandler_Success(t *testing.T) {
	// Arrange
	th := createTestHandlers()

	input := service.RegisterInput{
		Username:    "johndoe",
		Email:       "john@example.com",
		Password:    "password123",
		PhoneNumber: "+1-555-0100",
	}
	user := &models.User{ID: 1, Username: "johndoe", Email: "john@example.com"}

	th.auth.On("Register", mock.Anything, input).Return(user, nil)
	th.auth.On("Login", mock.Anything, "john@example.com", "password123").
		Return(user, "access-token-123", "refresh-token-123", nil)

	// Act
	rr := th.serve(jsonRequest(http.MethodPost, "/api/auth/register", map[string]string{
		"username":    "johndoe",
		"email":       "john@example.com",
		"password":    "password123",
		"phoneNumber": "+1-555-0100",
	}), 0)

	// Assert
	var response handlers.AuthResponse
	decodeJSON(t, rr, http.StatusCreated, &response)
	assert.Equal(t, "access-token-123", response.AccessToken)
	assert.Equal(t, "refresh-token-123", response.RefreshToken)
	assert.Equal(t, int64(1), response.User.ID)
	assert.NotContains(t, rr.Body.String(), "password")
	th.auth.AssertExpectations(t)
}

func TestRegisterHandler_Validation(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
		err  string
	}{
		{
			name: "неверный email",
			body: map[string]string{"username": "johndoe", "email": "invalid-email", "password": "password123"},
			err:  "Email",
		},
		{
			name: "короткий пароль",
			body: map[string]string{"username": "johndoe", "email": "john@example.com", "password": "123"},
			err:  "Password",
		},
		{
			name: "нет имени",
			body: map[string]string{"email": "john@example.com", "password": "password123"},
			err:  "Username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := createTestHandlers()

			rr := th.serve(jsonRequest(http.MethodPost, "/api/auth/register", tt.body), 0)

			assertJSONError(t, rr, http.StatusBadRequest, tt.err)
			th.auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		})
	}
}

func TestRegisterHandler_InvalidJSON(t *testing.T) {
	th := createTestHandlers()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{invalid"))
	rr := th.serve(req, 0)

	assertJSONError(t, rr, http.StatusBadRequest, "Неверный формат запроса")
}

func TestRegisterHandler_EmailAlreadyExists(t *testing.T) {
	// Arrange
	th := createTestHandlers()

	th.auth.On("Register", mock.Anything, mock.AnythingOfType("service.RegisterInput")).
		Return(nil, service.ErrEmailTaken)

	// Act
	rr := th.serve(jsonRequest(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "johndoe",
		"email":    "existing@example.com",
		"password": "password123",
	}), 0)

	// Assert
	assertJSONError(t, rr, http.StatusConflict, "Email уже существует")
	th.auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginHandler(t *testing.T) {
	t.Run("успешный вход", func(t *testing.T) {
		th := createTestHandlers()
		user := &models.User{ID: 2, Email: "jane@example.com"}
		th.auth.On("Login", mock.Anything, "jane@example.com", "password123").
			Return(user, "access", "refresh", nil)

		rr := th.serve(jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "jane@example.com",
			"password": "password123",
		}), 0)

		var response handlers.AuthResponse
		decodeJSON(t, rr, http.StatusOK, &response)
		assert.Equal(t, "access", response.AccessToken)
		assert.Equal(t, "refresh", response.RefreshToken)
	})

	t.Run("неверный пароль", func(t *testing.T) {
		th := createTestHandlers()
		th.auth.On("Login", mock.Anything, "jane@example.com", "wrong").
			Return(nil, "", "", service.ErrInvalidCredentials)

		rr := th.serve(jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "jane@example.com",
			"password": "wrong",
		}), 0)

		assertJSONError(t, rr, http.StatusUnauthorized, "Неверный email или пароль")
	})

	t.Run("пустой пароль", func(t *testing.T) {
		th := createTestHandlers()

		rr := th.serve(jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{
			"email": "jane@example.com",
		}), 0)

		assertJSONError(t, rr, http.StatusBadRequest, "Password")
	})

	t.Run("внутренняя ошибка", func(t *testing.T) {
		th := createTestHandlers()
		th.auth.On("Login", mock.Anything, "jane@example.com", "password123").
			Return(nil, "", "", errors.New("connection refused"))

		rr := th.serve(jsonRequest(http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "jane@example.com",
			"password": "password123",
		}), 0)

		assertJSONError(t, rr, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		assert.NotContains(t, rr.Body.String(), "connection refused")
	})
}

func TestRefreshTokenHandler(t *testing.T) {
	t.Run("успешное обновление", func(t *testing.T) {
		th := createTestHandlers()
		user := &models.User{ID: 1}
		th.auth.On("RefreshTokens", mock.Anything, "old-refresh").
			Return(user, "new-access", "new-refresh", nil)

		rr := th.serve(jsonRequest(http.MethodPost, "/api/auth/refresh-token", map[string]string{
			"refreshToken": "old-refresh",
		}), 0)

		var response handlers.AuthResponse
		decodeJSON(t, rr, http.StatusOK, &response)
		assert.Equal(t, "new-access", response.AccessToken)
		assert.Equal(t, "new-refresh", response.RefreshToken)
	})

	t.Run("нет токена", func(t *testing.T) {
		th := createTestHandlers()

		rr := th.serve(jsonRequest(http.MethodPost, "/api/auth/refresh-token", map[string]string{}), 0)

		assertJSONError(t, rr, http.StatusBadRequest, "Отсутствует refreshToken")
	})

	t.Run("просроченный токен", func(t *testing.T) {
		th := createTestHandlers()
		th.auth.On("RefreshTokens", mock.Anything, "expired").
			Return(nil, "", "", repository.ErrInvalidRefreshToken)

		rr := th.serve(jsonRequest(http.MethodPost, "/api/auth/refresh-token", map[string]string{
			"refreshToken": "expired",
		}), 0)

		assertJSONError(t, rr, http.StatusUnauthorized, "Токен истек или недействителен")
	})
}

func TestLogoutHandler(t *testing.T) {
	t.Run("успешный выход", func(t *testing.T) {
		th := createTestHandlers()
		th.auth.On("Logout", mock.Anything, mock.MatchedBy(func(c *service.Claims) bool {
			return c.UserID == 5
		})).Return(nil)

		rr := th.serve(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), 5)

		var response handlers.MessageResponse
		decodeJSON(t, rr, http.StatusOK, &response)
		th.auth.AssertExpectations(t)
	})

	t.Run("без аутентификации", func(t *testing.T) {
		th := createTestHandlers()

		rr := th.serve(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), 0)

		assertJSONError(t, rr, http.StatusUnauthorized, "Требуется аутентификация")
		th.auth.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
	})
}
