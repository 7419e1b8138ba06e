package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"localMarketplace/internal/repository"
	"localMarketplace/internal/service"
	"localMarketplace/internal/storage"
)

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// WriteError - универсальная функция для отправки ошибок
func WriteError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// writeSuccess - функция для успешных ответов
func writeSuccess(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeServiceError maps domain errors to HTTP statuses; anything unknown is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		WriteError(w, "Пользователь не найден", http.StatusNotFound)
	case errors.Is(err, repository.ErrListingNotFound):
		WriteError(w, "Объявление не найдено", http.StatusNotFound)
	case errors.Is(err, repository.ErrMessageNotFound):
		WriteError(w, "Сообщение не найдено", http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		WriteError(w, "Доступ запрещен", http.StatusForbidden)
	case errors.Is(err, service.ErrEmailTaken):
		WriteError(w, "Email уже существует", http.StatusConflict)
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteError(w, "Неверный email или пароль", http.StatusUnauthorized)
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, repository.ErrInvalidRefreshToken):
		WriteError(w, "Токен истек или недействителен", http.StatusUnauthorized)
	case errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrLocationUnknown),
		errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrImageNotFound),
		errors.Is(err, service.ErrForeignImage),
		errors.Is(err, storage.ErrUnsupportedType):
		WriteError(w, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("Внутренняя ошибка: %v", err)
		WriteError(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
	}
}

// validationMessage turns the first validator error into a short Russian message.
func validationMessage(err error) string {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		return "Неверное значение поля " + fieldErrors[0].Field()
	}
	return "Неверные данные"
}
