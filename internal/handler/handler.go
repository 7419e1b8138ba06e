package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"localMarketplace/internal/config"
	"localMarketplace/internal/service"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	HealthCheck() error
}

type Handlers struct {
	AuthService     service.AuthService
	UserService     service.UserService
	ListingService  service.ListingService
	MessageService  service.MessageService
	LocationService service.LocationService
	StatsService    service.StatsService
	Health          HealthChecker
	Cfg             *config.Config
	Validate        *validator.Validate
}

func NewHandlers(service *service.Service, config *config.Config, health HealthChecker) *Handlers {
	return &Handlers{
		AuthService:     service.Auth,
		UserService:     service.User,
		ListingService:  service.Listing,
		MessageService:  service.Message,
		LocationService: service.Location,
		StatsService:    service.Stats,
		Health:          health,
		Cfg:             config,
		Validate:        validator.New(),
	}
}

type contextKey string

const claimsKey contextKey = "claims"

// WithClaims stores the authenticated caller in the request context.
func WithClaims(ctx context.Context, claims *service.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*service.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*service.Claims)
	return claims, ok && claims != nil
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}

// currentUser writes 401 and returns false when the request is anonymous.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, "Требуется аутентификация", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}

// pathID reads a numeric path variable and writes 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, "Неверный идентификатор в URL", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
