package middleware

import (
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	handlers "localMarketplace/internal/handler"
	"localMarketplace/internal/service"
)

type Middleware func(http.Handler) http.Handler

var publicPaths = map[string]bool{
	"/":                       true,
	"/health":                 true,
	"/stats":                  true,
	"/api/auth/register":      true,
	"/api/auth/login":         true,
	"/api/auth/refresh-token": true,
}

// Anonymous GETs are allowed here; a token, if sent, is still checked.
var publicReads = []*regexp.Regexp{
	regexp.MustCompile(`^/api/listings$`),
	regexp.MustCompile(`^/api/listings/nearby$`),
	regexp.MustCompile(`^/api/listings/\d+$`),
	regexp.MustCompile(`^/api/users/\d+$`),
}

func isPublicRead(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	for _, re := range publicReads {
		if re.MatchString(r.URL.Path) {
			return true
		}
	}
	return false
}

// AuthMiddleware verifies the bearer token and adds the caller's claims to the context
func AuthMiddleware(authService service.AuthService) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skipping public endpoints
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			// Extracting the token from the header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if isPublicRead(r) {
					next.ServeHTTP(w, r)
					return
				}
				handlers.WriteError(w, "Требуется авторизация", http.StatusUnauthorized)
				return
			}

			// Checking the "Bearer <token>" format
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				handlers.WriteError(w, "Неверный формат токена", http.StatusUnauthorized)
				return
			}

			claims, err := authService.ValidateToken(r.Context(), parts[1])
			if err != nil {
				handlers.WriteError(w, "Недействительный токен", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(handlers.WithClaims(r.Context(), claims)))
		})
	}
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		log.Printf("Method: %s, URL: %s, Status: %d, Duration: %s",
			r.Method, r.URL.RequestURI(), rec.status, time.Since(start))
	})
}

// Chain wraps h so that the last middleware runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}
