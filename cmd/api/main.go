package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"localMarketplace/cmd/app"
	"localMarketplace/internal/config"
	handlers "localMarketplace/internal/handler"
	"localMarketplace/internal/middleware"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()

	if cfg.JWTSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY не установлен в .env файле")
	}

	db, sessions, services := app.App(cfg)
	defer db.CloseDB()
	defer sessions.Close()

	handler := handlers.NewHandlers(services, cfg, db)

	// setting up routes
	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	handlerChain := middleware.Chain(
		router,
		middleware.AuthMiddleware(services.Auth),
		middleware.CORSMiddleware,
		middleware.LoggingMiddleware,
	)

	// Starting the server
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	fmt.Printf("Сервер запущен на %s\n", addr)
	fmt.Printf("База данных: %s\n", cfg.DB.DbNAME)
	fmt.Printf("Адрес: http://localhost%s/\n", addr)

	if err := http.ListenAndServe(addr, handlerChain); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
