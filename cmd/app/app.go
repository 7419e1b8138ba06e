package app

import (
	"context"
	"log"
	"time"

	"localMarketplace/internal/config"
	"localMarketplace/internal/database"
	"localMarketplace/internal/events"
	"localMarketplace/internal/repository"
	"localMarketplace/internal/seed"
	"localMarketplace/internal/service"
	"localMarketplace/internal/session"
	"localMarketplace/internal/storage"
)

func App(cfg *config.Config) (*database.DB, *session.RedisStore, *service.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// connection DB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}

	// connection MinIO
	minioClient, err := storage.NewMinIOClient(ctx, cfg.MinIO)
	if err != nil {
		log.Fatalf("Не удалось инициализировать MinIO: %v", err)
	}

	// connection Redis
	sessions, err := session.NewRedisStore(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("Не удалось подключиться к Redis: %v", err)
	}

	bus := events.NewBus()
	for _, topic := range events.AllTopics() {
		bus.Subscribe(topic, events.LogHandler)
	}

	// enabling dependencies
	repo := repository.NewRepository(db.DB)

	services := service.NewService(repo, cfg, minioClient, sessions, bus)

	if cfg.SeedFile != "" {
		seedDatabase(ctx, db, cfg.SeedFile)
	}

	return db, sessions, services
}

// seedDatabase fills an empty database; failures are logged, not fatal.
func seedDatabase(ctx context.Context, db *database.DB, path string) {
	file, err := seed.LoadFile(path)
	if err != nil {
		log.Printf("Внимание: не удалось загрузить seed-файл: %v", err)
		return
	}

	seeded, err := seed.Run(ctx, db.DB, file)
	if err != nil {
		log.Printf("Внимание: ошибка при заполнении БД: %v", err)
		return
	}

	if seeded {
		log.Printf("БД заполнена данными из %s", path)
	}
}
