// Package database opens the PostgreSQL pool and applies the schema.
package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"localMarketplace/internal/config"
)

const pingTimeout = 3 * time.Second

var errNotConnected = errors.New("подключение к БД не инициализировано")

// Pool bounds the connection pool.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

// DefaultPool fits a single API instance behind one PostgreSQL.
var DefaultPool = Pool{MaxOpen: 25, MaxIdle: 5, MaxLifetime: 30 * time.Minute}

func (p Pool) apply(db *sqlx.DB) {
	db.SetMaxOpenConns(p.MaxOpen)
	db.SetMaxIdleConns(p.MaxIdle)
	db.SetConnMaxLifetime(p.MaxLifetime)
}

type DB struct {
	*sqlx.DB
}

// DSN renders the lib/pq key=value connection string.
func DSN(c config.DB) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DbHOST, c.DbPORT, c.DbUSER, c.DbPASSWORD, c.DbNAME, c.DbSSLMODE)
}

// ConnectDB opens the pool, applies migrations and pings the database.
// A failed migration is only logged.
func ConnectDB(cfg *config.Config) (*DB, error) {
	log.Printf("Подключаемся к БД: host=%s, dbname=%s", cfg.DB.DbHOST, cfg.DB.DbNAME)

	conn, err := sqlx.Connect("postgres", DSN(cfg.DB))
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}
	DefaultPool.apply(conn)

	db := &DB{conn}

	if err := db.RunMigrations(cfg.MigrationsFile); err != nil {
		log.Printf("Внимание: ошибка при применении миграций: %v", err)
	}

	if err := db.HealthCheck(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("проверка БД не пройдена: %w", err)
	}

	log.Println("Успешное подключение к PostgreSQL")
	return db, nil
}

func (db *DB) CloseDB() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

// RunMigrations executes the whole file in one Exec; statements must be idempotent.
func (db *DB) RunMigrations(path string) error {
	schema, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("файл миграций не найден: %s", path)
	case err != nil:
		return fmt.Errorf("ошибка при чтении файла миграций: %w", err)
	}

	log.Printf("Применяем миграции из файла: %s", path)

	if _, err := db.Exec(string(schema)); err != nil {
		return fmt.Errorf("ошибка при выполнении миграций: %w", err)
	}

	log.Println("Миграции успешно применены")
	return nil
}

// HealthCheck pings the pool with a short deadline.
func (db *DB) HealthCheck() error {
	if db == nil || db.DB == nil {
		return errNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	return db.PingContext(ctx)
}
