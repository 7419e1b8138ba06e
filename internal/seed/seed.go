// Package seed fills an empty database with demo users and listings.
package seed

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"localMarketplace/internal/models"
	"localMarketplace/internal/repository"
)

type File struct {
	Users    []User    `yaml:"users"`
	Listings []Listing `yaml:"listings"`
}

type User struct {
	Username       string  `yaml:"username"`
	Email          string  `yaml:"email"`
	Password       string  `yaml:"password"`
	PhoneNumber    string  `yaml:"phone_number"`
	AverageRating  float64 `yaml:"average_rating"`
	CreatedDaysAgo int     `yaml:"created_days_ago"`
}

type Listing struct {
	SellerEmail string   `yaml:"seller_email"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Price       string   `yaml:"price"`
	Category    string   `yaml:"category"`
	Condition   string   `yaml:"condition"`
	ImageURLs   []string `yaml:"image_urls"`
	Latitude    float64  `yaml:"latitude"`
	Longitude   float64  `yaml:"longitude"`
	Location    string   `yaml:"location"`
}

// LoadFile reads and parses a seed file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла начальных данных %s: %w", path, err)
	}

	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ошибка разбора YAML начальных данных: %w", err)
	}

	if err := f.validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

func (f *File) validate() error {
	emails := make(map[string]bool, len(f.Users))
	for i, u := range f.Users {
		if u.Email == "" || u.Password == "" {
			return fmt.Errorf("пользователь #%d: email и пароль обязательны", i+1)
		}
		emails[strings.ToLower(u.Email)] = true
	}

	for i, l := range f.Listings {
		if l.Title == "" {
			return fmt.Errorf("объявление #%d: нет заголовка", i+1)
		}
		if !emails[strings.ToLower(l.SellerEmail)] {
			return fmt.Errorf("объявление %q: неизвестный продавец %s", l.Title, l.SellerEmail)
		}
		price, err := decimal.NewFromString(l.Price)
		if err != nil {
			return fmt.Errorf("объявление %q: некорректная цена %q: %w", l.Title, l.Price, err)
		}
		if price.IsNegative() {
			return fmt.Errorf("объявление %q: отрицательная цена", l.Title)
		}
	}

	return nil
}

// Run inserts the seed data when the users table is empty and reports
// whether anything was inserted. All rows go in one transaction, so a
// failed run leaves the database empty and the next start retries.
func Run(ctx context.Context, db *sqlx.DB, f *File) (bool, error) {
	seeded := false

	err := repository.WithTx(ctx, db, func(repo *repository.Repository) error {
		stats, err := repo.Stats.Counts(ctx)
		if err != nil {
			return err
		}
		if stats.Users > 0 {
			return nil
		}

		if err := insert(ctx, repo, f); err != nil {
			return err
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if seeded {
		log.Printf("Добавлены начальные данные: %d пользователей, %d объявлений", len(f.Users), len(f.Listings))
	}
	return seeded, nil
}

func insert(ctx context.Context, repo *repository.Repository, f *File) error {
	sellers := make(map[string]int64, len(f.Users))
	now := time.Now()

	for _, u := range f.Users {
		user := &models.User{
			Username:      u.Username,
			Email:         u.Email,
			PhoneNumber:   u.PhoneNumber,
			AverageRating: u.AverageRating,
			CreatedAt:     now.AddDate(0, 0, -u.CreatedDaysAgo),
		}

		if err := repo.User.CreateUser(ctx, user, u.Password); err != nil {
			return fmt.Errorf("ошибка при добавлении пользователя %s: %w", u.Email, err)
		}
		sellers[strings.ToLower(u.Email)] = user.ID
	}

	for _, l := range f.Listings {
		price, err := decimal.NewFromString(l.Price)
		if err != nil {
			return fmt.Errorf("объявление %q: некорректная цена %q: %w", l.Title, l.Price, err)
		}

		sellerID, ok := sellers[strings.ToLower(l.SellerEmail)]
		if !ok {
			return fmt.Errorf("объявление %q: неизвестный продавец %s", l.Title, l.SellerEmail)
		}

		listing := &models.Listing{
			SellerID:    sellerID,
			Title:       l.Title,
			Price:       price,
			Category:    l.Category,
			Condition:   l.Condition,
			Description: l.Description,
			ImageURLs:   l.ImageURLs,
			Latitude:    l.Latitude,
			Longitude:   l.Longitude,
			Location:    l.Location,
		}

		if err := repo.Listing.Create(ctx, listing); err != nil {
			return fmt.Errorf("ошибка при добавлении объявления %q: %w", l.Title, err)
		}
	}

	return nil
}
