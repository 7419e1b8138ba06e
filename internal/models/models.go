package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"localMarketplace/internal/geo"
)

type User struct {
	ID                     int64      `json:"id" db:"id"`
	Username               string     `json:"username" db:"username"`
	Email                  string     `json:"email" db:"email"`
	PasswordHash           string     `json:"-" db:"password_hash"`
	PhoneNumber            string     `json:"phoneNumber" db:"phone_number"`
	ProfileImageURL        string     `json:"profileImageUrl" db:"profile_image_url"`
	AverageRating          float64    `json:"averageRating" db:"average_rating"`
	Latitude               float64    `json:"latitude" db:"latitude"`
	Longitude              float64    `json:"longitude" db:"longitude"`
	LocationUpdatedAt      *time.Time `json:"locationUpdatedAt,omitempty" db:"location_updated_at"`
	CreatedAt              time.Time  `json:"createdAt" db:"created_at"`
	RefreshToken           string     `json:"-" db:"refresh_token"`
	RefreshTokenExpiryTime time.Time  `json:"-" db:"refresh_token_expiry_time"`
}

// HasLocation is false until the user has reported a position.
func (u *User) HasLocation() bool {
	return u.LocationUpdatedAt != nil
}

func (u *User) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: u.Latitude, Longitude: u.Longitude}
}

type Listing struct {
	ID          int64           `json:"id" db:"id"`
	SellerID    int64           `json:"sellerId" db:"seller_id"`
	Title       string          `json:"title" db:"title"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Category    string          `json:"category" db:"category"`
	Condition   string          `json:"condition" db:"condition"`
	Description string          `json:"description" db:"description"`
	ImageURLs   pq.StringArray  `json:"imageUrls" db:"image_urls"`
	Latitude    float64         `json:"latitude" db:"latitude"`
	Longitude   float64         `json:"longitude" db:"longitude"`
	Location    string          `json:"location" db:"location"`
	ListingDate time.Time       `json:"listingDate" db:"listing_date"`
	IsActive    bool            `json:"isActive" db:"is_active"`
}

func (l Listing) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

// NearbyListing is a search hit annotated with its distance from the center.
type NearbyListing struct {
	Listing
	DistanceKm float64 `json:"distanceKm"`
}

type ListingFilter struct {
	Category  string
	Condition string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Limit     int
	Offset    int
}

type Message struct {
	ID            int64     `json:"id" db:"id"`
	SenderID      int64     `json:"senderId" db:"sender_id"`
	ReceiverID    int64     `json:"receiverId" db:"receiver_id"`
	ListingID     *int64    `json:"listingId,omitempty" db:"listing_id"`
	Content       string    `json:"content" db:"content"`
	AttachmentURL *string   `json:"attachmentUrl,omitempty" db:"attachment_url"`
	SentDate      time.Time `json:"sentDate" db:"sent_date"`
	IsRead        bool      `json:"isRead" db:"is_read"`
}

type Stats struct {
	Users          int `json:"users" db:"users"`
	ActiveListings int `json:"activeListings" db:"active_listings"`
	Messages       int `json:"messages" db:"messages"`
}
