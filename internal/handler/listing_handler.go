package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"localMarketplace/internal/geo"
	"localMarketplace/internal/models"
	"localMarketplace/internal/service"
)

type ListingRequest struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Category    string           `json:"category" validate:"max=50"`
	Condition   string           `json:"condition" validate:"max=50"`
	Description string           `json:"description" validate:"max=5000"`
	ImageURLs   []string         `json:"imageUrls" validate:"omitempty,dive,url"`
	Latitude    *float64         `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude   *float64         `json:"longitude" validate:"required,min=-180,max=180"`
	Location    string           `json:"location" validate:"max=200"`
	IsActive    *bool            `json:"isActive"`
}

type ImageRequest struct {
	ImageURL string `json:"imageUrl" validate:"required"`
}

func (req ListingRequest) input() service.ListingInput {
	return service.ListingInput{
		Title:       req.Title,
		Price:       *req.Price,
		Category:    req.Category,
		Condition:   req.Condition,
		Description: req.Description,
		ImageURLs:   req.ImageURLs,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		Location:    req.Location,
		IsActive:    req.IsActive,
	}
}

func (h *Handlers) decodeListing(w http.ResponseWriter, r *http.Request) (*ListingRequest, bool) {
	var req ListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return nil, false
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, validationMessage(err), http.StatusBadRequest)
		return nil, false
	}

	return &req, true
}

// GetListings is the filtered browse feed of active listings.
func (h *Handlers) GetListings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.ListingFilter{
		Category:  query.Get("category"),
		Condition: query.Get("condition"),
	}

	var ok bool
	if filter.MinPrice, ok = queryDecimal(w, query.Get("minPrice"), "minPrice"); !ok {
		return
	}
	if filter.MaxPrice, ok = queryDecimal(w, query.Get("maxPrice"), "maxPrice"); !ok {
		return
	}
	if filter.Limit, ok = queryInt(w, query.Get("limit"), "limit"); !ok {
		return
	}
	if filter.Offset, ok = queryInt(w, query.Get("offset"), "offset"); !ok {
		return
	}

	listings, err := h.ListingService.Browse(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, listings, http.StatusOK)
}

// GetNearbyListings searches around ?lat&lon, or around the caller's saved
// location when both are omitted.
func (h *Handlers) GetNearbyListings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	radius := h.Cfg.Search.DefaultRadiusKm
	if raw := query.Get("radius"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			WriteError(w, "Неверный радиус", http.StatusBadRequest)
			return
		}
		radius = value
	}
	if radius > h.Cfg.Search.MaxRadiusKm {
		WriteError(w, "Радиус превышает допустимый максимум", http.StatusBadRequest)
		return
	}

	center, ok := h.searchCenter(w, r)
	if !ok {
		return
	}

	listings, err := h.LocationService.SearchNearby(r.Context(), center, radius)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, listings, http.StatusOK)
}

func (h *Handlers) searchCenter(w http.ResponseWriter, r *http.Request) (geo.Coordinate, bool) {
	query := r.URL.Query()
	rawLat, rawLon := query.Get("lat"), query.Get("lon")

	if rawLat == "" && rawLon == "" {
		userID, ok := UserIDFromContext(r.Context())
		if !ok {
			WriteError(w, "Укажите параметры lat и lon", http.StatusBadRequest)
			return geo.Coordinate{}, false
		}
		center, err := h.LocationService.UserCenter(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return geo.Coordinate{}, false
		}
		return center, true
	}

	lat, latErr := strconv.ParseFloat(rawLat, 64)
	lon, lonErr := strconv.ParseFloat(rawLon, 64)
	center := geo.Coordinate{Latitude: lat, Longitude: lon}
	if latErr != nil || lonErr != nil || !center.Valid() {
		WriteError(w, "Координаты вне допустимого диапазона", http.StatusBadRequest)
		return geo.Coordinate{}, false
	}

	return center, true
}

func (h *Handlers) GetListing(w http.ResponseWriter, r *http.Request) {
	listingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	listing, err := h.ListingService.Get(r.Context(), listingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, listing, http.StatusOK)
}

func (h *Handlers) CreateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, ok := h.decodeListing(w, r)
	if !ok {
		return
	}

	listing, err := h.ListingService.Create(r.Context(), userID, req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, listing, http.StatusCreated)
}

func (h *Handlers) UpdateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	listingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	req, ok := h.decodeListing(w, r)
	if !ok {
		return
	}

	listing, err := h.ListingService.Update(r.Context(), userID, listingID, req.input())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, listing, http.StatusOK)
}

func (h *Handlers) DeactivateListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	listingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ListingService.Deactivate(r.Context(), userID, listingID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "Объявление снято с публикации"}, http.StatusOK)
}

func (h *Handlers) DeleteListing(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	listingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.ListingService.Delete(r.Context(), userID, listingID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "Объявление удалено"}, http.StatusOK)
}

func (h *Handlers) AddListingImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	listingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	upload, ok := h.readImage(w, r, "image")
	if !ok {
		return
	}
	defer upload.file.Close()

	listing, err := h.ListingService.AddImage(r.Context(), userID, listingID, upload.name, upload.file, upload.size)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, listing, http.StatusCreated)
}

func (h *Handlers) DeleteListingImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	listingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req ImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	listing, err := h.ListingService.RemoveImage(r.Context(), userID, listingID, req.ImageURL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, listing, http.StatusOK)
}

func queryDecimal(w http.ResponseWriter, raw, name string) (*decimal.Decimal, bool) {
	if raw == "" {
		return nil, true
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		WriteError(w, "Неверное значение параметра "+name, http.StatusBadRequest)
		return nil, false
	}
	return &value, true
}

func queryInt(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		WriteError(w, "Неверное значение параметра "+name, http.StatusBadRequest)
		return 0, false
	}
	return value, true
}
