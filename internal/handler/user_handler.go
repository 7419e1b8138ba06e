package handlers

import (
	"encoding/json"
	"net/http"

	"localMarketplace/internal/geo"
	"localMarketplace/internal/service"
)

type UpdateProfileRequest struct {
	Username    *string `json:"username" validate:"omitempty,min=3,max=50"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,max=30"`
}

type LocationRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

// GetUsers pages through the user directory with ?limit&offset.
func (h *Handlers) GetUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, ok := queryInt(w, query.Get("limit"), "limit")
	if !ok {
		return
	}
	offset, ok := queryInt(w, query.Get("offset"), "offset")
	if !ok {
		return
	}

	users, err := h.UserService.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, users, http.StatusOK)
}

// GetUser returns the public profile of any user.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.UserService.GetUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, user, http.StatusOK)
}

func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	// get user by id
	user, err := h.UserService.GetUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, user, http.StatusOK)
}

func (h *Handlers) UpdateCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	user, err := h.UserService.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
		Username:    req.Username,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, user, http.StatusOK)
}

func (h *Handlers) DeleteCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.UserService.DeleteUser(r.Context(), userID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "Пользователь удален"}, http.StatusOK)
}

func (h *Handlers) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	upload, ok := h.readImage(w, r, "image")
	if !ok {
		return
	}
	defer upload.file.Close()

	user, err := h.UserService.UploadAvatar(r.Context(), userID, upload.name, upload.file, upload.size)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, user, http.StatusOK)
}

func (h *Handlers) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req LocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, "Координаты вне допустимого диапазона", http.StatusBadRequest)
		return
	}

	coord := geo.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if err := h.LocationService.UpdateUserLocation(r.Context(), userID, coord); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, coord, http.StatusOK)
}

func (h *Handlers) MyListings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	listings, err := h.ListingService.BySeller(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, listings, http.StatusOK)
}
