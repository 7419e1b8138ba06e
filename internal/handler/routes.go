package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts every endpoint on r. Access rules live in the auth
// middleware, not here.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", HomeHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/stats", h.StatsHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// auth
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh-token", h.RefreshToken).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.Logout).Methods(http.MethodPost)

	// users
	api.HandleFunc("/me", h.GetCurrentUser).Methods(http.MethodGet)
	api.HandleFunc("/me", h.UpdateCurrentUser).Methods(http.MethodPut)
	api.HandleFunc("/me", h.DeleteCurrentUser).Methods(http.MethodDelete)
	api.HandleFunc("/me/avatar", h.UploadAvatar).Methods(http.MethodPost)
	api.HandleFunc("/me/location", h.UpdateLocation).Methods(http.MethodPut)
	api.HandleFunc("/me/listings", h.MyListings).Methods(http.MethodGet)
	api.HandleFunc("/users", h.GetUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", h.GetUser).Methods(http.MethodGet)

	// listings; /nearby must precede /{id}
	api.HandleFunc("/listings", h.GetListings).Methods(http.MethodGet)
	api.HandleFunc("/listings", h.CreateListing).Methods(http.MethodPost)
	api.HandleFunc("/listings/nearby", h.GetNearbyListings).Methods(http.MethodGet)
	api.HandleFunc("/listings/{id:[0-9]+}", h.GetListing).Methods(http.MethodGet)
	api.HandleFunc("/listings/{id:[0-9]+}", h.UpdateListing).Methods(http.MethodPut)
	api.HandleFunc("/listings/{id:[0-9]+}", h.DeleteListing).Methods(http.MethodDelete)
	api.HandleFunc("/listings/{id:[0-9]+}/deactivate", h.DeactivateListing).Methods(http.MethodPatch)
	api.HandleFunc("/listings/{id:[0-9]+}/images", h.AddListingImage).Methods(http.MethodPost)
	api.HandleFunc("/listings/{id:[0-9]+}/images", h.DeleteListingImage).Methods(http.MethodDelete)
	api.HandleFunc("/listings/{id:[0-9]+}/messages", h.ListingMessages).Methods(http.MethodGet)

	// messages
	api.HandleFunc("/messages", h.SendMessage).Methods(http.MethodPost)
	api.HandleFunc("/messages/attachments", h.UploadAttachment).Methods(http.MethodPost)
	api.HandleFunc("/messages/unread-count", h.UnreadCount).Methods(http.MethodGet)
	api.HandleFunc("/messages/with/{userId:[0-9]+}", h.Conversation).Methods(http.MethodGet)
	api.HandleFunc("/messages/{id:[0-9]+}/read", h.MarkMessageRead).Methods(http.MethodPatch)
	api.HandleFunc("/messages/{id:[0-9]+}", h.DeleteMessage).Methods(http.MethodDelete)
}
