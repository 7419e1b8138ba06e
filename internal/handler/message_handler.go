package handlers

import (
	"encoding/json"
	"net/http"

	"localMarketplace/internal/service"
)

type SendMessageRequest struct {
	ReceiverID    int64   `json:"receiverId" validate:"required,gt=0"`
	ListingID     *int64  `json:"listingId" validate:"omitempty,gt=0"`
	Content       string  `json:"content" validate:"max=4000"`
	AttachmentURL *string `json:"attachmentUrl" validate:"omitempty,url"`
}

type AttachmentResponse struct {
	URL string `json:"url"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

func (h *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Неверный формат запроса", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	message, err := h.MessageService.Send(r.Context(), userID, service.SendMessageInput{
		ReceiverID:    req.ReceiverID,
		ListingID:     req.ListingID,
		Content:       req.Content,
		AttachmentURL: req.AttachmentURL,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, message, http.StatusCreated)
}

// UploadAttachment stores an image that a following SendMessage can reference.
func (h *Handlers) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	upload, ok := h.readImage(w, r, "file")
	if !ok {
		return
	}
	defer upload.file.Close()

	url, err := h.MessageService.UploadAttachment(r.Context(), userID, upload.name, upload.file, upload.size)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, AttachmentResponse{URL: url}, http.StatusCreated)
}

func (h *Handlers) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	count, err := h.MessageService.UnreadCount(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, UnreadCountResponse{Count: count}, http.StatusOK)
}

func (h *Handlers) Conversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	otherID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	messages, err := h.MessageService.Conversation(r.Context(), userID, otherID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, messages, http.StatusOK)
}

func (h *Handlers) ListingMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	listingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	messages, err := h.MessageService.ForListing(r.Context(), userID, listingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, messages, http.StatusOK)
}

func (h *Handlers) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	messageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.MessageService.MarkRead(r.Context(), userID, messageID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "Сообщение прочитано"}, http.StatusOK)
}

func (h *Handlers) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	messageID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.MessageService.Delete(r.Context(), userID, messageID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, MessageResponse{Message: "Сообщение удалено"}, http.StatusOK)
}
