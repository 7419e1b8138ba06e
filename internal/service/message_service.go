package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"localMarketplace/internal/events"
	"localMarketplace/internal/models"
	"localMarketplace/internal/repository"
	"localMarketplace/internal/storage"
)

type SendMessageInput struct {
	ReceiverID    int64
	ListingID     *int64
	Content       string
	AttachmentURL *string
}

type MessageService interface {
	Send(ctx context.Context, senderID int64, input SendMessageInput) (*models.Message, error)
	Conversation(ctx context.Context, userID, otherUserID int64) ([]models.Message, error)
	ForListing(ctx context.Context, userID, listingID int64) ([]models.Message, error)
	MarkRead(ctx context.Context, userID, messageID int64) error
	UnreadCount(ctx context.Context, userID int64) (int, error)
	UploadAttachment(ctx context.Context, userID int64, fileName string, file io.Reader, size int64) (string, error)
	Delete(ctx context.Context, userID, messageID int64) error
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
	storage     storage.Storage
	events      events.Publisher
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
	storage storage.Storage,
	publisher events.Publisher,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		listingRepo: listingRepo,
		storage:     storage,
		events:      publisher,
	}
}

func (s *messageService) Send(ctx context.Context, senderID int64, input SendMessageInput) (*models.Message, error) {
	content := strings.TrimSpace(input.Content)
	attachment := input.AttachmentURL
	if attachment != nil && strings.TrimSpace(*attachment) == "" {
		attachment = nil
	}
	if content == "" && attachment == nil {
		return nil, ErrEmptyMessage
	}

	if attachment != nil {
		if err := checkImageURLs(s.storage, storage.OwnerPrefix(storage.PrefixAttachments, senderID), *attachment); err != nil {
			return nil, err
		}
	}

	if _, err := s.userRepo.GetUserByID(ctx, input.ReceiverID); err != nil {
		return nil, err
	}

	if input.ListingID != nil {
		if _, err := s.listingRepo.GetByID(ctx, *input.ListingID); err != nil {
			return nil, err
		}
	}

	message := &models.Message{
		SenderID:      senderID,
		ReceiverID:    input.ReceiverID,
		ListingID:     input.ListingID,
		Content:       content,
		AttachmentURL: attachment,
	}

	err := s.messageRepo.Create(ctx, message)
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, events.Event{
		Topic:    events.MessageSent,
		EntityID: message.ID,
		ActorID:  senderID,
		Payload:  *message,
	})

	return message, nil
}

func (s *messageService) Conversation(ctx context.Context, userID, otherUserID int64) ([]models.Message, error) {
	return s.messageRepo.GetConversation(ctx, userID, otherUserID)
}

// ForListing returns the whole thread to the seller and only the caller's
// own messages to anyone else.
func (s *messageService) ForListing(ctx context.Context, userID, listingID int64) ([]models.Message, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.GetByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	if listing.SellerID == userID {
		return messages, nil
	}

	own := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			own = append(own, m)
		}
	}

	return own, nil
}

func (s *messageService) MarkRead(ctx context.Context, userID, messageID int64) error {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}

	if message.ReceiverID != userID {
		return ErrForbidden
	}

	if message.IsRead {
		return nil
	}

	err = s.messageRepo.MarkRead(ctx, messageID)
	if err != nil {
		return err
	}

	s.events.Publish(ctx, events.Event{Topic: events.MessageRead, EntityID: messageID, ActorID: userID})
	return nil
}

func (s *messageService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.messageRepo.CountUnread(ctx, userID)
}

func (s *messageService) UploadAttachment(ctx context.Context, userID int64, fileName string, file io.Reader, size int64) (string, error) {
	_, attachmentURL, err := s.storage.UploadImage(ctx, storage.PrefixAttachments, userID, fileName, file, size)
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки вложения: %w", err)
	}

	return attachmentURL, nil
}

func (s *messageService) Delete(ctx context.Context, userID, messageID int64) error {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}

	if message.SenderID != userID {
		return ErrForbidden
	}

	err = s.messageRepo.Delete(ctx, messageID)
	if err != nil {
		return err
	}

	if message.AttachmentURL != nil {
		removeStoredImage(ctx, s.storage, *message.AttachmentURL, storage.OwnerPrefix(storage.PrefixAttachments, message.SenderID))
	}

	return nil
}
