package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"localMarketplace/internal/models"
)

const messageColumns = `id, sender_id, receiver_id, listing_id, content, attachment_url, sent_date, is_read`

type messageRepository struct {
	db DB
}

func NewMessageRepository(db DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, listing_id, content, attachment_url, sent_date, is_read)
		VALUES (:sender_id, :receiver_id, :listing_id, :content, :attachment_url, :sent_date, :is_read)
		RETURNING id
	`

	// the timestamp and the unread flag always come from the server
	message.SentDate = time.Now()
	message.IsRead = false

	rows, err := sqlx.NamedQueryContext(ctx, r.db, query, message)
	if err != nil {
		return fmt.Errorf("ошибка при создании сообщения: %w", err)
	}
	defer rows.Close()

	return scanReturnedID(rows, &message.ID, "сообщения")
}

func (r *messageRepository) GetByID(ctx context.Context, messageID int64) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`

	var message models.Message
	err := r.db.GetContext(ctx, &message, query, messageID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: ID %d", ErrMessageNotFound, messageID)
		}
		return nil, fmt.Errorf("ошибка при получении сообщения: %w", err)
	}

	return &message, nil
}

func (r *messageRepository) GetConversation(ctx context.Context, userID1, userID2 int64) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY sent_date, id`

	messages := []models.Message{}
	err := r.db.SelectContext(ctx, &messages, query, userID1, userID2)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении переписки: %w", err)
	}

	return messages, nil
}

func (r *messageRepository) GetByListing(ctx context.Context, listingID int64) ([]models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages
		WHERE listing_id = $1
		ORDER BY sent_date, id`

	messages := []models.Message{}
	err := r.db.SelectContext(ctx, &messages, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении сообщений по объявлению: %w", err)
	}

	return messages, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, messageID int64) error {
	query := `UPDATE messages SET is_read = TRUE WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, messageID)
	if err != nil {
		return fmt.Errorf("ошибка при отметке сообщения прочитанным: %w", err)
	}

	return expectAffected(result, fmt.Errorf("%w: ID %d", ErrMessageNotFound, messageID))
}

func (r *messageRepository) CountUnread(ctx context.Context, receiverID int64) (int, error) {
	query := `SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = FALSE`

	var count int
	err := r.db.GetContext(ctx, &count, query, receiverID)
	if err != nil {
		return 0, fmt.Errorf("ошибка при подсчёте непрочитанных сообщений: %w", err)
	}

	return count, nil
}

func (r *messageRepository) Delete(ctx context.Context, messageID int64) error {
	query := `DELETE FROM messages WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, messageID)
	if err != nil {
		return fmt.Errorf("ошибка при удалении сообщения: %w", err)
	}

	return expectAffected(result, fmt.Errorf("%w: ID %d", ErrMessageNotFound, messageID))
}
