package repository

import (
	"context"

	"github.com/Preeth02/aqi-using-ai/internal/models"

	"gorm.io/gorm"
)

// MessageRepository defines persistence operations for mailbox messages.
type MessageRepository interface {
	Append(ctx context.Context, message *models.Message) error
	ListByUser(ctx context.Context, userID uint) ([]models.Message, error)
	Delete(ctx context.Context, userID, messageID uint) error
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Append(ctx context.Context, message *models.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ListByUser returns the full mailbox in stored insertion order.
func (r *messageRepository) ListByUser(ctx context.Context, userID uint) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

// Delete removes the given message from the owner's mailbox. Ownership is
// enforced by scoping the delete to the owner's user ID, so a message ID
// belonging to another user reports NotFound.
func (r *messageRepository) Delete(ctx context.Context, userID, messageID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", messageID, userID).
		Delete(&models.Message{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Message not found or already deleted")
	}
	return nil
}
