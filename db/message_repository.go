package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/techagentng/bookclub/models"
	"gorm.io/gorm"
)

// MessageRepository persists direct messages and their read state.
type MessageRepository interface {
	CreateMessage(ctx context.Context, senderID, receiverID uuid.UUID, text string) (*models.Message, error)
	// ListMessagesForUser returns every message the user sent or received, oldest first.
	ListMessagesForUser(ctx context.Context, userID uuid.UUID) ([]models.Message, error)
	// ListConversation marks the messages userID received from otherUserID as read
	// and returns the full exchange oldest first.
	ListConversation(ctx context.Context, userID, otherUserID uuid.UUID) ([]models.Message, error)
}

type messageRepo struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewMessageRepo(db *GormDB) MessageRepository {
	return NewMessageRepoWithClock(db, time.Now)
}

// NewMessageRepoWithClock lets callers pin the timestamps written to new and read messages.
func NewMessageRepoWithClock(db *GormDB, now func() time.Time) MessageRepository {
	return &messageRepo{DB: db.DB, now: now}
}

func (r *messageRepo) CreateMessage(ctx context.Context, senderID, receiverID uuid.UUID, text string) (*models.Message, error) {
	now := r.now().UTC()
	message := &models.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.DB.WithContext(ctx).Create(message).Error; err != nil {
		return nil, errors.Wrap(err, "create message")
	}
	return message, nil
}

func (r *messageRepo) ListMessagesForUser(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.DB.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	return messages, nil
}

func (r *messageRepo) ListConversation(ctx context.Context, userID, otherUserID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		readAt := r.now().UTC()
		err := tx.Model(&models.Message{}).
			Where("sender_id = ? AND receiver_id = ? AND read = ?", otherUserID, userID, false).
			Updates(map[string]interface{}{"read": true, "read_at": readAt}).Error
		if err != nil {
			return errors.Wrap(err, "mark conversation read")
		}
		err = tx.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherUserID, otherUserID, userID).
			Order("created_at ASC").
			Find(&messages).Error
		return errors.Wrap(err, "load conversation")
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}
