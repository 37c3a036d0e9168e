package dbmysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"schooltalk/internal/common"
)

type MessageRepository interface {
	// Append inserts the message and bumps the thread's updated_at in one
	// transaction. Either both land or neither does.
	Append(ctx context.Context, msg *Message) error
	ByThread(ctx context.Context, threadID string, limit, offset int) ([]*Message, error)
	ByID(ctx context.Context, threadID, messageID string) (*Message, error)
	// Latest returns the newest message in the thread, or common.ErrNotFound
	// when the thread has none.
	Latest(ctx context.Context, threadID string) (*Message, error)
	MarkRead(ctx context.Context, messageID string) error
	// UnreadCount counts unread messages in the thread authored by someone
	// other than readerID.
	UnreadCount(ctx context.Context, threadID, readerID string) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Append(ctx context.Context, msg *Message) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&Thread{}).
			Where("id = ?", msg.ThreadID).
			Update("updated_at", msg.CreatedAt).Error
	})
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

func (r *messageRepository) ByThread(ctx context.Context, threadID string, limit, offset int) ([]*Message, error) {
	var messages []*Message
	query := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("seq ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) ByID(ctx context.Context, threadID, messageID string) (*Message, error) {
	var msg Message
	err := r.db.WithContext(ctx).
		Where("id = ? AND thread_id = ?", messageID, threadID).
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &msg, nil
}

func (r *messageRepository) Latest(ctx context.Context, threadID string) (*Message, error) {
	var msg Message
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("seq DESC").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest message: %w", err)
	}
	return &msg, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, messageID string) error {
	// read only ever transitions false -> true, so a repeated update is a
	// harmless no-op.
	result := r.db.WithContext(ctx).
		Model(&Message{}).
		Where("id = ?", messageID).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark message read: %w", result.Error)
	}
	return nil
}

func (r *messageRepository) UnreadCount(ctx context.Context, threadID, readerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Message{}).
		Where("thread_id = ? AND sender_id <> ? AND `read` = ?", threadID, readerID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
