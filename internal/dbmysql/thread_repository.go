package dbmysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"schooltalk/internal/common"
)

type ThreadRepository interface {
	Create(ctx context.Context, thread *Thread) error
	ByID(ctx context.Context, id string) (*Thread, error)
	WithMessages(ctx context.Context, id string) (*Thread, error)
	ByParticipant(ctx context.Context, userID string) ([]*Thread, error)
	// FindSupportThread returns the unscoped two-party thread between the
	// pair, regardless of status, or common.ErrNotFound.
	FindSupportThread(ctx context.Context, userA, userB string) (*Thread, error)
	UpdateStatus(ctx context.Context, id, status string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type threadRepository struct {
	db *gorm.DB
}

func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

func (r *threadRepository) Create(ctx context.Context, thread *Thread) error {
	if err := r.db.WithContext(ctx).Create(thread).Error; err != nil {
		return fmt.Errorf("failed to create thread: %w", err)
	}
	return nil
}

func (r *threadRepository) ByID(ctx context.Context, id string) (*Thread, error) {
	var thread Thread
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&thread).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	return &thread, nil
}

func (r *threadRepository) WithMessages(ctx context.Context, id string) (*Thread, error) {
	var thread Thread
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("seq ASC")
		}).
		Where("id = ?", id).
		First(&thread).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get thread with messages: %w", err)
	}
	return &thread, nil
}

func (r *threadRepository) ByParticipant(ctx context.Context, userID string) ([]*Thread, error) {
	var threads []*Thread
	err := r.db.WithContext(ctx).
		Where("JSON_CONTAINS(participants, JSON_QUOTE(?))", userID).
		Order("updated_at DESC").
		Find(&threads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}
	return threads, nil
}

func (r *threadRepository) FindSupportThread(ctx context.Context, userA, userB string) (*Thread, error) {
	var thread Thread
	err := r.db.WithContext(ctx).
		Where("student_ref IS NULL").
		Where("JSON_LENGTH(participants) = 2").
		Where("JSON_CONTAINS(participants, JSON_QUOTE(?))", userA).
		Where("JSON_CONTAINS(participants, JSON_QUOTE(?))", userB).
		Order("created_at ASC").
		First(&thread).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find support thread: %w", err)
	}
	return &thread, nil
}

func (r *threadRepository) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&Thread{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update thread status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *threadRepository) Delete(ctx context.Context, id string) error {
	// Messages never outlive their thread.
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("thread_id = ?", id).Delete(&Message{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&Thread{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return common.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("failed to delete thread: %w", err)
	}
	return nil
}
