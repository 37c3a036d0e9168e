package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"schooltalk/internal/common"
	"schooltalk/internal/config"
	"schooltalk/internal/dbmysql"
)

var (
	ErrSubjectRequired = errors.New("subject is required")
	ErrSelfThread      = errors.New("a thread needs two distinct participants")
)

// Service owns thread identity, the per-thread message log, read state and
// the open/closed lifecycle.
type Service interface {
	ListThreads(ctx context.Context, userID string) ([]ThreadSummary, error)
	GetThread(ctx context.Context, threadID, userID string) (*dbmysql.Thread, error)
	// CreateOrFindThread applies the support-thread dedup rule: an existing
	// unscoped thread with the support account is reused, subject untouched.
	CreateOrFindThread(ctx context.Context, initiator, recipient, subject string, studentRef *string) (*dbmysql.Thread, error)
	// CreateThread always creates. Bulk announcements go through here so a
	// broadcast never collapses into someone's support ticket.
	CreateThread(ctx context.Context, initiator, recipient, subject string, studentRef *string) (*dbmysql.Thread, error)
	AppendMessage(ctx context.Context, threadID, senderID, body string, attachments []common.Attachment) (*dbmysql.Message, error)
	GetMessages(ctx context.Context, threadID, userID string, limit, offset int) ([]*dbmysql.Message, error)
	MarkRead(ctx context.Context, threadID, messageID, readerID string) error
	UnreadCount(ctx context.Context, userID, threadID string) (int64, error)
	TotalUnread(ctx context.Context, userID string) (int64, error)
	Close(ctx context.Context, threadID, actorID string) (*dbmysql.Thread, error)
	Reopen(ctx context.Context, threadID, actorID string) (*dbmysql.Thread, error)
	DeleteThread(ctx context.Context, threadID, actorID string) error
}

// ThreadSummary is one row in a user's thread list.
type ThreadSummary struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	StudentRef  *string   `json:"student_ref,omitempty"`
	Status      string    `json:"status"`
	Preview     string    `json:"preview"`
	UnreadCount int64     `json:"unread_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type service struct {
	threads  dbmysql.ThreadRepository
	messages dbmysql.MessageRepository
	locks    *threadLocks

	supportAccountID string
	previewLength    int
}

func NewService(threads dbmysql.ThreadRepository, messages dbmysql.MessageRepository, cfg *config.Config) Service {
	return &service{
		threads:          threads,
		messages:         messages,
		locks:            newThreadLocks(),
		supportAccountID: cfg.Messaging.SupportAccountID,
		previewLength:    cfg.Messaging.PreviewLength,
	}
}

func (s *service) ListThreads(ctx context.Context, userID string) ([]ThreadSummary, error) {
	threads, err := s.threads.ByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ThreadSummary, 0, len(threads))
	for _, t := range threads {
		summary := ThreadSummary{
			ID:         t.ID,
			Subject:    t.Subject,
			StudentRef: t.StudentRef,
			Status:     t.Status,
			UpdatedAt:  t.UpdatedAt,
		}

		last, err := s.messages.Latest(ctx, t.ID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		if last != nil {
			summary.Preview = preview(last, s.previewLength)
		}

		count, err := s.messages.UnreadCount(ctx, t.ID, userID)
		if err != nil {
			return nil, err
		}
		summary.UnreadCount = count

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *service) GetThread(ctx context.Context, threadID, userID string) (*dbmysql.Thread, error) {
	thread, err := s.threads.WithMessages(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(userID) {
		return nil, common.ErrNotAuthorized
	}
	return thread, nil
}

func (s *service) CreateOrFindThread(ctx context.Context, initiator, recipient, subject string, studentRef *string) (*dbmysql.Thread, error) {
	if err := validateNewThread(initiator, recipient, subject); err != nil {
		return nil, err
	}

	// Support tickets dedup on the participant pair: one unscoped thread
	// with the support account per user, reused across reopen cycles.
	if studentRef == nil && s.supportAccountID != "" && recipient == s.supportAccountID {
		existing, err := s.threads.FindSupportThread(ctx, initiator, recipient)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
	}

	return s.CreateThread(ctx, initiator, recipient, subject, studentRef)
}

func (s *service) CreateThread(ctx context.Context, initiator, recipient, subject string, studentRef *string) (*dbmysql.Thread, error) {
	if err := validateNewThread(initiator, recipient, subject); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	thread := &dbmysql.Thread{
		ID:           uuid.NewString(),
		Subject:      subject,
		StudentRef:   studentRef,
		Status:       string(common.StatusOpen),
		Participants: dbmysql.StringList{initiator, recipient},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.threads.Create(ctx, thread); err != nil {
		return nil, err
	}
	return thread, nil
}

func (s *service) AppendMessage(ctx context.Context, threadID, senderID, body string, attachments []common.Attachment) (*dbmysql.Message, error) {
	if body == "" && len(attachments) == 0 {
		return nil, common.ErrInvalidMessage
	}

	unlock := s.locks.Lock(threadID)
	defer unlock()

	thread, err := s.threads.ByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(senderID) {
		return nil, common.ErrNotAuthorized
	}

	// Sequence and timestamp are assigned under the thread lock so the
	// log stays strictly ordered even with concurrent senders.
	seq := 1
	createdAt := time.Now().UTC()
	last, err := s.messages.Latest(ctx, threadID)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	if last != nil {
		seq = last.Seq + 1
		if !createdAt.After(last.CreatedAt) {
			createdAt = last.CreatedAt.Add(time.Microsecond)
		}
	}

	msg := &dbmysql.Message{
		ID:          uuid.NewString(),
		ThreadID:    threadID,
		Seq:         seq,
		SenderID:    senderID,
		Body:        body,
		Attachments: attachments,
		Read:        false,
		CreatedAt:   createdAt,
	}

	// Append is transactional: on cancellation either the message and the
	// updated_at bump both landed, or neither did.
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *service) GetMessages(ctx context.Context, threadID, userID string, limit, offset int) ([]*dbmysql.Message, error) {
	thread, err := s.threads.ByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(userID) {
		return nil, common.ErrNotAuthorized
	}
	return s.messages.ByThread(ctx, threadID, limit, offset)
}

func (s *service) MarkRead(ctx context.Context, threadID, messageID, readerID string) error {
	unlock := s.locks.Lock(threadID)
	defer unlock()

	thread, err := s.threads.ByID(ctx, threadID)
	if err != nil {
		return err
	}
	if !thread.HasParticipant(readerID) {
		return common.ErrNotAuthorized
	}

	msg, err := s.messages.ByID(ctx, threadID, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID == readerID {
		// Senders cannot clear their own message from the recipient's
		// unread count.
		return common.ErrNotAuthorized
	}
	if msg.Read {
		return nil
	}
	return s.messages.MarkRead(ctx, messageID)
}

func (s *service) UnreadCount(ctx context.Context, userID, threadID string) (int64, error) {
	thread, err := s.threads.ByID(ctx, threadID)
	if err != nil {
		return 0, err
	}
	if !thread.HasParticipant(userID) {
		return 0, common.ErrNotAuthorized
	}
	return s.messages.UnreadCount(ctx, threadID, userID)
}

func (s *service) TotalUnread(ctx context.Context, userID string) (int64, error) {
	threads, err := s.threads.ByParticipant(ctx, userID)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, t := range threads {
		// Closed threads stay readable but drop out of the badge count.
		if t.Status != string(common.StatusOpen) {
			continue
		}
		count, err := s.messages.UnreadCount(ctx, t.ID, userID)
		if err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

func (s *service) Close(ctx context.Context, threadID, actorID string) (*dbmysql.Thread, error) {
	return s.transition(ctx, threadID, actorID, common.StatusOpen, common.StatusClosed)
}

func (s *service) Reopen(ctx context.Context, threadID, actorID string) (*dbmysql.Thread, error) {
	return s.transition(ctx, threadID, actorID, common.StatusClosed, common.StatusOpen)
}

func (s *service) transition(ctx context.Context, threadID, actorID string, from, to common.ThreadStatus) (*dbmysql.Thread, error) {
	unlock := s.locks.Lock(threadID)
	defer unlock()

	thread, err := s.threads.ByID(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(actorID) {
		return nil, common.ErrNotAuthorized
	}
	if thread.Status != string(from) {
		return nil, fmt.Errorf("%w: thread is %s", common.ErrInvalidTransition, thread.Status)
	}

	now := time.Now().UTC()
	if err := s.threads.UpdateStatus(ctx, threadID, string(to), now); err != nil {
		return nil, err
	}
	thread.Status = string(to)
	thread.UpdatedAt = now
	return thread, nil
}

func (s *service) DeleteThread(ctx context.Context, threadID, actorID string) error {
	thread, err := s.threads.ByID(ctx, threadID)
	if err != nil {
		return err
	}
	if !thread.HasParticipant(actorID) {
		return common.ErrNotAuthorized
	}
	return s.threads.Delete(ctx, threadID)
}

func validateNewThread(initiator, recipient, subject string) error {
	if subject == "" {
		return ErrSubjectRequired
	}
	if initiator == "" || recipient == "" || initiator == recipient {
		return ErrSelfThread
	}
	return nil
}

func preview(msg *dbmysql.Message, max int) string {
	if msg.Body == "" && len(msg.Attachments) > 0 {
		return "[attachment]"
	}
	runes := []rune(msg.Body)
	if max > 0 && len(runes) > max {
		return string(runes[:max]) + "…"
	}
	return msg.Body
}
