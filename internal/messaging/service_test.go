package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schooltalk/internal/common"
	"schooltalk/internal/config"
)

const supportID = "support-account"

func newTestService(t *testing.T) (Service, *fakeThreadRepo, *fakeMessageRepo) {
	t.Helper()
	threads := newFakeThreadRepo()
	messages := newFakeMessageRepo(threads)
	cfg := &config.Config{
		Messaging: config.MessagingConfig{
			SupportAccountID: supportID,
			FanoutWorkers:    4,
			PreviewLength:    20,
		},
	}
	return NewService(threads, messages, cfg), threads, messages
}

func strPtr(s string) *string { return &s }

func TestCreateOrFindThread_SupportDedup(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateOrFindThread(ctx, "guardian-1", supportID, "help", nil)
	require.NoError(t, err)

	// same pair, no student scope: reuse, subject untouched
	second, err := svc.CreateOrFindThread(ctx, "guardian-1", supportID, "different subject", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "help", second.Subject)

	// a student scope always makes a fresh thread
	scoped, err := svc.CreateOrFindThread(ctx, "guardian-1", supportID, "help", strPtr("student-9"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, scoped.ID)

	// non-support recipients are never deduplicated
	t1, err := svc.CreateOrFindThread(ctx, "guardian-1", "teacher-1", "homework", nil)
	require.NoError(t, err)
	t2, err := svc.CreateOrFindThread(ctx, "guardian-1", "teacher-1", "homework", nil)
	require.NoError(t, err)
	assert.NotEqual(t, t1.ID, t2.ID)
}

func TestCreateOrFindThread_SupportDedupSurvivesClose(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateOrFindThread(ctx, "guardian-1", supportID, "help", nil)
	require.NoError(t, err)

	_, err = svc.Close(ctx, first.ID, "guardian-1")
	require.NoError(t, err)

	again, err := svc.CreateOrFindThread(ctx, "guardian-1", supportID, "help again", nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID, "closed support thread must be reused, not replaced")
}

func TestCreateThread_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateThread(ctx, "user-1", "user-2", "", nil)
	assert.ErrorIs(t, err, ErrSubjectRequired)

	_, err = svc.CreateThread(ctx, "user-1", "user-1", "subject", nil)
	assert.ErrorIs(t, err, ErrSelfThread)

	_, err = svc.CreateThread(ctx, "user-1", "", "subject", nil)
	assert.ErrorIs(t, err, ErrSelfThread)
}

func TestAppendMessage_Ordering(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	thread, err := svc.CreateThread(ctx, "user-a", "user-b", "subject", nil)
	require.NoError(t, err)

	bodies := []string{"first", "second", "third"}
	for _, body := range bodies {
		_, err := svc.AppendMessage(ctx, thread.ID, "user-a", body, nil)
		require.NoError(t, err)
	}

	messages, err := svc.GetMessages(ctx, thread.ID, "user-b", 0, 0)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	for i, body := range bodies {
		assert.Equal(t, body, messages[i].Body)
		assert.Equal(t, i+1, messages[i].Seq)
	}
	for i := 1; i < len(messages); i++ {
		assert.True(t, messages[i].CreatedAt.After(messages[i-1].CreatedAt),
			"created_at must be strictly increasing within a thread")
	}
}

func TestAppendMessage_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	thread, err := svc.CreateThread(ctx, "user-a", "user-b", "subject", nil)
	require.NoError(t, err)

	tests := []struct {
		name        string
		threadID    string
		sender      string
		body        string
		attachments []common.Attachment
		wantErr     error
	}{
		{
			name:     "empty body no attachments",
			threadID: thread.ID,
			sender:   "user-a",
			wantErr:  common.ErrInvalidMessage,
		},
		{
			name:        "attachment-only message is valid",
			threadID:    thread.ID,
			sender:      "user-a",
			attachments: []common.Attachment{{StoredName: "f1", OriginalName: "homework.pdf", Mimetype: "application/pdf", SizeBytes: 100}},
		},
		{
			name:     "non-participant sender",
			threadID: thread.ID,
			sender:   "stranger",
			body:     "hi",
			wantErr:  common.ErrNotAuthorized,
		},
		{
			name:     "unknown thread",
			threadID: "missing",
			sender:   "user-a",
			body:     "hi",
			wantErr:  common.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AppendMessage(ctx, tt.threadID, tt.sender, tt.body, tt.attachments)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAppendMessage_ClosedThreadStaysClosed(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	thread, err := svc.CreateThread(ctx, "user-a", "user-b", "subject", nil)
	require.NoError(t, err)
	_, err = svc.Close(ctx, thread.ID, "user-a")
	require.NoError(t, err)

	// sending into an archived thread is permitted but never reopens it
	_, err = svc.AppendMessage(ctx, thread.ID, "user-b", "still here?", nil)
	require.NoError(t, err)

	got, err := svc.GetThread(ctx, thread.ID, "user-a")
	require.NoError(t, err)
	assert.Equal(t, string(common.StatusClosed), got.Status)
}

func TestAppendMessage_CancelledContext(t *testing.T) {
	svc, _, messages := newTestService(t)
	ctx := context.Background()

	thread, err := svc.CreateThread(ctx, "user-a", "user-b", "subject", nil)
	require.NoError(t, err)

	_, err = svc.AppendMessage(ctx, thread.ID, "user-a", "before", nil)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	_, err = svc.AppendMessage(cancelled, thread.ID, "user-a", "during", nil)
	require.Error(t, err)

	// the log holds either the whole message or none of it, never a stub
	got, err := messages.ByThread(ctx, thread.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "before", got[0].Body)
	assert.Equal(t, 1, got[0].Seq)

	// the sequence resumes cleanly once the caller retries
	after, err := svc.AppendMessage(ctx, thread.ID, "user-a", "after", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, after.Seq)
}

func TestMarkRead(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	thread, err := svc.CreateThread(ctx, "user-a", "user-b", "subject", nil)
	require.NoError(t, err)
	msg, err := svc.AppendMessage(ctx, thread.ID, "user-a", "hello", nil)
	require.NoError(t, err)

	count, err := svc.UnreadCount(ctx, "user-b", thread.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// sender cannot read their own message
	err = svc.MarkRead(ctx, thread.ID, msg.ID, "user-a")
	assert.ErrorIs(t, err, common.ErrNotAuthorized)

	// non-participant cannot read at all
	err = svc.MarkRead(ctx, thread.ID, msg.ID, "stranger")
	assert.ErrorIs(t, err, common.ErrNotAuthorized)

	require.NoError(t, svc.MarkRead(ctx, thread.ID, msg.ID, "user-b"))
	count, err = svc.UnreadCount(ctx, "user-b", thread.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// idempotent: second mark is a no-op, count never increases
	require.NoError(t, svc.MarkRead(ctx, thread.ID, msg.ID, "user-b"))
	count, err = svc.UnreadCount(ctx, "user-b", thread.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestArchiveReversibility(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	thread, err := svc.CreateThread(ctx, "user-a", "user-b", "subject", nil)
	require.NoError(t, err)
	_, err = svc.AppendMessage(ctx, thread.ID, "user-a", "hello", nil)
	require.NoError(t, err)

	closed, err := svc.Close(ctx, thread.ID, "user-a")
	require.NoError(t, err)
	assert.Equal(t, string(common.StatusClosed), closed.Status)

	// double close is an invalid transition
	_, err = svc.Close(ctx, thread.ID, "user-a")
	assert.ErrorIs(t, err, common.ErrInvalidTransition)

	reopened, err := svc.Reopen(ctx, thread.ID, "user-b")
	require.NoError(t, err)
	assert.Equal(t, string(common.StatusOpen), reopened.Status)

	_, err = svc.Reopen(ctx, thread.ID, "user-b")
	assert.ErrorIs(t, err, common.ErrInvalidTransition)

	// message log untouched by the round trip
	messages, err := svc.GetMessages(ctx, thread.ID, "user-a", 0, 0)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	// non-participant cannot archive
	_, err = svc.Close(ctx, thread.ID, "stranger")
	assert.ErrorIs(t, err, common.ErrNotAuthorized)
}

func TestTotalUnread_SkipsClosedThreads(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	open, err := svc.CreateThread(ctx, "user-a", "user-b", "open one", nil)
	require.NoError(t, err)
	closed, err := svc.CreateThread(ctx, "user-a", "user-b", "closed one", nil)
	require.NoError(t, err)

	_, err = svc.AppendMessage(ctx, open.ID, "user-a", "unread 1", nil)
	require.NoError(t, err)
	_, err = svc.AppendMessage(ctx, closed.ID, "user-a", "unread 2", nil)
	require.NoError(t, err)
	_, err = svc.AppendMessage(ctx, closed.ID, "user-a", "unread 3", nil)
	require.NoError(t, err)

	_, err = svc.Close(ctx, closed.ID, "user-a")
	require.NoError(t, err)

	total, err := svc.TotalUnread(ctx, "user-b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "closed threads must not contribute to the badge count")

	// the closed thread's unread messages stay individually queryable
	count, err := svc.UnreadCount(ctx, "user-b", closed.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestListThreads(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateThread(ctx, "user-a", "user-b", "older", nil)
	require.NoError(t, err)
	second, err := svc.CreateThread(ctx, "user-a", "user-c", "newer", nil)
	require.NoError(t, err)

	_, err = svc.AppendMessage(ctx, first.ID, "user-b", "a rather long message body that should be truncated", nil)
	require.NoError(t, err)
	_, err = svc.AppendMessage(ctx, second.ID, "user-c", "short", nil)
	require.NoError(t, err)

	summaries, err := svc.ListThreads(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// most recently updated first
	assert.Equal(t, second.ID, summaries[0].ID)
	assert.Equal(t, first.ID, summaries[1].ID)

	assert.Equal(t, "short", summaries[0].Preview)
	assert.Equal(t, int64(1), summaries[0].UnreadCount)
	assert.LessOrEqual(t, len([]rune(summaries[1].Preview)), 21, "preview is truncated to the configured length")
}

func TestGetThread_Authorization(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	thread, err := svc.CreateThread(ctx, "user-a", "user-b", "subject", nil)
	require.NoError(t, err)

	_, err = svc.GetThread(ctx, thread.ID, "stranger")
	assert.ErrorIs(t, err, common.ErrNotAuthorized)

	_, err = svc.GetThread(ctx, "missing", "user-a")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteThread(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	thread, err := svc.CreateThread(ctx, "user-a", "user-b", "subject", nil)
	require.NoError(t, err)

	err = svc.DeleteThread(ctx, thread.ID, "stranger")
	assert.ErrorIs(t, err, common.ErrNotAuthorized)

	require.NoError(t, svc.DeleteThread(ctx, thread.ID, "user-a"))
	_, err = svc.GetThread(ctx, thread.ID, "user-a")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

// Mirrors the guardian/teacher walkthrough end to end.
func TestGuardianTeacherScenario(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	thread, err := svc.CreateOrFindThread(ctx, "guardian-g", "teacher-t", "Question about homework", strPtr("student-s"))
	require.NoError(t, err)
	assert.Equal(t, string(common.StatusOpen), thread.Status)
	assert.Len(t, thread.Participants, 2)
	require.NotNil(t, thread.StudentRef)
	assert.Equal(t, "student-s", *thread.StudentRef)

	// a thread with zero messages is valid
	messages, err := svc.GetMessages(ctx, thread.ID, "guardian-g", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)

	reply, err := svc.AppendMessage(ctx, thread.ID, "teacher-t", "Sure, happy to help", nil)
	require.NoError(t, err)

	messages, err = svc.GetMessages(ctx, thread.ID, "guardian-g", 0, 0)
	require.NoError(t, err)
	assert.Len(t, messages, 1)

	require.NoError(t, svc.MarkRead(ctx, thread.ID, reply.ID, "guardian-g"))
	count, err := svc.UnreadCount(ctx, "guardian-g", thread.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = svc.Close(ctx, thread.ID, "teacher-t")
	require.NoError(t, err)
	total, err := svc.TotalUnread(ctx, "guardian-g")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
