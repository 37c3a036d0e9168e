package messaging

import (
	"context"
	"sort"
	"sync"
	"time"

	"schooltalk/internal/common"
	"schooltalk/internal/dbmysql"
)

// In-memory repositories backing the service tests. They mirror the SQL
// implementations' contracts, including error mapping.

type fakeThreadRepo struct {
	mu      sync.Mutex
	threads map[string]*dbmysql.Thread

	createErr error
}

func newFakeThreadRepo() *fakeThreadRepo {
	return &fakeThreadRepo{threads: make(map[string]*dbmysql.Thread)}
}

func (r *fakeThreadRepo) Create(ctx context.Context, thread *dbmysql.Thread) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *thread
	r.threads[thread.ID] = &cp
	return nil
}

func (r *fakeThreadRepo) ByID(ctx context.Context, id string) (*dbmysql.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeThreadRepo) WithMessages(ctx context.Context, id string) (*dbmysql.Thread, error) {
	return r.ByID(ctx, id)
}

func (r *fakeThreadRepo) ByParticipant(ctx context.Context, userID string) ([]*dbmysql.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*dbmysql.Thread
	for _, t := range r.threads {
		if t.HasParticipant(userID) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *fakeThreadRepo) FindSupportThread(ctx context.Context, userA, userB string) (*dbmysql.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *dbmysql.Thread
	for _, t := range r.threads {
		if t.StudentRef != nil || len(t.Participants) != 2 {
			continue
		}
		if t.HasParticipant(userA) && t.HasParticipant(userB) {
			if found == nil || t.CreatedAt.Before(found.CreatedAt) {
				found = t
			}
		}
	}
	if found == nil {
		return nil, common.ErrNotFound
	}
	cp := *found
	return &cp, nil
}

func (r *fakeThreadRepo) UpdateStatus(ctx context.Context, id, status string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.threads[id]
	if !ok {
		return common.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = at
	return nil
}

func (r *fakeThreadRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.threads[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.threads, id)
	return nil
}

func (r *fakeThreadRepo) touch(id string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.threads[id]; ok {
		t.UpdatedAt = at
	}
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[string][]*dbmysql.Message
	threads  *fakeThreadRepo

	appendErr error
}

func newFakeMessageRepo(threads *fakeThreadRepo) *fakeMessageRepo {
	return &fakeMessageRepo{
		messages: make(map[string][]*dbmysql.Message),
		threads:  threads,
	}
}

func (r *fakeMessageRepo) Append(ctx context.Context, msg *dbmysql.Message) error {
	// The SQL implementation runs in a transaction: a cancelled context
	// aborts it and nothing lands.
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.appendErr != nil {
		return r.appendErr
	}
	r.mu.Lock()
	cp := *msg
	r.messages[msg.ThreadID] = append(r.messages[msg.ThreadID], &cp)
	r.mu.Unlock()
	r.threads.touch(msg.ThreadID, msg.CreatedAt)
	return nil
}

func (r *fakeMessageRepo) ByThread(ctx context.Context, threadID string, limit, offset int) ([]*dbmysql.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.messages[threadID]
	if offset > len(msgs) {
		offset = len(msgs)
	}
	msgs = msgs[offset:]
	if limit > 0 && limit < len(msgs) {
		msgs = msgs[:limit]
	}
	out := make([]*dbmysql.Message, len(msgs))
	for i, m := range msgs {
		cp := *m
		out[i] = &cp
	}
	return out, nil
}

func (r *fakeMessageRepo) ByID(ctx context.Context, threadID, messageID string) (*dbmysql.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages[threadID] {
		if m.ID == messageID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeMessageRepo) Latest(ctx context.Context, threadID string) (*dbmysql.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.messages[threadID]
	if len(msgs) == 0 {
		return nil, common.ErrNotFound
	}
	cp := *msgs[len(msgs)-1]
	return &cp, nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msgs := range r.messages {
		for _, m := range msgs {
			if m.ID == messageID {
				m.Read = true
				return nil
			}
		}
	}
	return nil
}

func (r *fakeMessageRepo) UnreadCount(ctx context.Context, threadID, readerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.messages[threadID] {
		if m.SenderID != readerID && !m.Read {
			count++
		}
	}
	return count, nil
}
