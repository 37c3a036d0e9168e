package fanout

import (
	"context"
	"errors"
	"log"
	"sync"

	"schooltalk/internal/common"
	"schooltalk/internal/config"
	"schooltalk/internal/messaging"
)

// Report is the aggregate outcome of one broadcast. Partial success is a
// valid outcome and is reported, never rolled back.
type Report struct {
	TotalResolved int       `json:"total_resolved"`
	TotalSent     int       `json:"total_sent"`
	Failures      []Failure `json:"failures"`
}

type Failure struct {
	Recipient string `json:"recipient"`
	Reason    string `json:"reason"`
}

type Service interface {
	// Broadcast expands the cohort and delivers the message into one fresh
	// two-party thread per recipient, at-least-once, best-effort.
	Broadcast(ctx context.Context, senderID string, cohort Cohort, subject, body string) (*Report, error)
}

type service struct {
	roster  common.RosterDirectory
	threads messaging.Service
	workers int
}

func NewService(roster common.RosterDirectory, threads messaging.Service, cfg *config.Config) Service {
	workers := cfg.Messaging.FanoutWorkers
	if workers <= 0 {
		workers = 1
	}
	return &service{
		roster:  roster,
		threads: threads,
		workers: workers,
	}
}

type result struct {
	recipient string
	err       error
}

func (s *service) Broadcast(ctx context.Context, senderID string, cohort Cohort, subject, body string) (*Report, error) {
	if body == "" {
		return nil, common.ErrInvalidMessage
	}
	if subject == "" {
		return nil, messaging.ErrSubjectRequired
	}

	recipients, err := Resolve(ctx, s.roster, cohort, senderID)
	if err != nil {
		return nil, err
	}

	// Each recipient's thread is its own serialization domain, so the
	// units run in parallel, bounded by the worker pool.
	jobs := make(chan string)
	results := make(chan result, len(recipients))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for recipient := range jobs {
				results <- result{recipient: recipient, err: s.deliver(ctx, senderID, recipient, subject, body)}
			}
		}()
	}

	for _, recipient := range recipients {
		jobs <- recipient
	}
	close(jobs)
	wg.Wait()
	close(results)

	report := &Report{TotalResolved: len(recipients)}
	for res := range results {
		if res.err != nil {
			report.Failures = append(report.Failures, Failure{
				Recipient: res.recipient,
				Reason:    reasonFor(res.err),
			})
			continue
		}
		report.TotalSent++
	}

	log.Printf("broadcast by %s: resolved=%d sent=%d failed=%d",
		senderID, report.TotalResolved, report.TotalSent, len(report.Failures))
	return report, nil
}

func (s *service) deliver(ctx context.Context, senderID, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return common.ErrUpstreamUnavailable
	}

	// Broadcasts never reuse support tickets: always a fresh ordinary
	// thread, one per recipient.
	thread, err := s.threads.CreateThread(ctx, senderID, recipient, subject, nil)
	if err != nil {
		return err
	}
	_, err = s.threads.AppendMessage(ctx, thread.ID, senderID, body, nil)
	return err
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, common.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, common.ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, common.ErrNotFound):
		return "not_found"
	case errors.Is(err, common.ErrInvalidMessage):
		return "invalid_message"
	case errors.Is(err, messaging.ErrSelfThread):
		return "invalid_recipient"
	default:
		return "internal"
	}
}
