package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lendtrack-backend/internal/clients/fcm"
	"github.com/yungbote/lendtrack-backend/internal/platform/logger"
	"golang.org/x/sync/errgroup"
)

// PushJob is one device delivery. Jobs are fire-and-forget: a failed push is
// logged and dropped, never retried into the request path.
type PushJob struct {
	RecipientID uuid.UUID
	Token       string
	Title       string
	Body        string
	Data        map[string]string
}

// PushSender fans notifications out to devices on a bounded worker pool. A
// full queue drops the job rather than blocking the caller.
type PushSender struct {
	log     *logger.Logger
	client  fcm.Client
	queue   chan PushJob
	timeout time.Duration

	workers   int
	closeOnce sync.Once
	done      chan struct{}
}

type PushConfig struct {
	QueueSize int
	Workers   int
	// Timeout bounds a single delivery attempt.
	Timeout time.Duration
}

func NewPushSender(log *logger.Logger, client fcm.Client, cfg PushConfig) *PushSender {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &PushSender{
		log:     log.With("component", "PushSender"),
		client:  client,
		queue:   make(chan PushJob, cfg.QueueSize),
		timeout: cfg.Timeout,
		workers: cfg.Workers,
		done:    make(chan struct{}),
	}
}

// Start drains the queue until ctx is cancelled or Close is called. It blocks
// and is meant to be run on its own goroutine.
func (s *PushSender) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-s.done:
					return nil
				case job, ok := <-s.queue:
					if !ok {
						return nil
					}
					s.deliver(ctx, job)
				}
			}
		})
	}
	return g.Wait()
}

// Enqueue never blocks. Without a configured client the sender is a no-op.
func (s *PushSender) Enqueue(job PushJob) {
	if s == nil || s.client == nil {
		return
	}
	if strings.TrimSpace(job.Token) == "" {
		return
	}
	select {
	case s.queue <- job:
	default:
		s.log.Warn("push queue full, dropping notification",
			"recipient_id", job.RecipientID.String(), "title", job.Title)
	}
}

func (s *PushSender) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *PushSender) deliver(ctx context.Context, job PushJob) {
	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.Send(sendCtx, fcm.SendRequest{
		Token: job.Token,
		Title: job.Title,
		Body:  job.Body,
		Data:  job.Data,
	})
	if err != nil {
		// Push delivery is best effort. The persisted notification row is the
		// source of truth either way.
		s.log.Warn("push delivery failed",
			"recipient_id", job.RecipientID.String(), "error", err.Error())
	}
}
