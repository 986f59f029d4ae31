// Package broadcast fans a notification out to every registered user.
// Recipients that are permanently unreachable, such as users who blocked
// the bot, are dropped from the registry so the audience self-cleans.
package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/teamhackers/boardbooster/core/logger"
	"github.com/teamhackers/boardbooster/users"
)

// Sender delivers one message to one recipient.
type Sender interface {
	Send(ctx context.Context, userID int64, text string) error
}

// Result summarizes one fan-out.
type Result struct {
	Sent    int
	Removed int // permanently unreachable, dropped from the registry
	Failed  int // transient failures, kept for next time
	Skipped int // blocked users, never attempted
}

// Service runs broadcasts with a bounded worker pool.
type Service struct {
	reg     users.Registry
	send    Sender
	workers int
}

func New(reg users.Registry, send Sender, workers int) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{reg: reg, send: send, workers: workers}
}

// SendAll delivers text to every non-blocked registered user and reports
// the outcome. The error is non-nil only when the audience cannot be read.
func (s *Service) SendAll(ctx context.Context, text string) (Result, error) {
	start := time.Now()
	audience, err := s.reg.List(ctx)
	if err != nil {
		return Result{}, err
	}
	now := time.Now()

	jobs := make(chan users.User)
	var mu sync.Mutex
	var res Result
	var wg sync.WaitGroup

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				err := s.send.Send(ctx, u.ID, text)
				mu.Lock()
				switch {
				case err == nil:
					res.Sent++
				case permanent(err):
					res.Removed++
				default:
					res.Failed++
				}
				mu.Unlock()
				if err != nil && permanent(err) {
					if rerr := s.reg.Remove(ctx, u.ID); rerr != nil {
						logger.BCAST.Log(ctx, slog.LevelWarn, "recipient remove failed",
							slog.String("event", "broadcast.remove"),
							slog.Int64("user_id", u.ID),
							slog.String("error", rerr.Error()),
						)
					}
				}
			}
		}()
	}

	for _, u := range audience {
		if u.BlockedAt(now) {
			mu.Lock()
			res.Skipped++
			mu.Unlock()
			continue
		}
		select {
		case jobs <- u:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return res, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	logger.BCAST.Log(ctx, slog.LevelInfo, "broadcast done",
		slog.String("event", "broadcast.done"),
		slog.Int("sent", res.Sent),
		slog.Int("removed", res.Removed),
		slog.Int("failed", res.Failed),
		slog.Int("skipped", res.Skipped),
		slog.Duration("duration", logger.Took(start)),
	)
	return res, nil
}

// permanent reports whether a delivery error can never succeed for this
// recipient again.
func permanent(err error) bool {
	switch {
	case errors.Is(err, tele.ErrBlockedByUser),
		errors.Is(err, tele.ErrUserIsDeactivated),
		errors.Is(err, tele.ErrChatNotFound):
		return true
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 403
	}
	return false
}
