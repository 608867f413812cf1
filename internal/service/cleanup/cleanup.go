package cleanup

import (
	"WhatsGrapp/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const runTimeout = time.Minute

// SessionCleaner removes expired sessions.
type SessionCleaner interface {
	CleanupSessions(ctx context.Context) (int64, error)
}

// Service runs the expired session GC on a cron schedule.
type Service struct {
	cron     *cron.Cron
	cleaner  SessionCleaner
	schedule string
	log      *slog.Logger
}

func New(cleaner SessionCleaner, schedule string, log *slog.Logger) *Service {
	return &Service{
		cron:     cron.New(),
		cleaner:  cleaner,
		schedule: schedule,
		log:      log.With(sl.Module("service.cleanup")),
	}
}

// Run schedules the job and blocks until ctx is done. An empty schedule disables it.
func (s *Service) Run(ctx context.Context) error {
	if s.schedule == "" {
		s.log.Info("session cleanup disabled")
		<-ctx.Done()
		return nil
	}

	id, err := s.cron.AddFunc(s.schedule, func() { s.RunOnce(ctx) })
	if err != nil {
		return fmt.Errorf("schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.log.Info("session cleanup scheduled",
		slog.String("schedule", s.schedule),
		slog.Time("next_run", s.cron.Entry(id).Next),
	)

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

// RunOnce removes expired sessions now and returns how many were removed.
func (s *Service) RunOnce(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	removed, err := s.cleaner.CleanupSessions(ctx)
	if err != nil {
		s.log.Error("session cleanup failed", sl.Err(err))
		return 0
	}
	s.log.Debug("session cleanup done", slog.Int64("removed", removed))
	return removed
}
