package session

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/dinehub/admin-console/internal/logger"
)

// SweepFunc removes whatever expired at now and reports how many went.
type SweepFunc func(ctx context.Context, now time.Time) (int, error)

// Sweeper runs cleanup jobs on a cron schedule.
type Sweeper struct {
	cron *cron.Cron
	spec string
	log  *logrus.Entry
	jobs []sweepJob
}

type sweepJob struct {
	name string
	fn   SweepFunc
}

// NewSweeper validates spec ("@every 5m", "*/10 * * * *").
func NewSweeper(spec string, log logrus.FieldLogger) (*Sweeper, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("session: sweep schedule %q: %w", spec, err)
	}
	return &Sweeper{
		cron: cron.New(),
		spec: spec,
		log:  logger.Module(log, "session-sweeper"),
	}, nil
}

// Register adds a job. Call before Start.
func (s *Sweeper) Register(name string, fn SweepFunc) {
	s.jobs = append(s.jobs, sweepJob{name: name, fn: fn})
}

// Start schedules the sweep. The scheduled run stops when ctx is done.
func (s *Sweeper) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce runs every job now and returns the total removed.
func (s *Sweeper) RunOnce(ctx context.Context) int {
	now := time.Now()
	total := 0
	for _, j := range s.jobs {
		n, err := j.fn(ctx, now)
		if err != nil {
			s.log.WithError(err).WithField("job", j.name).Error("sweep failed")
			continue
		}
		if n > 0 {
			s.log.WithFields(logrus.Fields{"job": j.name, "removed": n}).Info("swept expired entries")
		}
		total += n
	}
	return total
}
