package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/solosevn/trainingrun/pkg/engine"
)

// Board is one named pipeline the scheduler drives.
type Board struct {
	Name     string
	Pipeline *engine.Pipeline
}

// Scheduler runs every enabled board once per day on a cron schedule.
// Board failures are isolated: one board failing never skips the rest.
type Scheduler struct {
	boards     []Board
	spec       string
	runOnStart bool
}

// New creates a scheduler. An empty spec defaults to 06:00 daily.
func New(boards []Board, spec string, runOnStart bool) *Scheduler {
	if spec == "" {
		spec = "0 6 * * *"
	}
	return &Scheduler{boards: boards, spec: spec, runOnStart: runOnStart}
}

// Run starts the cron loop. Blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(s.spec, func() { s.runAll(ctx) }); err != nil {
		return fmt.Errorf("parse cron spec %q: %w", s.spec, err)
	}

	if s.runOnStart {
		fmt.Fprintln(os.Stderr, "scheduler: initial run...")
		s.runAll(ctx)
	}

	fmt.Fprintf(os.Stderr, "scheduler: running (%d boards, cron %q)\n", len(s.boards), s.spec)
	c.Start()

	<-ctx.Done()
	fmt.Fprintln(os.Stderr, "scheduler: stopping")
	<-c.Stop().Done()
	return ctx.Err()
}

func (s *Scheduler) runAll(ctx context.Context) {
	date := time.Now().UTC().Format("2006-01-02")
	for _, b := range s.boards {
		if ctx.Err() != nil {
			return
		}

		report, err := b.Pipeline.Run(ctx, date, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s error: %v\n", b.Name, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "  %s: %d/%d qualified (%s)\n",
			b.Name, report.Qualified, report.Total, report.Mode)
	}
}
