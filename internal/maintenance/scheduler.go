// Package maintenance runs the guard's periodic housekeeping jobs —
// currently the approval store's extra eviction sweep — on
// robfig/cron expressions instead of a bare time.Ticker, so an
// operator retunes cleanup cadence the same way they would any other
// cron job on the box, via configuration rather than a rebuild.
package maintenance

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps a *cron.Cron with the guard's housekeeping jobs.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler builds a Scheduler. Call AddSweep (or any other job)
// before Start.
func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// AddSweep registers sweep to run on spec (a standard 5-field cron
// expression, or a "@every ..." descriptor). sweep should return the
// number of records it evicted; the count is logged at debug level.
func (s *Scheduler) AddSweep(spec string, name string, sweep func() int) error {
	_, err := s.cron.AddFunc(spec, func() {
		if n := sweep(); n > 0 {
			slog.Debug("maintenance: sweep evicted expired records", "job", name, "count", n)
		}
	})
	return err
}

// Start begins running registered jobs in the background.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the scheduler and waits for any in-flight job to finish.
func (s *Scheduler) Stop() { <-s.cron.Stop().Done() }
