package maintenance

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerRunsSweepJob(t *testing.T) {
	var calls int32
	s := NewScheduler()
	// robfig/cron rounds "@every" intervals below one second up to one
	// second and fires on whole-second boundaries, so the first run
	// lands at most one second after Start.
	if err := s.AddSweep("@every 1s", "test_sweep", func() int {
		atomic.AddInt32(&calls, 1)
		return 0
	}); err != nil {
		t.Fatal(err)
	}
	s.Start()
	defer s.Stop()

	time.Sleep(1500 * time.Millisecond)
	if atomic.LoadInt32(&calls) == 0 {
		t.Fatal("expected AddSweep's job to have run at least once")
	}
}

func TestSchedulerRejectsInvalidSpec(t *testing.T) {
	s := NewScheduler()
	if err := s.AddSweep("not a cron spec", "bad", func() int { return 0 }); err == nil {
		t.Fatal("expected an error for an invalid cron expression")
	}
}
