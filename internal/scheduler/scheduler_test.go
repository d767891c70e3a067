package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/qihao/futures-insight/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	calls    int32
}

func (j *countingJob) Name() string { return j.name }
func (j *countingJob) Schedule() string {
	if j.schedule == "" {
		return "0 0 17 * * MON-FRI"
	}
	return j.schedule
}
func (j *countingJob) Run(context.Context) error {
	atomic.AddInt32(&j.calls, 1)
	return nil
}

func TestAddJob_RejectsDuplicatesAndBadSchedules(t *testing.T) {
	s := New(logger.NewNop())

	if err := s.AddJob(&countingJob{name: "daily"}); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if err := s.AddJob(&countingJob{name: "daily"}); err == nil {
		t.Error("duplicate job name should be rejected")
	}
	if err := s.AddJob(&countingJob{name: "bad", schedule: "not a cron spec"}); err == nil {
		t.Error("invalid schedule should be rejected")
	}

	jobs := s.Jobs()
	if len(jobs) != 1 || jobs[0] != "daily" {
		t.Errorf("Jobs() = %v, want [daily]", jobs)
	}
}

func TestRunNow_ExecutesAndRecordsHistory(t *testing.T) {
	s := New(logger.NewNop())
	job := &countingJob{name: "daily"}
	if err := s.AddJob(job); err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	if err := s.RunNow("daily"); err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&job.calls) == 0 {
		select {
		case <-deadline:
			t.Fatal("job never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}

	var last JobResult
	var ok bool
	for waited := 0; waited < 200; waited++ {
		h, err := s.History("daily")
		if err != nil {
			t.Fatalf("History: %v", err)
		}
		s.mu.RLock()
		last, ok = h.Last()
		s.mu.RUnlock()
		if ok {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !ok {
		t.Fatal("no history recorded")
	}
	if !last.Success {
		t.Errorf("result = %+v, want success", last)
	}

	stats := s.Stats()
	if stats["daily"].TotalRuns != 1 || stats["daily"].SuccessRate != 1 {
		t.Errorf("stats = %+v", stats["daily"])
	}
}

func TestRunNow_UnknownJob(t *testing.T) {
	s := New(logger.NewNop())
	if err := s.RunNow("ghost"); err == nil {
		t.Error("unknown job should error")
	}
}
