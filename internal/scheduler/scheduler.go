// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs background maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single job run.
const jobTimeout = 2 * time.Minute

// JobFunc is the body of a scheduled job.
type JobFunc func(ctx context.Context) error

type job struct {
	name        string
	description string
	schedule    string
	entryID     cron.EntryID
	run         JobFunc
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name        string
	Description string
	Schedule    string
	LastRun     time.Time
	NextRun     time.Time
	LastError   string
}

// Scheduler owns the cron instance and the registered jobs.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.RWMutex
	jobs    map[string]*job
	lastErr map[string]string
}

// New creates a new scheduler instance.
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:  logger,
		jobs:    make(map[string]*job),
		lastErr: make(map[string]string),
	}
}

// Add registers fn under name with a standard five-field cron schedule.
func (s *Scheduler) Add(name, description, schedule string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job already registered: %s", name)
	}

	j := &job{name: name, description: description, schedule: schedule, run: fn}
	id, err := s.cron.AddFunc(schedule, func() { s.execute(j) })
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", schedule, err)
	}
	j.entryID = id
	s.jobs[name] = j

	s.logger.Debug("registered scheduled job", "name", name, "schedule", schedule)
	return nil
}

// Start begins running jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// TriggerNow runs a job immediately on the calling goroutine.
func (s *Scheduler) TriggerNow(name string) error {
	s.mu.RLock()
	j, ok := s.jobs[name]
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("job not found: %s", name)
	}

	s.logger.Info("manually triggering job", "name", name)
	return s.execute(j)
}

// List returns all registered jobs sorted by name.
func (s *Scheduler) List() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		entry := s.cron.Entry(j.entryID)
		result = append(result, JobInfo{
			Name:        j.name,
			Description: j.description,
			Schedule:    j.schedule,
			LastRun:     entry.Prev,
			NextRun:     entry.Next,
			LastError:   s.lastErr[j.name],
		})
	}

	sort.Slice(result, func(i, k int) bool { return result[i].Name < result[k].Name })
	return result
}

func (s *Scheduler) execute(j *job) error {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	err := j.run(ctx)

	s.mu.Lock()
	if err != nil {
		s.lastErr[j.name] = err.Error()
	} else {
		delete(s.lastErr, j.name)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduled job failed", "job", j.name, "error", err)
		return err
	}
	s.logger.Debug("scheduled job finished", "job", j.name, "duration", time.Since(start))
	return nil
}
