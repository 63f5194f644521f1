// Package jobs owns the background schedule: registration, introspection and
// runtime control of the recurring work.
package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"careertrack-backend/internal/apperrors"
)

// maxConcurrentJobs bounds the scheduler's worker pool. Overlapping runs of
// the same job are prevented separately by singleton mode.
const maxConcurrentJobs = 4

// JobStatus is the introspection view of one registered job.
type JobStatus struct {
	ID      string     `json:"id"`
	Trigger string     `json:"trigger"`
	Paused  bool       `json:"paused"`
	NextRun *time.Time `json:"next_run,omitempty"`
}

type managedJob struct {
	id         string
	trigger    string
	definition gocron.JobDefinition
	task       func()
	handle     gocron.Job
	paused     bool
}

// Service wraps the gocron scheduler with named jobs that can be listed,
// triggered, paused and resumed individually.
type Service struct {
	sched gocron.Scheduler
	log   *zap.Logger

	mu    sync.Mutex
	byID  map[string]*managedJob
	order []string
}

func NewService(log *zap.Logger) (*Service, error) {
	sched, err := gocron.NewScheduler(
		gocron.WithLimitConcurrentJobs(maxConcurrentJobs, gocron.LimitModeWait),
	)
	if err != nil {
		return nil, err
	}
	return &Service{
		sched: sched,
		log:   log,
		byID:  make(map[string]*managedJob),
	}, nil
}

// Register adds a job under a stable id. The task is wrapped so a panic is
// logged and contained instead of killing the scheduler.
func (s *Service) Register(id, trigger string, definition gocron.JobDefinition, task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[id]; exists {
		return fmt.Errorf("job %q already registered", id)
	}

	j := &managedJob{id: id, trigger: trigger, definition: definition}
	j.task = s.contain(id, task)

	handle, err := s.schedule(j)
	if err != nil {
		return err
	}
	j.handle = handle
	s.byID[id] = j
	s.order = append(s.order, id)
	s.log.Info("job registered", zap.String("job", id), zap.String("trigger", trigger))
	return nil
}

func (s *Service) schedule(j *managedJob) (gocron.Job, error) {
	return s.sched.NewJob(
		j.definition,
		gocron.NewTask(j.task),
		gocron.WithName(j.id),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
}

func (s *Service) contain(id string, task func()) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("job panicked", zap.String("job", id), zap.Any("panic", r))
			}
		}()
		start := time.Now()
		task()
		s.log.Debug("job finished", zap.String("job", id), zap.Duration("elapsed", time.Since(start)))
	}
}

// Start begins executing registered jobs on their triggers.
func (s *Service) Start() {
	s.sched.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.order)))
}

// Shutdown stops the scheduler, waiting for running jobs.
func (s *Service) Shutdown() error {
	return s.sched.Shutdown()
}

// Status lists every job in registration order.
func (s *Service) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.order))
	for _, id := range s.order {
		j := s.byID[id]
		st := JobStatus{ID: j.id, Trigger: j.trigger, Paused: j.paused}
		if !j.paused && j.handle != nil {
			if next, err := j.handle.NextRun(); err == nil {
				st.NextRun = &next
			}
		}
		out = append(out, st)
	}
	return out
}

// RunNow triggers a job off-schedule. Singleton mode still applies: a run
// already in flight makes this a no-op reschedule.
func (s *Service) RunNow(id string) error {
	s.mu.Lock()
	j, ok := s.byID[id]
	s.mu.Unlock()
	if !ok {
		return apperrors.ErrUnknownJob
	}
	if j.paused {
		// A paused job can still be triggered explicitly.
		go j.task()
		return nil
	}
	return j.handle.RunNow()
}

// Pause removes the job from the schedule. Its definition is kept so Resume
// can re-add it.
func (s *Service) Pause(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.byID[id]
	if !ok {
		return apperrors.ErrUnknownJob
	}
	if j.paused {
		return nil
	}
	if err := s.sched.RemoveJob(j.handle.ID()); err != nil {
		return err
	}
	j.handle = nil
	j.paused = true
	s.log.Info("job paused", zap.String("job", id))
	return nil
}

// Resume re-adds a paused job on its original trigger.
func (s *Service) Resume(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.byID[id]
	if !ok {
		return apperrors.ErrUnknownJob
	}
	if !j.paused {
		return nil
	}
	handle, err := s.schedule(j)
	if err != nil {
		return err
	}
	j.handle = handle
	j.paused = false
	s.log.Info("job resumed", zap.String("job", id))
	return nil
}
