// internal/app/assignment_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"question_cycle_service/internal/domain/cycle"
	"question_cycle_service/internal/domain/question"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// AssignmentCache holds the question currently assigned to each region.
type AssignmentCache interface {
	Get(ctx context.Context, region string) (*question.Question, bool)
	Set(ctx context.Context, region string, q *question.Question, ttl time.Duration)
}

// Metrics receives counters from the read path and the rollover job.
type Metrics interface {
	RecordCacheLookup(hit bool)
	RecordStoreLookup(result string)
	RecordRollover(result string, refreshed int)
}

// Store lookup and rollover outcomes reported to Metrics.
const (
	ResultFound    = "found"
	ResultNotFound = "not_found"
	ResultError    = "error"
	ResultSuccess  = "success"
)

// Assignment is the outcome of resolving a region. Question is nil when nothing
// is assigned to the region for Cycle.
type Assignment struct {
	Region    string
	Cycle     int
	Question  *question.Question
	FromCache bool
}

func (a Assignment) Found() bool {
	return a.Question != nil
}

// Message describes a missing assignment.
func (a Assignment) Message() string {
	return fmt.Sprintf("No question found for the current cycle: %d", a.Cycle)
}

// RolloverResult summarizes one refresh of the cached assignments.
type RolloverResult struct {
	Cycle     int
	Regions   []string
	StartedAt time.Time
}

// CycleInfo describes where now falls in the schedule.
type CycleInfo struct {
	Cycle     int
	StartedAt time.Time
	NextStart time.Time
	Timezone  string
}

type nopMetrics struct{}

func (nopMetrics) RecordCacheLookup(bool)     {}
func (nopMetrics) RecordStoreLookup(string)   {}
func (nopMetrics) RecordRollover(string, int) {}

// AssignmentService resolves the question of the cycle for a region and keeps the
// assignment cache in step with the schedule.
type AssignmentService struct {
	repo     question.Repository
	cache    AssignmentCache
	cycleCfg cycle.Config
	ttl      time.Duration
	now      func() time.Time
	metrics  Metrics
	logger   *logrus.Entry
	misses   *singleflight.Group // nil unless miss coalescing is enabled
}

type Option func(*AssignmentService)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *AssignmentService) { s.now = now }
}

func WithMetrics(m Metrics) Option {
	return func(s *AssignmentService) { s.metrics = m }
}

func WithLogger(l *logrus.Entry) Option {
	return func(s *AssignmentService) { s.logger = l }
}

// WithMissCoalescing makes concurrent misses for the same region share one store query.
func WithMissCoalescing() Option {
	return func(s *AssignmentService) { s.misses = &singleflight.Group{} }
}

func NewAssignmentService(
	repo question.Repository,
	cache AssignmentCache,
	cycleCfg cycle.Config,
	ttl time.Duration,
	opts ...Option,
) *AssignmentService {
	s := &AssignmentService{
		repo:     repo,
		cache:    cache,
		cycleCfg: cycleCfg,
		ttl:      ttl,
		now:      time.Now,
		metrics:  nopMetrics{},
		logger:   logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CurrentCycle returns the cycle number for the service clock.
func (s *AssignmentService) CurrentCycle() int {
	return cycle.Current(s.cycleCfg, s.now())
}

// CycleInfo reports the current cycle and its boundaries.
func (s *AssignmentService) CycleInfo() CycleInfo {
	n := s.CurrentCycle()
	return CycleInfo{
		Cycle:     n,
		StartedAt: cycle.StartOf(s.cycleCfg, n),
		NextStart: cycle.StartOf(s.cycleCfg, n+1),
		Timezone:  s.cycleCfg.Location.String(),
	}
}

// Resolve returns the question assigned to region. A fresh cache entry is returned
// without computing the cycle or touching the store. On a miss the store is queried
// for the current cycle and a found question is cached; a missing question is not.
func (s *AssignmentService) Resolve(ctx context.Context, region string) (Assignment, error) {
	if q, ok := s.cache.Get(ctx, region); ok {
		s.metrics.RecordCacheLookup(true)
		return Assignment{Region: region, Cycle: q.AssignedCycle, Question: q, FromCache: true}, nil
	}
	s.metrics.RecordCacheLookup(false)

	if s.misses == nil {
		return s.resolveMiss(ctx, region)
	}
	v, err, _ := s.misses.Do(region, func() (interface{}, error) {
		return s.resolveMiss(ctx, region)
	})
	if err != nil {
		return Assignment{Region: region}, err
	}
	return v.(Assignment), nil
}

func (s *AssignmentService) resolveMiss(ctx context.Context, region string) (Assignment, error) {
	current := s.CurrentCycle()
	logCtx := s.logger.WithFields(logrus.Fields{"region": region, "cycle": current})

	q, err := s.repo.FindOne(ctx, region, current)
	if err != nil {
		if errors.Is(err, question.ErrNotFound) {
			s.metrics.RecordStoreLookup(ResultNotFound)
			logCtx.Debug("No question assigned for current cycle")
			return Assignment{Region: region, Cycle: current}, nil
		}
		s.metrics.RecordStoreLookup(ResultError)
		logCtx.WithError(err).Error("Failed to look up assigned question")
		return Assignment{Region: region, Cycle: current}, fmt.Errorf("failed to find question for region %q cycle %d: %w", region, current, err)
	}
	s.metrics.RecordStoreLookup(ResultFound)

	s.cache.Set(ctx, region, q, s.ttl)
	logCtx.WithField("question_id", q.ID).Debug("Cached assigned question")
	return Assignment{Region: region, Cycle: current, Question: q}, nil
}

// RefreshAssignments writes every question assigned to the current cycle into the
// cache, overwriting whatever its region held. Regions without such a question are
// left alone.
func (s *AssignmentService) RefreshAssignments(ctx context.Context) (RolloverResult, error) {
	result := RolloverResult{StartedAt: s.now()}
	result.Cycle = cycle.Current(s.cycleCfg, result.StartedAt)

	all, err := s.repo.FindAll(ctx)
	if err != nil {
		s.metrics.RecordRollover(ResultError, 0)
		return result, fmt.Errorf("failed to load questions for cycle %d: %w", result.Cycle, err)
	}

	for _, q := range assignedTo(all, result.Cycle) {
		s.cache.Set(ctx, q.Region, q, s.ttl)
		result.Regions = append(result.Regions, q.Region)
	}
	s.metrics.RecordRollover(ResultSuccess, len(result.Regions))
	return result, nil
}

func assignedTo(questions []*question.Question, n int) []*question.Question {
	out := make([]*question.Question, 0)
	for _, q := range questions {
		if q != nil && q.AssignedCycle == n {
			out = append(out, q)
		}
	}
	return out
}

// CreateQuestion validates and stores a new question. The cache is not touched;
// the question becomes visible at its cycle's rollover or on the next miss.
func (s *AssignmentService) CreateQuestion(ctx context.Context, region, text string, assignedCycle int) (*question.Question, error) {
	if err := question.Validate(region, text, assignedCycle); err != nil {
		return nil, err
	}
	q := &question.Question{Region: region, Text: text, AssignedCycle: assignedCycle}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to create question in repository: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"question_id": q.ID,
		"region":      q.Region,
		"cycle":       q.AssignedCycle,
	}).Info("Question created")
	return q, nil
}

// ListQuestions returns every stored question.
func (s *AssignmentService) ListQuestions(ctx context.Context) ([]*question.Question, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return all, nil
}
