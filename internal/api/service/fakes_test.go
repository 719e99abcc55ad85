package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/cuongbtq/barangay-gigs/internal/api/storage"
)

// memJobStore keeps jobs in memory and enforces the version guard
type memJobStore struct {
	mu   sync.Mutex
	jobs map[string]domain.Job

	// beforeUpdate runs before every conditional write, letting tests
	// interleave a competing writer
	beforeUpdate func(job *domain.Job)
	updateErr    error
	getErr       error
	updates      int
}

func newMemJobStore(jobs ...domain.Job) *memJobStore {
	s := &memJobStore{jobs: map[string]domain.Job{}}
	for _, j := range jobs {
		s.jobs[j.ID] = copyJob(j)
	}
	return s
}

func copyJob(j domain.Job) domain.Job {
	j.Applicants = append([]domain.Applicant{}, j.Applicants...)
	j.RequiredSkills = append([]string{}, j.RequiredSkills...)
	return j
}

func (s *memJobStore) CreateJob(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = copyJob(*job)
	return nil
}

func (s *memJobStore) GetJob(_ context.Context, jobID string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	j, ok := s.jobs[jobID]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	c := copyJob(j)
	return &c, nil
}

func (s *memJobStore) UpdateJob(_ context.Context, job *domain.Job) error {
	if s.beforeUpdate != nil {
		s.beforeUpdate(job)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	if s.updateErr != nil {
		return s.updateErr
	}
	stored, ok := s.jobs[job.ID]
	if !ok || stored.Version != job.Version {
		return domain.ErrVersionConflict
	}
	job.Version++
	s.jobs[job.ID] = copyJob(*job)
	return nil
}

// put overwrites a job as a competing writer would
func (s *memJobStore) put(job domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.Version = s.jobs[job.ID].Version + 1
	s.jobs[job.ID] = copyJob(job)
}

func (s *memJobStore) get(id string) domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyJob(s.jobs[id])
}

func (s *memJobStore) DeleteJob(_ context.Context, jobID string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.jobs[jobID]
	if !ok || stored.Version != version {
		return domain.ErrVersionConflict
	}
	delete(s.jobs, jobID)
	return nil
}

func (s *memJobStore) ListOpenJobs(_ context.Context, filter storage.JobFilter) ([]domain.Job, error) {
	var out []domain.Job
	for _, j := range s.jobs {
		if j.IsOpen() {
			out = append(out, j)
		}
	}
	if len(out) > filter.PageSize+1 {
		out = out[:filter.PageSize+1]
	}
	return out, nil
}

func (s *memJobStore) FindMatchCandidates(_ context.Context, barangay string, skills []string) ([]domain.Job, error) {
	var out []domain.Job
	for _, j := range s.jobs {
		if j.Barangay == barangay {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *memJobStore) SearchJobs(_ context.Context, _ storage.SearchFilter) ([]domain.Job, int, error) {
	return nil, 0, nil
}

func (s *memJobStore) PopularJobs(_ context.Context, _ int) ([]domain.Job, error) {
	return nil, nil
}

func (s *memJobStore) ListJobsByOwner(_ context.Context, ownerID string, withApplicants bool) ([]domain.Job, error) {
	var out []domain.Job
	for _, j := range s.jobs {
		if j.PostedBy == ownerID && (!withApplicants || len(j.Applicants) > 0) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *memJobStore) ListJobsByApplicant(_ context.Context, userID string) ([]domain.Job, error) {
	var out []domain.Job
	for _, j := range s.jobs {
		if _, ok := j.Applicant(userID); ok {
			out = append(out, j)
		}
	}
	return out, nil
}

type fakeUserStore struct {
	users           map[string]domain.User
	matchingWorkers []string
	matchingErr     error
	updated         *domain.ProfileUpdate

	workers      []domain.User
	workersErr   error
	workerFilter domain.WorkerFilter
}

func (f *fakeUserStore) GetUser(_ context.Context, userID string) (*domain.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	f.updated = &update
	u, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if update.Barangay != nil {
		u.Barangay = *update.Barangay
	}
	if update.Skills != nil {
		u.Skills = update.Skills
	}
	return &u, nil
}

func (f *fakeUserStore) FindMatchingWorkers(_ context.Context, _ string, _ []string, _ string) ([]string, error) {
	return f.matchingWorkers, f.matchingErr
}

func (f *fakeUserStore) ListWorkers(_ context.Context, filter domain.WorkerFilter) ([]domain.User, int, error) {
	f.workerFilter = filter
	if f.workersErr != nil {
		return nil, 0, f.workersErr
	}
	return f.workers, len(f.workers), nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	effects []domain.Effect
	calls   int
}

func (n *recordingNotifier) Notify(_ context.Context, effects []domain.Effect) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	n.effects = append(n.effects, effects...)
}

type fakeMetrics struct {
	mu          sync.Mutex
	transitions map[string]int
	conflicts   map[string]int
	matches     []int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{transitions: map[string]int{}, conflicts: map[string]int{}}
}

func (m *fakeMetrics) RecordTransition(op, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions[op+"/"+outcome]++
}

func (m *fakeMetrics) RecordVersionConflict(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts[op]++
}

func (m *fakeMetrics) RecordMatch(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches = append(m.matches, n)
}

// passthroughSanitizer leaves text untouched
type passthroughSanitizer struct{}

func (passthroughSanitizer) Text(raw string) string      { return raw }
func (passthroughSanitizer) Texts(raw []string) []string { return raw }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
