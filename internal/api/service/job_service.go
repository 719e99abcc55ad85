// Package service runs the job marketplace operations: it loads state from the
// stores, applies the domain transitions, writes them back under a version
// guard and hands the resulting notifications to the notifier.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/cuongbtq/barangay-gigs/internal/api/storage"
	"github.com/cuongbtq/barangay-gigs/internal/metrics"
	"github.com/google/uuid"
)

// maxWriteAttempts bounds how often a transition is replayed after losing a
// concurrent write
const maxWriteAttempts = 3

// PopularJobsLimit is the size of the popular jobs listing
const PopularJobsLimit = 10

type JobStore interface {
	CreateJob(ctx context.Context, job *domain.Job) error
	GetJob(ctx context.Context, jobID string) (*domain.Job, error)
	UpdateJob(ctx context.Context, job *domain.Job) error
	DeleteJob(ctx context.Context, jobID string, version int) error
	ListOpenJobs(ctx context.Context, filter storage.JobFilter) ([]domain.Job, error)
	FindMatchCandidates(ctx context.Context, barangay string, skills []string) ([]domain.Job, error)
	SearchJobs(ctx context.Context, filter storage.SearchFilter) ([]domain.Job, int, error)
	PopularJobs(ctx context.Context, limit int) ([]domain.Job, error)
	ListJobsByOwner(ctx context.Context, ownerID string, withApplicants bool) ([]domain.Job, error)
	ListJobsByApplicant(ctx context.Context, userID string) ([]domain.Job, error)
}

type UserStore interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error)
	FindMatchingWorkers(ctx context.Context, barangay string, skills []string, excludeID string) ([]string, error)
	ListWorkers(ctx context.Context, filter domain.WorkerFilter) ([]domain.User, int, error)
}

// Notifier dispatches the effects of a committed transition
type Notifier interface {
	Notify(ctx context.Context, effects []domain.Effect)
}

type Metrics interface {
	RecordTransition(operation, outcome string)
	RecordVersionConflict(operation string)
	RecordMatch(results int)
}

// TextSanitizer cleans user-supplied text before it is stored
type TextSanitizer interface {
	Text(raw string) string
	Texts(raw []string) []string
}

type JobService struct {
	jobs      JobStore
	users     UserStore
	notifier  Notifier
	metrics   Metrics
	sanitizer TextSanitizer
	logger    *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewJobService(
	jobs JobStore,
	users UserStore,
	notifier Notifier,
	metrics Metrics,
	sanitizer TextSanitizer,
	logger *slog.Logger,
) *JobService {
	return &JobService{
		jobs:      jobs,
		users:     users,
		notifier:  notifier,
		metrics:   metrics,
		sanitizer: sanitizer,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// storeFailure passes tagged errors through and hides anything else behind a
// StoreFailure after logging it
func (s *JobService) storeFailure(op string, err error) error {
	return wrapStoreErr(s.logger, op, err)
}

func wrapStoreErr(logger *slog.Logger, op string, err error) error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return err
	}
	logger.Error("Store operation failed",
		slog.String("operation", op),
		slog.Any("error", err),
	)
	return domain.StoreError(err)
}

// PostJob stores a new open job and tells matching workers about it. It
// returns the job and the number of workers notified.
func (s *JobService) PostJob(ctx context.Context, actor domain.Actor, in domain.NewJobInput) (*domain.Job, int, error) {
	in.Title = s.sanitizer.Text(in.Title)
	in.Description = s.sanitizer.Text(in.Description)
	in.Location = s.sanitizer.Text(in.Location)
	in.Barangay = s.sanitizer.Text(in.Barangay)
	in.RequiredSkills = s.sanitizer.Texts(in.RequiredSkills)

	job, err := domain.NewJob(s.newID(), in, actor.UserID, s.now())
	if err != nil {
		s.metrics.RecordTransition("post", metrics.OutcomeRejected)
		return nil, 0, err
	}

	if err := s.jobs.CreateJob(ctx, job); err != nil {
		s.metrics.RecordTransition("post", metrics.OutcomeError)
		return nil, 0, s.storeFailure("post", err)
	}
	s.metrics.RecordTransition("post", metrics.OutcomeOK)

	s.logger.Info("Job posted",
		slog.String("job_id", job.ID),
		slog.String("user_id", actor.UserID),
		slog.String("barangay", job.Barangay),
	)

	workers, err := s.users.FindMatchingWorkers(ctx, job.Barangay, job.RequiredSkills, job.PostedBy)
	if err != nil {
		s.logger.Warn("Failed to find matching workers",
			slog.String("job_id", job.ID),
			slog.Any("error", err),
		)
		return job, 0, nil
	}

	s.notifier.Notify(ctx, domain.JobMatchEffects(job, workers))
	return job, len(workers), nil
}

func (s *JobService) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := s.jobs.GetJob(ctx, jobID)
	if err != nil {
		return nil, s.storeFailure("get", err)
	}
	return job, nil
}

// ListOpenJobs returns a page of open jobs and whether more remain
func (s *JobService) ListOpenJobs(ctx context.Context, filter storage.JobFilter) ([]domain.Job, bool, error) {
	jobs, err := s.jobs.ListOpenJobs(ctx, filter)
	if err != nil {
		return nil, false, s.storeFailure("list", err)
	}

	hasMore := len(jobs) > filter.PageSize
	if hasMore {
		jobs = jobs[:filter.PageSize]
	}
	return jobs, hasMore, nil
}

func (s *JobService) SearchJobs(ctx context.Context, filter storage.SearchFilter) ([]domain.Job, int, error) {
	jobs, total, err := s.jobs.SearchJobs(ctx, filter)
	if err != nil {
		return nil, 0, s.storeFailure("search", err)
	}
	return jobs, total, nil
}

func (s *JobService) PopularJobs(ctx context.Context) ([]domain.Job, error) {
	jobs, err := s.jobs.PopularJobs(ctx, PopularJobsLimit)
	if err != nil {
		return nil, s.storeFailure("popular", err)
	}
	return jobs, nil
}

// MyJobs lists the jobs actor posted
func (s *JobService) MyJobs(ctx context.Context, actor domain.Actor) ([]domain.Job, error) {
	jobs, err := s.jobs.ListJobsByOwner(ctx, actor.UserID, false)
	if err != nil {
		return nil, s.storeFailure("my_jobs", err)
	}
	return jobs, nil
}

// ApplicationsReceived lists actor's jobs that have at least one applicant
func (s *JobService) ApplicationsReceived(ctx context.Context, actor domain.Actor) ([]domain.Job, error) {
	jobs, err := s.jobs.ListJobsByOwner(ctx, actor.UserID, true)
	if err != nil {
		return nil, s.storeFailure("applications_received", err)
	}
	return jobs, nil
}

// MyApplications lists the jobs actor applied to
func (s *JobService) MyApplications(ctx context.Context, actor domain.Actor) ([]domain.Job, error) {
	jobs, err := s.jobs.ListJobsByApplicant(ctx, actor.UserID)
	if err != nil {
		return nil, s.storeFailure("my_applications", err)
	}
	return jobs, nil
}

// Matches ranks the open jobs in userID's barangay by skill overlap
func (s *JobService) Matches(ctx context.Context, userID string, limit int) ([]domain.ScoredJob, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, s.storeFailure("match", err)
	}

	worker := user.AsWorker()
	candidates, err := s.jobs.FindMatchCandidates(ctx, worker.Barangay, worker.Skills)
	if err != nil {
		return nil, s.storeFailure("match", err)
	}

	matches := domain.Match(candidates, worker, limit)
	s.metrics.RecordMatch(len(matches))

	s.logger.Debug("Jobs matched",
		slog.String("user_id", userID),
		slog.Int("candidates", len(candidates)),
		slog.Int("matches", len(matches)),
	)
	return matches, nil
}

func (s *JobService) Apply(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error) {
	return s.mutate(ctx, "apply", jobID, func(job *domain.Job) ([]domain.Effect, error) {
		return job.Apply(actor, s.now())
	})
}

func (s *JobService) CancelApplication(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error) {
	return s.mutate(ctx, "cancel_application", jobID, func(job *domain.Job) ([]domain.Effect, error) {
		return job.CancelApplication(actor)
	})
}

func (s *JobService) Assign(ctx context.Context, actor domain.Actor, jobID, workerID string) (*domain.Job, error) {
	return s.mutate(ctx, "assign", jobID, func(job *domain.Job) ([]domain.Effect, error) {
		return job.Assign(actor, workerID)
	})
}

func (s *JobService) Reject(ctx context.Context, actor domain.Actor, jobID, workerID string) (*domain.Job, error) {
	return s.mutate(ctx, "reject", jobID, func(job *domain.Job) ([]domain.Effect, error) {
		return job.Reject(actor, workerID)
	})
}

func (s *JobService) SetApplicantStatus(ctx context.Context, actor domain.Actor, jobID, workerID string, status domain.ApplicantStatus) (*domain.Job, error) {
	return s.mutate(ctx, "set_applicant_status", jobID, func(job *domain.Job) ([]domain.Effect, error) {
		return job.SetApplicantStatus(actor, workerID, status)
	})
}

func (s *JobService) Close(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error) {
	return s.mutate(ctx, "close", jobID, func(job *domain.Job) ([]domain.Effect, error) {
		return job.Close(actor)
	})
}

// Delete removes the job in any state. Pending applicants are not notified.
func (s *JobService) Delete(ctx context.Context, actor domain.Actor, jobID string) error {
	const op = "delete"

	for attempt := 1; ; attempt++ {
		job, err := s.jobs.GetJob(ctx, jobID)
		if err != nil {
			s.metrics.RecordTransition(op, outcomeOf(err))
			return s.storeFailure(op, err)
		}
		if err := job.AuthorizeDelete(actor); err != nil {
			s.metrics.RecordTransition(op, metrics.OutcomeRejected)
			return err
		}

		err = s.jobs.DeleteJob(ctx, jobID, job.Version)
		if errors.Is(err, domain.ErrVersionConflict) {
			s.metrics.RecordVersionConflict(op)
			if attempt < maxWriteAttempts {
				continue
			}
			s.metrics.RecordTransition(op, metrics.OutcomeConflict)
			return err
		}
		if err != nil {
			s.metrics.RecordTransition(op, metrics.OutcomeError)
			return s.storeFailure(op, err)
		}

		s.metrics.RecordTransition(op, metrics.OutcomeOK)
		s.logger.Info("Job deleted",
			slog.String("job_id", jobID),
			slog.String("user_id", actor.UserID),
		)
		return nil
	}
}

type transition func(job *domain.Job) ([]domain.Effect, error)

// mutate loads the job, applies fn and writes the result back under the
// version guard. A lost race replays fn against fresh state, so a transition
// whose precondition no longer holds fails instead of overwriting the winner.
// A transition that leaves the lifecycle state as it was is neither written
// nor notified.
func (s *JobService) mutate(ctx context.Context, op, jobID string, fn transition) (*domain.Job, error) {
	for attempt := 1; ; attempt++ {
		job, err := s.jobs.GetJob(ctx, jobID)
		if err != nil {
			s.metrics.RecordTransition(op, outcomeOf(err))
			return nil, s.storeFailure(op, err)
		}

		before := job.Clone()
		effects, err := fn(job)
		if err != nil {
			s.metrics.RecordTransition(op, metrics.OutcomeRejected)
			s.logger.Debug("Transition refused",
				slog.String("operation", op),
				slog.String("job_id", jobID),
				slog.String("reason", err.Error()),
			)
			return nil, err
		}

		if job.SameLifecycleState(before) {
			s.metrics.RecordTransition(op, metrics.OutcomeUnchanged)
			s.logger.Debug("Transition left job unchanged",
				slog.String("operation", op),
				slog.String("job_id", jobID),
			)
			return job, nil
		}

		err = s.jobs.UpdateJob(ctx, job)
		if errors.Is(err, domain.ErrVersionConflict) {
			s.metrics.RecordVersionConflict(op)
			if attempt < maxWriteAttempts {
				s.logger.Debug("Retrying transition after version conflict",
					slog.String("operation", op),
					slog.String("job_id", jobID),
					slog.Int("attempt", attempt),
				)
				continue
			}
			s.metrics.RecordTransition(op, metrics.OutcomeConflict)
			return nil, err
		}
		if err != nil {
			s.metrics.RecordTransition(op, metrics.OutcomeError)
			return nil, s.storeFailure(op, err)
		}

		s.metrics.RecordTransition(op, metrics.OutcomeOK)
		s.notifier.Notify(ctx, effects)
		return job, nil
	}
}

func outcomeOf(err error) string {
	if domain.KindOf(err) == domain.KindStore {
		return metrics.OutcomeError
	}
	return metrics.OutcomeRejected
}
