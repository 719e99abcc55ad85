package handler

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/cuongbtq/barangay-gigs/internal/api/storage"
)

// JobService is the part of the job service the handlers call
type JobService interface {
	PostJob(ctx context.Context, actor domain.Actor, in domain.NewJobInput) (*domain.Job, int, error)
	GetJob(ctx context.Context, jobID string) (*domain.Job, error)
	ListOpenJobs(ctx context.Context, filter storage.JobFilter) ([]domain.Job, bool, error)
	SearchJobs(ctx context.Context, filter storage.SearchFilter) ([]domain.Job, int, error)
	PopularJobs(ctx context.Context) ([]domain.Job, error)
	MyJobs(ctx context.Context, actor domain.Actor) ([]domain.Job, error)
	ApplicationsReceived(ctx context.Context, actor domain.Actor) ([]domain.Job, error)
	MyApplications(ctx context.Context, actor domain.Actor) ([]domain.Job, error)
	Matches(ctx context.Context, userID string, limit int) ([]domain.ScoredJob, error)
	Apply(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error)
	CancelApplication(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error)
	Assign(ctx context.Context, actor domain.Actor, jobID, workerID string) (*domain.Job, error)
	Reject(ctx context.Context, actor domain.Actor, jobID, workerID string) (*domain.Job, error)
	SetApplicantStatus(ctx context.Context, actor domain.Actor, jobID, workerID string, status domain.ApplicantStatus) (*domain.Job, error)
	Close(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error)
	Delete(ctx context.Context, actor domain.Actor, jobID string) error
}

type NotificationService interface {
	List(ctx context.Context, actor domain.Actor, filter domain.NotificationFilter) (*storage.NotificationPage, error)
	MarkRead(ctx context.Context, actor domain.Actor, notificationID string) error
	MarkAllRead(ctx context.Context, actor domain.Actor) (int64, error)
	Delete(ctx context.Context, actor domain.Actor, notificationID string) error
}

type UserService interface {
	Me(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, update domain.ProfileUpdate) (*domain.User, error)
	ListWorkers(ctx context.Context, filter domain.WorkerFilter) ([]domain.User, int, error)
}

// Limits bounds the page and result sizes clients may ask for
type Limits struct {
	MatchDefault int
	MatchMax     int
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger        *slog.Logger
	Jobs          JobService
	Notifications NotificationService
	Users         UserService
	Limits        Limits
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger *slog.Logger
	jobs   JobService
	limits Limits
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger: deps.Logger,
		jobs:   deps.Jobs,
		limits: deps.Limits,
	}
}

// NotificationHandler serves the caller's notification inbox
type NotificationHandler struct {
	logger        *slog.Logger
	notifications NotificationService
}

func NewNotificationHandler(deps *Dependencies) *NotificationHandler {
	return &NotificationHandler{
		logger:        deps.Logger,
		notifications: deps.Notifications,
	}
}

// UserHandler serves the caller's own profile
type UserHandler struct {
	logger *slog.Logger
	users  UserService
}

func NewUserHandler(deps *Dependencies) *UserHandler {
	return &UserHandler{
		logger: deps.Logger,
		users:  deps.Users,
	}
}
