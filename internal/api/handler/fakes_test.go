package handler

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/cuongbtq/barangay-gigs/internal/api/storage"
	"github.com/gin-gonic/gin"
)

const (
	ownerID  = "11111111-1111-1111-1111-111111111111"
	workerID = "22222222-2222-2222-2222-222222222222"
	jobID    = "33333333-3333-3333-3333-333333333333"
)

var (
	ownerUser  = &domain.User{ID: ownerID, Role: domain.RoleEmployer, Verified: true}
	workerUser = &domain.User{ID: workerID, Role: domain.RoleEmployee, Verified: true, Barangay: "San Roque", Skills: []string{"plumbing"}}
	created    = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
)

func sampleJob() *domain.Job {
	return &domain.Job{
		ID:             jobID,
		Title:          "Fix sink",
		RequiredSkills: []string{"plumbing"},
		Barangay:       "San Roque",
		Price:          500,
		PostedBy:       ownerID,
		Status:         domain.JobStatusOpen,
		Applicants:     []domain.Applicant{},
		Version:        1,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

// fakeJobs records the last call and answers with job/err
type fakeJobs struct {
	job      *domain.Job
	jobs     []domain.Job
	matches  []domain.ScoredJob
	total    int
	hasMore  bool
	notified int
	err      error

	op       string
	actor    domain.Actor
	jobID    string
	workerID string
	status   domain.ApplicantStatus
	limit    int
	input    domain.NewJobInput
	list     storage.JobFilter
	search   storage.SearchFilter
}

func (f *fakeJobs) record(op string, actor domain.Actor, jobID string) {
	f.op, f.actor, f.jobID = op, actor, jobID
}

func (f *fakeJobs) PostJob(_ context.Context, actor domain.Actor, in domain.NewJobInput) (*domain.Job, int, error) {
	f.record("post", actor, "")
	f.input = in
	return f.job, f.notified, f.err
}

func (f *fakeJobs) GetJob(_ context.Context, id string) (*domain.Job, error) {
	f.record("get", domain.Actor{}, id)
	return f.job, f.err
}

func (f *fakeJobs) ListOpenJobs(_ context.Context, filter storage.JobFilter) ([]domain.Job, bool, error) {
	f.op, f.list = "list", filter
	return f.jobs, f.hasMore, f.err
}

func (f *fakeJobs) SearchJobs(_ context.Context, filter storage.SearchFilter) ([]domain.Job, int, error) {
	f.op, f.search = "search", filter
	return f.jobs, f.total, f.err
}

func (f *fakeJobs) PopularJobs(_ context.Context) ([]domain.Job, error) {
	f.op = "popular"
	return f.jobs, f.err
}

func (f *fakeJobs) MyJobs(_ context.Context, actor domain.Actor) ([]domain.Job, error) {
	f.record("my_jobs", actor, "")
	return f.jobs, f.err
}

func (f *fakeJobs) ApplicationsReceived(_ context.Context, actor domain.Actor) ([]domain.Job, error) {
	f.record("applications_received", actor, "")
	return f.jobs, f.err
}

func (f *fakeJobs) MyApplications(_ context.Context, actor domain.Actor) ([]domain.Job, error) {
	f.record("my_applications", actor, "")
	return f.jobs, f.err
}

func (f *fakeJobs) Matches(_ context.Context, userID string, limit int) ([]domain.ScoredJob, error) {
	f.record("match", domain.Actor{UserID: userID}, "")
	f.limit = limit
	return f.matches, f.err
}

func (f *fakeJobs) Apply(_ context.Context, actor domain.Actor, id string) (*domain.Job, error) {
	f.record("apply", actor, id)
	return f.job, f.err
}

func (f *fakeJobs) CancelApplication(_ context.Context, actor domain.Actor, id string) (*domain.Job, error) {
	f.record("cancel", actor, id)
	return f.job, f.err
}

func (f *fakeJobs) Assign(_ context.Context, actor domain.Actor, id, worker string) (*domain.Job, error) {
	f.record("assign", actor, id)
	f.workerID = worker
	return f.job, f.err
}

func (f *fakeJobs) Reject(_ context.Context, actor domain.Actor, id, worker string) (*domain.Job, error) {
	f.record("reject", actor, id)
	f.workerID = worker
	return f.job, f.err
}

func (f *fakeJobs) SetApplicantStatus(_ context.Context, actor domain.Actor, id, worker string, status domain.ApplicantStatus) (*domain.Job, error) {
	f.record("status", actor, id)
	f.workerID, f.status = worker, status
	return f.job, f.err
}

func (f *fakeJobs) Close(_ context.Context, actor domain.Actor, id string) (*domain.Job, error) {
	f.record("close", actor, id)
	return f.job, f.err
}

func (f *fakeJobs) Delete(_ context.Context, actor domain.Actor, id string) error {
	f.record("delete", actor, id)
	return f.err
}

type fakeNotifications struct {
	page    *storage.NotificationPage
	updated int64
	err     error

	op     string
	id     string
	filter domain.NotificationFilter
}

func (f *fakeNotifications) List(_ context.Context, _ domain.Actor, filter domain.NotificationFilter) (*storage.NotificationPage, error) {
	f.op, f.filter = "list", filter
	return f.page, f.err
}

func (f *fakeNotifications) MarkRead(_ context.Context, _ domain.Actor, id string) error {
	f.op, f.id = "mark_read", id
	return f.err
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, _ domain.Actor) (int64, error) {
	f.op = "mark_all_read"
	return f.updated, f.err
}

func (f *fakeNotifications) Delete(_ context.Context, _ domain.Actor, id string) error {
	f.op, f.id = "delete", id
	return f.err
}

type fakeUsers struct {
	user   *domain.User
	err    error
	update domain.ProfileUpdate

	workers []domain.User
	total   int
	filter  domain.WorkerFilter
}

func (f *fakeUsers) Me(_ context.Context, _ string) (*domain.User, error) {
	return f.user, f.err
}

func (f *fakeUsers) UpdateProfile(_ context.Context, _ domain.Actor, update domain.ProfileUpdate) (*domain.User, error) {
	f.update = update
	return f.user, f.err
}

func (f *fakeUsers) ListWorkers(_ context.Context, filter domain.WorkerFilter) ([]domain.User, int, error) {
	f.filter = filter
	return f.workers, f.total, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDeps(jobs *fakeJobs, notifications *fakeNotifications, users *fakeUsers) *Dependencies {
	return &Dependencies{
		Logger:        discardLogger(),
		Jobs:          jobs,
		Notifications: notifications,
		Users:         users,
		Limits:        Limits{MatchDefault: 10, MatchMax: 50},
	}
}

// asUser stands in for the auth middleware
func asUser(user *domain.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			SetUser(c, user)
		}
		c.Next()
	}
}
