package handler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/cuongbtq/barangay-gigs/internal/api/dto"
	"github.com/cuongbtq/barangay-gigs/internal/api/storage"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// CreateJob handles POST /api/v1/jobs
// Posts a new job and notifies workers whose skills fit it
func (h *JobHandler) CreateJob(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", slog.String("error", err.Error()))
		badRequest(c, "Invalid request body", "Please check the job details and try again")
		return
	}

	job, notified, err := h.jobs.PostJob(c.Request.Context(), actor, req.ToInput())
	if err != nil {
		respondError(c, h.logger, "post", err)
		return
	}

	h.logger.Info("Job posted",
		slog.String("job_id", job.ID),
		slog.String("posted_by", actor.UserID),
		slog.Int("matches_found", notified),
	)

	c.JSON(http.StatusCreated, dto.PostJobResponse{
		Message:      "Job posted successfully",
		Job:          dto.NewJobResponse(job),
		MatchesFound: notified,
		Alert:        "Job posted! Potential candidates will be notified",
	})
}

// GetJob handles GET /api/v1/jobs/:job_id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, ok := idParam(c, "job_id")
	if !ok {
		return
	}

	job, err := h.jobs.GetJob(c.Request.Context(), jobID)
	if err != nil {
		respondError(c, h.logger, "get", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewJobResponse(job))
}

// ListJobs handles GET /api/v1/jobs
// Lists open jobs newest first with cursor pagination
func (h *JobHandler) ListJobs(c *gin.Context) {
	var req dto.ListJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "Invalid query parameters", "Please check your filters and try again")
		return
	}

	if req.PageSize <= 0 {
		req.PageSize = defaultPageSize
	}
	if req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}

	cursor, err := DecodeJobCursor(req.Cursor)
	if err != nil {
		badRequest(c, "Invalid cursor", "Please reload the job list", "cursor")
		return
	}

	jobs, hasMore, err := h.jobs.ListOpenJobs(c.Request.Context(), storage.JobFilter{
		Barangay: strings.TrimSpace(req.Barangay),
		PageSize: req.PageSize,
		Cursor:   cursor,
	})
	if err != nil {
		respondError(c, h.logger, "list", err)
		return
	}

	resp := dto.ListJobsResponse{
		Jobs:  dto.NewJobResponses(jobs),
		Alert: fmt.Sprintf("Found %d jobs", len(jobs)),
	}
	if hasMore && len(jobs) > 0 {
		last := jobs[len(jobs)-1]
		resp.NextCursor = EncodeJobCursor(&storage.JobCursor{CreatedAt: last.CreatedAt, JobID: last.ID})
	}

	c.JSON(http.StatusOK, resp)
}

// SearchJobs handles GET /api/v1/jobs/search
// Filters open jobs by skill, barangay and price with page/limit pagination
func (h *JobHandler) SearchJobs(c *gin.Context) {
	var req dto.SearchJobsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "Invalid query parameters", "Please check your filters and try again")
		return
	}

	filter, err := searchFilterFrom(req)
	if err != nil {
		badRequest(c, err.Error(), "Please check your filters and try again")
		return
	}

	jobs, total, err := h.jobs.SearchJobs(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, "search", err)
		return
	}

	c.JSON(http.StatusOK, dto.SearchJobsResponse{
		Success: true,
		Data:    dto.NewJobResponses(jobs),
		Filters: dto.SearchFilters{
			Skills:   filter.Skills,
			Barangay: filter.Barangay,
			MinPrice: filter.MinPrice,
			MaxPrice: filter.MaxPrice,
		},
		Pagination: dto.Pagination{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: total,
			Pages: pageCount(total, filter.Limit),
		},
		SortedBy: string(filter.SortBy),
		Alert:    fmt.Sprintf("Found %d jobs", total),
	})
}

func searchFilterFrom(req dto.SearchJobsRequest) (storage.SearchFilter, error) {
	filter := storage.SearchFilter{
		Skills:   domain.NormalizeSkills(strings.Split(req.Skill, ",")),
		Barangay: strings.TrimSpace(req.Barangay),
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		SortBy:   storage.SortDatePosted,
		Page:     req.Page,
		Limit:    req.Limit,
	}

	switch storage.SearchSort(req.SortBy) {
	case "", storage.SortDatePosted:
	case storage.SortPrice, storage.SortApplicants:
		filter.SortBy = storage.SearchSort(req.SortBy)
	default:
		return filter, fmt.Errorf("invalid sortBy %q", req.SortBy)
	}

	switch strings.ToLower(req.Order) {
	case "", "desc":
	case "asc":
		filter.Ascending = true
	default:
		return filter, fmt.Errorf("invalid order %q", req.Order)
	}

	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return filter, fmt.Errorf("minPrice must not exceed maxPrice")
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultSearchLimit
	}
	if filter.Limit > maxSearchLimit {
		filter.Limit = maxSearchLimit
	}

	return filter, nil
}

func pageCount(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// PopularJobs handles GET /api/v1/jobs/popular
func (h *JobHandler) PopularJobs(c *gin.Context) {
	jobs, err := h.jobs.PopularJobs(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "popular", err)
		return
	}

	c.JSON(http.StatusOK, dto.JobsResponse{
		Success: true,
		Jobs:    dto.NewJobResponses(jobs),
	})
}

// Matches handles GET /api/v1/jobs/matches
// Ranks open jobs in the caller's barangay by skill overlap, best first
func (h *JobHandler) Matches(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	limit := h.limits.MatchDefault
	if raw, set := c.GetQuery("limit"); set {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 || n > h.limits.MatchMax {
			badRequest(c, "Invalid limit",
				fmt.Sprintf("limit must be a number between 0 and %d", h.limits.MatchMax), "limit")
			return
		}
		limit = n
	}

	matches, err := h.jobs.Matches(c.Request.Context(), actor.UserID, limit)
	if err != nil {
		respondError(c, h.logger, "match", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMatchResponses(matches))
}

// MyJobs handles GET /api/v1/jobs/my-jobs
func (h *JobHandler) MyJobs(c *gin.Context) {
	h.listForActor(c, "my_jobs", h.jobs.MyJobs)
}

// MyApplications handles GET /api/v1/jobs/my-applications
func (h *JobHandler) MyApplications(c *gin.Context) {
	h.listForActor(c, "my_applications", h.jobs.MyApplications)
}

// ApplicationsReceived handles GET /api/v1/jobs/my-applications-received
func (h *JobHandler) ApplicationsReceived(c *gin.Context) {
	h.listForActor(c, "applications_received", h.jobs.ApplicationsReceived)
}

func (h *JobHandler) listForActor(c *gin.Context, op string, list func(ctx context.Context, actor domain.Actor) ([]domain.Job, error)) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	jobs, err := list(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, op, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewJobResponses(jobs))
}

// Apply handles POST /api/v1/jobs/:job_id/apply
func (h *JobHandler) Apply(c *gin.Context) {
	h.mutate(c, "apply", func(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error) {
		return h.jobs.Apply(ctx, actor, jobID)
	}, "Successfully applied to job", "Application submitted! The employer will be notified.")
}

// CancelApplication handles DELETE /api/v1/jobs/:job_id/cancel-application
func (h *JobHandler) CancelApplication(c *gin.Context) {
	h.mutate(c, "cancel_application", func(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error) {
		return h.jobs.CancelApplication(ctx, actor, jobID)
	}, "Application cancelled successfully", "Your application has been withdrawn")
}

// Assign handles POST /api/v1/jobs/:job_id/assign
func (h *JobHandler) Assign(c *gin.Context) {
	var req dto.ApplicantActionRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		respondError(c, h.logger, "assign", domain.ErrMissingUserID)
		return
	}

	h.mutate(c, "assign", func(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error) {
		return h.jobs.Assign(ctx, actor, jobID, strings.TrimSpace(req.UserID))
	}, "Worker assigned successfully", "The worker has been notified of their assignment")
}

// Reject handles POST /api/v1/jobs/:job_id/reject
func (h *JobHandler) Reject(c *gin.Context) {
	var req dto.ApplicantActionRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		respondError(c, h.logger, "reject", domain.ErrMissingUserID)
		return
	}

	h.mutate(c, "reject", func(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error) {
		return h.jobs.Reject(ctx, actor, jobID, strings.TrimSpace(req.UserID))
	}, "Applicant rejected", "The applicant has been notified")
}

// SetApplicantStatus handles PUT /api/v1/jobs/:job_id/applicants/:user_id
func (h *JobHandler) SetApplicantStatus(c *gin.Context) {
	var req dto.ApplicantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "applicant_status", domain.ErrInvalidApplicantStatus)
		return
	}

	status, err := domain.ParseApplicantStatus(req.Status)
	if err != nil {
		respondError(c, h.logger, "applicant_status", err)
		return
	}

	workerID := c.Param("user_id")
	h.mutate(c, "applicant_status", func(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error) {
		return h.jobs.SetApplicantStatus(ctx, actor, jobID, workerID, status)
	}, "Applicant status updated", fmt.Sprintf("Application marked as %s", status))
}

// CloseJob handles PUT /api/v1/jobs/:job_id/close
func (h *JobHandler) CloseJob(c *gin.Context) {
	h.mutate(c, "close", func(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error) {
		return h.jobs.Close(ctx, actor, jobID)
	}, "Job closed successfully", "This job is no longer accepting applications")
}

// DeleteJob handles DELETE /api/v1/jobs/:job_id
func (h *JobHandler) DeleteJob(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	jobID, ok := idParam(c, "job_id")
	if !ok {
		return
	}

	if err := h.jobs.Delete(c.Request.Context(), actor, jobID); err != nil {
		respondError(c, h.logger, "delete", err)
		return
	}

	h.logger.Info("Job deleted",
		slog.String("job_id", jobID),
		slog.String("user_id", actor.UserID),
	)

	c.JSON(http.StatusOK, dto.MessageResponse{
		Message: "Job deleted successfully",
		Alert:   "Job has been deleted",
	})
}

type jobMutation func(ctx context.Context, actor domain.Actor, jobID string) (*domain.Job, error)

// mutate runs one lifecycle operation on the :job_id job and answers with the
// updated job
func (h *JobHandler) mutate(c *gin.Context, op string, fn jobMutation, message, alert string) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	jobID, ok := idParam(c, "job_id")
	if !ok {
		return
	}

	job, err := fn(c.Request.Context(), actor, jobID)
	if err != nil {
		respondError(c, h.logger, op, err)
		return
	}

	h.logger.Info("Job updated",
		slog.String("operation", op),
		slog.String("job_id", job.ID),
		slog.String("user_id", actor.UserID),
		slog.String("status", string(job.Status)),
	)

	c.JSON(http.StatusOK, dto.JobMutationResponse{
		Message: message,
		Job:     dto.NewJobResponse(job),
		Alert:   alert,
	})
}
