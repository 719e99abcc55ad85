package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/cuongbtq/barangay-gigs/internal/api/model"
	"github.com/lib/pq"
)

const jobColumns = `
	job_id, title, description, required_skills, barangay, location,
	price, posted_by, status, assigned_to, applicants, version,
	created_at, updated_at`

func (s *Storage) CreateJob(ctx context.Context, job *domain.Job) error {
	row := model.JobFromDomain(job)
	query := `
		INSERT INTO jobs (
			job_id, title, description, required_skills, barangay, location,
			price, posted_by, status, assigned_to, applicants, version,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		row.JobID,
		row.Title,
		row.Description,
		row.RequiredSkills,
		row.Barangay,
		row.Location,
		row.Price,
		row.PostedBy,
		row.Status,
		row.AssignedTo,
		row.Applicants,
		row.Version,
		row.CreatedAt,
		row.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

func (s *Storage) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	var row model.Job
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1`

	err := s.db.GetContext(ctx, &row, query, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	job := row.ToDomain()
	return &job, nil
}

// UpdateJob writes the mutable part of job only if the stored version still
// equals job.Version. On success job carries the new version.
func (s *Storage) UpdateJob(ctx context.Context, job *domain.Job) error {
	row := model.JobFromDomain(job)
	query := `
		UPDATE jobs
		SET status = $1,
			assigned_to = $2,
			applicants = $3,
			version = version + 1,
			updated_at = NOW()
		WHERE job_id = $4 AND version = $5
		RETURNING version, updated_at
	`

	var (
		version   int
		updatedAt time.Time
	)
	err := s.db.QueryRowxContext(ctx, query,
		row.Status,
		row.AssignedTo,
		row.Applicants,
		row.JobID,
		row.Version,
	).Scan(&version, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("Job version conflict",
			slog.String("job_id", job.ID),
			slog.Int("version", job.Version),
		)
		return domain.ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	job.Version = version
	job.UpdatedAt = updatedAt
	return nil
}

// DeleteJob removes the job if it is still at the given version
func (s *Storage) DeleteJob(ctx context.Context, jobID string, version int) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE job_id = $1 AND version = $2`,
		jobID, version,
	)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if n == 0 {
		return domain.ErrVersionConflict
	}

	return nil
}

type JobFilter struct {
	Barangay string
	PageSize int
	Cursor   *JobCursor
}

type JobCursor struct {
	CreatedAt time.Time
	JobID     string
}

// ListOpenJobs returns one page of open jobs, newest first, fetching one
// extra row so callers can tell whether another page exists.
func (s *Storage) ListOpenJobs(ctx context.Context, filter JobFilter) ([]domain.Job, error) {
	w := &whereBuilder{}
	w.add("status = $%d", string(domain.JobStatusOpen))

	if filter.Barangay != "" {
		w.add("barangay = $%d", filter.Barangay)
	}

	if filter.Cursor != nil {
		w.add("(created_at, job_id) < ($%d, $%d)", filter.Cursor.CreatedAt, filter.Cursor.JobID)
	}

	query := `SELECT ` + jobColumns + ` FROM jobs` + w.clause()
	query += " ORDER BY created_at DESC, job_id DESC"
	query += " LIMIT " + w.next(filter.PageSize+1)

	var rows []model.Job
	if err := s.db.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return model.JobsToDomain(rows), nil
}

// FindMatchCandidates returns the open jobs in barangay sharing at least one
// skill with skills. The order is the matcher's tie-break.
func (s *Storage) FindMatchCandidates(ctx context.Context, barangay string, skills []string) ([]domain.Job, error) {
	if len(skills) == 0 {
		return []domain.Job{}, nil
	}

	query := `SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = $1 AND barangay = $2 AND required_skills && $3
		ORDER BY created_at DESC, job_id DESC
	`

	var rows []model.Job
	err := s.db.SelectContext(ctx, &rows, query,
		string(domain.JobStatusOpen),
		barangay,
		pq.StringArray(skills),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find match candidates: %w", err)
	}

	return model.JobsToDomain(rows), nil
}

type SearchSort string

const (
	SortDatePosted SearchSort = "datePosted"
	SortPrice      SearchSort = "price"
	SortApplicants SearchSort = "applicants"
)

type SearchFilter struct {
	Skills    []string
	Barangay  string
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    SearchSort
	Ascending bool
	Page      int
	Limit     int
}

func (f SearchFilter) orderBy() string {
	dir := "DESC"
	if f.Ascending {
		dir = "ASC"
	}

	switch f.SortBy {
	case SortPrice:
		return fmt.Sprintf(" ORDER BY price %s, created_at DESC, job_id DESC", dir)
	case SortApplicants:
		return fmt.Sprintf(" ORDER BY jsonb_array_length(applicants) %s, created_at DESC, job_id DESC", dir)
	default:
		return fmt.Sprintf(" ORDER BY created_at %s, job_id %s", dir, dir)
	}
}

// SearchJobs returns one page of open jobs and the total number of matches
func (s *Storage) SearchJobs(ctx context.Context, filter SearchFilter) ([]domain.Job, int, error) {
	w := &whereBuilder{}
	w.add("status = $%d", string(domain.JobStatusOpen))

	if len(filter.Skills) > 0 {
		w.add("required_skills && $%d", pq.StringArray(filter.Skills))
	}
	if filter.Barangay != "" {
		w.add("barangay = $%d", filter.Barangay)
	}
	if filter.MinPrice != nil {
		w.add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		w.add("price <= $%d", *filter.MaxPrice)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM jobs` + w.clause()
	if err := s.db.GetContext(ctx, &total, countQuery, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	if total == 0 {
		return []domain.Job{}, 0, nil
	}

	query := `SELECT ` + jobColumns + ` FROM jobs` + w.clause() + filter.orderBy()
	query += " LIMIT " + w.next(filter.Limit)
	query += " OFFSET " + w.next((filter.Page-1)*filter.Limit)

	var rows []model.Job
	if err := s.db.SelectContext(ctx, &rows, query, w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to search jobs: %w", err)
	}

	return model.JobsToDomain(rows), total, nil
}

// PopularJobs returns open jobs with the most applicants first
func (s *Storage) PopularJobs(ctx context.Context, limit int) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = $1
		ORDER BY jsonb_array_length(applicants) DESC, created_at DESC, job_id DESC
		LIMIT $2
	`

	var rows []model.Job
	if err := s.db.SelectContext(ctx, &rows, query, string(domain.JobStatusOpen), limit); err != nil {
		return nil, fmt.Errorf("failed to list popular jobs: %w", err)
	}

	return model.JobsToDomain(rows), nil
}

// ListJobsByOwner returns the jobs posted by ownerID, newest first. With
// withApplicants set, jobs nobody applied to are skipped.
func (s *Storage) ListJobsByOwner(ctx context.Context, ownerID string, withApplicants bool) ([]domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE posted_by = $1`
	if withApplicants {
		query += ` AND jsonb_array_length(applicants) > 0`
	}
	query += ` ORDER BY created_at DESC, job_id DESC`

	var rows []model.Job
	if err := s.db.SelectContext(ctx, &rows, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list owner jobs: %w", err)
	}

	return model.JobsToDomain(rows), nil
}

// ListJobsByApplicant returns every job userID has an application on
func (s *Storage) ListJobsByApplicant(ctx context.Context, userID string) ([]domain.Job, error) {
	needle, err := json.Marshal([]map[string]string{{"user": userID}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode applicant filter: %w", err)
	}

	query := `SELECT ` + jobColumns + `
		FROM jobs
		WHERE applicants @> $1::jsonb
		ORDER BY created_at DESC, job_id DESC
	`

	var rows []model.Job
	if err := s.db.SelectContext(ctx, &rows, query, string(needle)); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	return model.JobsToDomain(rows), nil
}
