package model

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/lib/pq"
)

type Job struct {
	JobID          string         `db:"job_id"`
	Title          string         `db:"title"`
	Description    string         `db:"description"`
	RequiredSkills pq.StringArray `db:"required_skills"`
	Barangay       string         `db:"barangay"`
	Location       string         `db:"location"`
	Price          float64        `db:"price"`
	PostedBy       string         `db:"posted_by"`
	Status         string         `db:"status"`
	AssignedTo     sql.NullString `db:"assigned_to"`
	Applicants     Applicants     `db:"applicants"`
	Version        int            `db:"version"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// Applicant is the JSON shape of one entry of jobs.applicants
type Applicant struct {
	User      string    `json:"user"`
	Status    string    `json:"status"`
	AppliedAt time.Time `json:"appliedAt"`
}

// Applicants maps the jsonb applicants column
type Applicants []Applicant

// Value encodes the list as a JSON string; lib/pq would send []byte as bytea
func (a Applicants) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]Applicant(a))
	if err != nil {
		return nil, fmt.Errorf("failed to encode applicants: %w", err)
	}
	return string(b), nil
}

func (a *Applicants) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = Applicants{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported applicants type %T", src)
	}

	var out []Applicant
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode applicants: %w", err)
	}
	if out == nil {
		out = []Applicant{}
	}
	*a = out
	return nil
}

type User struct {
	UserID     string         `db:"user_id"`
	FirstName  string         `db:"first_name"`
	LastName   string         `db:"last_name"`
	Email      string         `db:"email"`
	Barangay   string         `db:"barangay"`
	Skills     pq.StringArray `db:"skills"`
	UserType   string         `db:"user_type"`
	IsVerified bool           `db:"is_verified"`
	CreatedAt  time.Time      `db:"created_at"`
}

type Notification struct {
	NotificationID string         `db:"notification_id"`
	MessageID      string         `db:"message_id"`
	Recipient      string         `db:"recipient"`
	Sender         sql.NullString `db:"sender"`
	Type           string         `db:"type"`
	Title          string         `db:"title"`
	Message        string         `db:"message"`
	RelatedJob     sql.NullString `db:"related_job"`
	IsRead         bool           `db:"is_read"`
	CreatedAt      time.Time      `db:"created_at"`
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// stringArray keeps empty sets as '{}' instead of NULL
func stringArray(s []string) pq.StringArray {
	if s == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(s)
}

// JobFromDomain converts a domain job into its row
func JobFromDomain(j *domain.Job) *Job {
	applicants := make(Applicants, 0, len(j.Applicants))
	for _, a := range j.Applicants {
		applicants = append(applicants, Applicant{
			User:      a.UserID,
			Status:    string(a.Status),
			AppliedAt: a.AppliedAt,
		})
	}

	return &Job{
		JobID:          j.ID,
		Title:          j.Title,
		Description:    j.Description,
		RequiredSkills: stringArray(j.RequiredSkills),
		Barangay:       j.Barangay,
		Location:       j.Location,
		Price:          j.Price,
		PostedBy:       j.PostedBy,
		Status:         string(j.Status),
		AssignedTo:     nullString(j.AssignedTo),
		Applicants:     applicants,
		Version:        j.Version,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

// ToDomain converts the row into a domain job
func (j *Job) ToDomain() domain.Job {
	applicants := make([]domain.Applicant, 0, len(j.Applicants))
	for _, a := range j.Applicants {
		applicants = append(applicants, domain.Applicant{
			UserID:    a.User,
			Status:    domain.ApplicantStatus(a.Status),
			AppliedAt: a.AppliedAt,
		})
	}

	skills := []string(j.RequiredSkills)
	if skills == nil {
		skills = []string{}
	}

	return domain.Job{
		ID:             j.JobID,
		Title:          j.Title,
		Description:    j.Description,
		RequiredSkills: skills,
		Barangay:       j.Barangay,
		Location:       j.Location,
		Price:          j.Price,
		PostedBy:       j.PostedBy,
		Status:         domain.JobStatus(j.Status),
		AssignedTo:     j.AssignedTo.String,
		Applicants:     applicants,
		Version:        j.Version,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

// JobsToDomain converts a slice of rows, keeping order
func JobsToDomain(rows []Job) []domain.Job {
	jobs := make([]domain.Job, 0, len(rows))
	for i := range rows {
		jobs = append(jobs, rows[i].ToDomain())
	}
	return jobs
}

func UserFromDomain(u *domain.User) *User {
	return &User{
		UserID:     u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Barangay:   u.Barangay,
		Skills:     stringArray(u.Skills),
		UserType:   string(u.Role),
		IsVerified: u.Verified,
		CreatedAt:  u.CreatedAt,
	}
}

func (u *User) ToDomain() domain.User {
	skills := []string(u.Skills)
	if skills == nil {
		skills = []string{}
	}
	return domain.User{
		ID:        u.UserID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Barangay:  u.Barangay,
		Skills:    skills,
		Role:      domain.Role(u.UserType),
		Verified:  u.IsVerified,
		CreatedAt: u.CreatedAt,
	}
}

func (n *Notification) ToDomain() domain.Notification {
	return domain.Notification{
		ID:         n.NotificationID,
		Recipient:  n.Recipient,
		Sender:     n.Sender.String,
		Type:       domain.EffectType(n.Type),
		Title:      n.Title,
		Message:    n.Message,
		RelatedJob: n.RelatedJob.String,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt,
	}
}
