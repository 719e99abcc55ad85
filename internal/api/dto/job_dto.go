package dto

import (
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
)

type CreateJobRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	SkillsRequired []string `json:"skillsRequired"`
	Barangay       string   `json:"barangay"`
	Location       string   `json:"location"`
	Price          *float64 `json:"price"`
}

func (r CreateJobRequest) ToInput() domain.NewJobInput {
	return domain.NewJobInput{
		Title:          r.Title,
		Description:    r.Description,
		RequiredSkills: r.SkillsRequired,
		Barangay:       r.Barangay,
		Location:       r.Location,
		Price:          r.Price,
	}
}

type ListJobsRequest struct {
	Barangay string `form:"barangay"`
	PageSize int    `form:"page_size"`
	Cursor   string `form:"cursor"`
}

type ListJobsResponse struct {
	Jobs       []JobResponse `json:"jobs"`
	NextCursor string        `json:"next_cursor,omitempty"`
	Alert      string        `json:"alert"`
}

type SearchJobsRequest struct {
	Skill    string   `form:"skill"`
	Barangay string   `form:"barangay"`
	MinPrice *float64 `form:"minPrice"`
	MaxPrice *float64 `form:"maxPrice"`
	SortBy   string   `form:"sortBy"`
	Order    string   `form:"order"`
	Page     int      `form:"page"`
	Limit    int      `form:"limit"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type SearchFilters struct {
	Skills   []string `json:"skill,omitempty"`
	Barangay string   `json:"barangay,omitempty"`
	MinPrice *float64 `json:"minPrice,omitempty"`
	MaxPrice *float64 `json:"maxPrice,omitempty"`
}

type SearchJobsResponse struct {
	Success    bool          `json:"success"`
	Data       []JobResponse `json:"data"`
	Filters    SearchFilters `json:"filters"`
	Pagination Pagination    `json:"pagination"`
	SortedBy   string        `json:"sortedBy"`
	Alert      string        `json:"alert"`
}

type JobsResponse struct {
	Success bool          `json:"success"`
	Jobs    []JobResponse `json:"jobs"`
}

type ApplicantActionRequest struct {
	UserID string `json:"userId"`
}

type ApplicantStatusRequest struct {
	Status string `json:"status"`
}

type ApplicantResponse struct {
	User      string    `json:"user"`
	Status    string    `json:"status"`
	AppliedAt time.Time `json:"appliedAt"`
}

type JobResponse struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	SkillsRequired []string            `json:"skillsRequired"`
	Barangay       string              `json:"barangay"`
	Location       string              `json:"location"`
	Price          float64             `json:"price"`
	PostedBy       string              `json:"postedBy"`
	Status         string              `json:"status"`
	IsOpen         bool                `json:"isOpen"`
	AssignedTo     string              `json:"assignedTo,omitempty"`
	Applicants     []ApplicantResponse `json:"applicants"`
	DatePosted     time.Time           `json:"datePosted"`
	UpdatedAt      time.Time           `json:"updatedAt"`
	MatchScore     *int                `json:"matchScore,omitempty"`
}

type PostJobResponse struct {
	Message      string      `json:"message"`
	Job          JobResponse `json:"job"`
	MatchesFound int         `json:"matchesFound"`
	Alert        string      `json:"alert"`
}

// JobMutationResponse is returned by every lifecycle operation that keeps the job
type JobMutationResponse struct {
	Message string      `json:"message"`
	Job     JobResponse `json:"job"`
	Alert   string      `json:"alert"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Alert   string `json:"alert"`
}

type ErrorResponse struct {
	Message  string   `json:"message"`
	Alert    string   `json:"alert,omitempty"`
	Required []string `json:"required,omitempty"`
}

func NewJobResponse(j *domain.Job) JobResponse {
	applicants := make([]ApplicantResponse, 0, len(j.Applicants))
	for _, a := range j.Applicants {
		applicants = append(applicants, ApplicantResponse{
			User:      a.UserID,
			Status:    string(a.Status),
			AppliedAt: a.AppliedAt,
		})
	}

	skills := j.RequiredSkills
	if skills == nil {
		skills = []string{}
	}

	return JobResponse{
		ID:             j.ID,
		Title:          j.Title,
		Description:    j.Description,
		SkillsRequired: skills,
		Barangay:       j.Barangay,
		Location:       j.Location,
		Price:          j.Price,
		PostedBy:       j.PostedBy,
		Status:         string(j.Status),
		IsOpen:         j.IsOpen(),
		AssignedTo:     j.AssignedTo,
		Applicants:     applicants,
		DatePosted:     j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

func NewJobResponses(jobs []domain.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, NewJobResponse(&jobs[i]))
	}
	return out
}

// NewMatchResponses renders ranked jobs with their score, best first
func NewMatchResponses(matches []domain.ScoredJob) []JobResponse {
	out := make([]JobResponse, 0, len(matches))
	for i := range matches {
		r := NewJobResponse(&matches[i].Job)
		score := matches[i].Score
		r.MatchScore = &score
		out = append(out, r)
	}
	return out
}
