package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// JobStatus is the lifecycle state of a job posting
type JobStatus string

const (
	JobStatusOpen     JobStatus = "open"
	JobStatusAssigned JobStatus = "assigned"
	JobStatusClosed   JobStatus = "closed"
)

// ApplicantStatus is the state of one worker's application
type ApplicantStatus string

const (
	ApplicantPending  ApplicantStatus = "pending"
	ApplicantAccepted ApplicantStatus = "accepted"
	ApplicantRejected ApplicantStatus = "rejected"
)

// ParseApplicantStatus validates a status received from a client
func ParseApplicantStatus(s string) (ApplicantStatus, error) {
	switch st := ApplicantStatus(s); st {
	case ApplicantPending, ApplicantAccepted, ApplicantRejected:
		return st, nil
	}
	return "", ErrInvalidApplicantStatus
}

// Applicant is an application embedded in its job, kept in insertion order
type Applicant struct {
	UserID    string
	Status    ApplicantStatus
	AppliedAt time.Time
}

// Job is a job posting together with its applicants
type Job struct {
	ID             string
	Title          string
	Description    string
	RequiredSkills []string
	Barangay       string
	Location       string
	Price          float64
	PostedBy       string
	Status         JobStatus
	// AssignedTo is empty unless Status is JobStatusAssigned
	AssignedTo string
	Applicants []Applicant
	// Version is the optimistic concurrency token checked on every write
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen reports whether the job accepts applications
func (j *Job) IsOpen() bool {
	return j.Status == JobStatusOpen
}

// IsOwnedBy reports whether userID posted the job
func (j *Job) IsOwnedBy(userID string) bool {
	return j.PostedBy == userID
}

// applicantIndex returns the position of userID's entry or -1
func (j *Job) applicantIndex(userID string) int {
	for i := range j.Applicants {
		if j.Applicants[i].UserID == userID {
			return i
		}
	}
	return -1
}

// Clone returns a copy that shares no slices with j
func (j *Job) Clone() *Job {
	c := *j
	c.RequiredSkills = append([]string(nil), j.RequiredSkills...)
	c.Applicants = append([]Applicant(nil), j.Applicants...)
	return &c
}

// SameLifecycleState reports whether j and other agree on status, assignee
// and every application. These are the only fields transitions change.
func (j *Job) SameLifecycleState(other *Job) bool {
	if j.Status != other.Status || j.AssignedTo != other.AssignedTo {
		return false
	}
	if len(j.Applicants) != len(other.Applicants) {
		return false
	}
	for i := range j.Applicants {
		a, b := j.Applicants[i], other.Applicants[i]
		if a.UserID != b.UserID || a.Status != b.Status || !a.AppliedAt.Equal(b.AppliedAt) {
			return false
		}
	}
	return true
}

// Applicant returns userID's entry, if any
func (j *Job) Applicant(userID string) (Applicant, bool) {
	if i := j.applicantIndex(userID); i >= 0 {
		return j.Applicants[i], true
	}
	return Applicant{}, false
}

// MaxPrice is the largest price the jobs.price NUMERIC(12, 2) column holds
const MaxPrice = 9999999999.99

// NewJobInput is the client-supplied part of a job posting
type NewJobInput struct {
	Title          string
	Description    string
	RequiredSkills []string
	Barangay       string
	Location       string
	Price          *float64
}

// NewJob validates the input and builds an open job with no applicants
func NewJob(id string, in NewJobInput, owner string, now time.Time) (*Job, error) {
	title := strings.TrimSpace(in.Title)
	barangay := strings.TrimSpace(in.Barangay)

	var missing []string
	if title == "" {
		missing = append(missing, "title")
	}
	if in.Price == nil || *in.Price <= 0 {
		missing = append(missing, "price")
	}
	if barangay == "" {
		missing = append(missing, "barangay")
	}
	if len(missing) > 0 {
		return nil, NewValidationError("Missing required fields", "Please fill all required fields", missing...)
	}
	if !(math.Round(*in.Price*100)/100 <= MaxPrice) {
		return nil, NewValidationError("Invalid price",
			fmt.Sprintf("Price must not exceed %.2f", MaxPrice), "price")
	}

	return &Job{
		ID:             id,
		Title:          title,
		Description:    strings.TrimSpace(in.Description),
		RequiredSkills: NormalizeSkills(in.RequiredSkills),
		Barangay:       barangay,
		Location:       strings.TrimSpace(in.Location),
		Price:          *in.Price,
		PostedBy:       owner,
		Status:         JobStatusOpen,
		Applicants:     []Applicant{},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
