package dto

import (
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
)

type UpdateProfileRequest struct {
	Barangay *string  `json:"barangay"`
	Skills   []string `json:"skills"`
}

type UserResponse struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Barangay   string    `json:"barangay"`
	Skills     []string  `json:"skills"`
	UserType   string    `json:"userType"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

func NewUserResponse(u *domain.User) UserResponse {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	return UserResponse{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		Barangay:   u.Barangay,
		Skills:     skills,
		UserType:   string(u.Role),
		IsVerified: u.Verified,
		CreatedAt:  u.CreatedAt,
	}
}

type ListWorkersRequest struct {
	Barangay string `form:"barangay"`
	Skill    string `form:"skill"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

// WorkerResponse is the public directory entry of a worker; contact details
// are left out
type WorkerResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Barangay  string    `json:"barangay"`
	Skills    []string  `json:"skills"`
	UserType  string    `json:"userType"`
	CreatedAt time.Time `json:"createdAt"`
}

type ListWorkersResponse struct {
	Success    bool             `json:"success"`
	Users      []WorkerResponse `json:"users"`
	Pagination Pagination       `json:"pagination"`
	Alert      string           `json:"alert"`
}

func NewWorkerResponses(users []domain.User) []WorkerResponse {
	out := make([]WorkerResponse, 0, len(users))
	for i := range users {
		u := &users[i]
		skills := u.Skills
		if skills == nil {
			skills = []string{}
		}
		out = append(out, WorkerResponse{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Barangay:  u.Barangay,
			Skills:    skills,
			UserType:  string(u.Role),
			CreatedAt: u.CreatedAt,
		})
	}
	return out
}
