package domain

import (
	"strings"
	"time"
)

// Role is the account type issued by the identity store
type Role string

const (
	RoleEmployee Role = "employee"
	RoleEmployer Role = "employer"
	RoleBoth     Role = "both"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleEmployer, RoleBoth, RoleAdmin:
		return true
	}
	return false
}

// CanWork reports whether the role may apply to jobs
func (r Role) CanWork() bool {
	return r == RoleEmployee || r == RoleBoth
}

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the actor holds the administrator capability
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Worker is the part of an identity the matcher reads
type Worker struct {
	ID       string
	Barangay string
	Skills   []string
}

// User is an identity as stored by the user store
type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Barangay  string
	Skills    []string
	Role      Role
	Verified  bool
	CreatedAt time.Time
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// AsWorker projects the user onto the matcher's input
func (u *User) AsWorker() Worker {
	return Worker{ID: u.ID, Barangay: u.Barangay, Skills: u.Skills}
}

// Actor returns the user as an operation caller
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

// ProfileUpdate carries the fields a user may change on their own profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	Barangay *string
	Skills   []string
}

// WorkerFilter narrows the worker directory. Empty fields are not applied.
// Skills match on any overlap; Search is a case-insensitive substring of a
// name or a skill label.
type WorkerFilter struct {
	Barangay string
	Skills   []string
	Search   string
	Page     int
	Limit    int
}

// NormalizeSkills trims labels, drops empty ones and removes duplicates while
// keeping first-seen order. Case is preserved; matching is exact.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
