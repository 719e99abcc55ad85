package model

import (
	"testing"
	"time"

	"github.com/cuongbtq/barangay-gigs/internal/api/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicants_Value(t *testing.T) {
	v, err := Applicants(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	applied := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	v, err = Applicants{{User: "u1", Status: "pending", AppliedAt: applied}}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"user":"u1","status":"pending","appliedAt":"2026-04-02T10:00:00Z"}]`, v.(string))
}

func TestApplicants_Scan(t *testing.T) {
	var a Applicants
	require.NoError(t, a.Scan([]byte(`[{"user":"u1","status":"accepted","appliedAt":"2026-04-02T10:00:00Z"}]`)))
	require.Len(t, a, 1)
	assert.Equal(t, "u1", a[0].User)
	assert.Equal(t, "accepted", a[0].Status)

	require.NoError(t, a.Scan(`[]`))
	assert.NotNil(t, a)
	assert.Empty(t, a)

	require.NoError(t, a.Scan(nil))
	assert.Empty(t, a)

	assert.Error(t, a.Scan(42))
	assert.Error(t, a.Scan([]byte(`{not json`)))
}

func TestJobConversion(t *testing.T) {
	created := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	job := &domain.Job{
		ID:             "job-1",
		Title:          "Fix roof",
		RequiredSkills: []string{"roofing"},
		Barangay:       "A",
		Price:          1200,
		PostedBy:       "owner",
		Status:         domain.JobStatusAssigned,
		AssignedTo:     "u2",
		Applicants: []domain.Applicant{
			{UserID: "u1", Status: domain.ApplicantRejected, AppliedAt: created},
			{UserID: "u2", Status: domain.ApplicantAccepted, AppliedAt: created},
		},
		Version:   3,
		CreatedAt: created,
		UpdatedAt: created,
	}

	row := JobFromDomain(job)
	assert.True(t, row.AssignedTo.Valid)
	assert.Equal(t, "assigned", row.Status)

	back := row.ToDomain()
	assert.Equal(t, *job, back)

	job.AssignedTo = ""
	job.RequiredSkills = nil
	row = JobFromDomain(job)
	assert.False(t, row.AssignedTo.Valid)
	assert.NotNil(t, row.RequiredSkills)
}

func TestUserConversion(t *testing.T) {
	u := &domain.User{ID: "u1", Email: "a@b.c", Barangay: "A", Role: domain.RoleBoth, Verified: true}

	row := UserFromDomain(u)
	assert.NotNil(t, row.Skills)
	assert.Equal(t, "both", row.UserType)

	back := row.ToDomain()
	assert.Equal(t, domain.RoleBoth, back.Role)
	assert.Equal(t, []string{}, back.Skills)
	assert.True(t, back.Verified)
}
