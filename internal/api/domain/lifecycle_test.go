package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner    = Actor{UserID: "employer-1", Role: RoleEmployer}
	admin    = Actor{UserID: "admin-1", Role: RoleAdmin}
	stranger = Actor{UserID: "employer-2", Role: RoleEmployer}
	workerA  = Actor{UserID: "worker-a", Role: RoleEmployee}
	workerB  = Actor{UserID: "worker-b", Role: RoleBoth}
	workerC  = Actor{UserID: "worker-c", Role: RoleEmployee}
	now      = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
)

func newOpenJob() *Job {
	return &Job{
		ID:             "job-1",
		Title:          "Fix sink",
		RequiredSkills: []string{"plumbing"},
		Barangay:       "A",
		Price:          500,
		PostedBy:       owner.UserID,
		Status:         JobStatusOpen,
		Applicants:     []Applicant{},
		Version:        1,
	}
}

func jobWithApplicants(t *testing.T, actors ...Actor) *Job {
	t.Helper()
	job := newOpenJob()
	for _, a := range actors {
		_, err := job.Apply(a, now)
		require.NoError(t, err)
	}
	return job
}

func effectTypes(effects []Effect) []EffectType {
	out := make([]EffectType, len(effects))
	for i, e := range effects {
		out[i] = e.Type
	}
	return out
}

func TestApply(t *testing.T) {
	job := newOpenJob()

	effects, err := job.Apply(workerA, now)
	require.NoError(t, err)

	require.Len(t, job.Applicants, 1)
	assert.Equal(t, Applicant{UserID: workerA.UserID, Status: ApplicantPending, AppliedAt: now}, job.Applicants[0])
	assert.Equal(t, []EffectType{EffectJobApplied, EffectApplicationSent}, effectTypes(effects))
	assert.Equal(t, owner.UserID, effects[0].Recipient)
	assert.Equal(t, workerA.UserID, effects[0].Sender)
	assert.Equal(t, workerA.UserID, effects[1].Recipient)
	assert.Equal(t, job.ID, effects[0].JobID)
}

func TestApply_Guards(t *testing.T) {
	closed := newOpenJob()
	closed.Status = JobStatusClosed

	tests := []struct {
		name    string
		job     func() *Job
		actor   Actor
		wantErr error
	}{
		{name: "employer", job: newOpenJob, actor: stranger, wantErr: ErrEmployerCannotApply},
		{name: "admin has no employee profile", job: newOpenJob, actor: admin, wantErr: ErrEmployeeProfileRequired},
		{name: "unknown role", job: newOpenJob, actor: Actor{UserID: "x", Role: "guest"}, wantErr: ErrEmployeeProfileRequired},
		{
			name:    "own job",
			job:     func() *Job { j := newOpenJob(); j.PostedBy = workerB.UserID; return j },
			actor:   workerB,
			wantErr: ErrOwnJob,
		},
		{name: "closed job", job: func() *Job { return closed }, actor: workerA, wantErr: ErrJobClosed},
		{
			name:    "duplicate",
			job:     func() *Job { return jobWithApplicants(t, workerA) },
			actor:   workerA,
			wantErr: ErrAlreadyApplied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := tt.job()
			before := len(job.Applicants)

			effects, err := job.Apply(tt.actor, now)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, effects)
			assert.Len(t, job.Applicants, before)
		})
	}
}

func TestApply_AssignedJobIsClosedToApplicants(t *testing.T) {
	job := jobWithApplicants(t, workerA)
	_, err := job.Assign(owner, workerA.UserID)
	require.NoError(t, err)

	_, err = job.Apply(workerB, now)
	assert.ErrorIs(t, err, ErrJobClosed)
}

func TestCancelApplication(t *testing.T) {
	job := jobWithApplicants(t, workerA, workerB, workerC)

	effects, err := job.CancelApplication(workerB)
	require.NoError(t, err)

	assert.Equal(t, []string{workerA.UserID, workerC.UserID}, []string{job.Applicants[0].UserID, job.Applicants[1].UserID})
	assert.Len(t, job.Applicants, 2)
	assert.Equal(t, []EffectType{EffectApplicationCancelled, EffectApplicationCancelled}, effectTypes(effects))
	assert.Equal(t, owner.UserID, effects[0].Recipient)
	assert.Equal(t, workerB.UserID, effects[1].Recipient)

	// cancelling lets the worker apply again
	_, err = job.Apply(workerB, now)
	assert.NoError(t, err)
}

func TestCancelApplication_Guards(t *testing.T) {
	t.Run("no application", func(t *testing.T) {
		job := jobWithApplicants(t, workerA)
		_, err := job.CancelApplication(workerB)
		assert.ErrorIs(t, err, ErrNoApplication)
		assert.Len(t, job.Applicants, 1)
	})

	t.Run("accepted application", func(t *testing.T) {
		job := jobWithApplicants(t, workerA)
		_, err := job.Assign(owner, workerA.UserID)
		require.NoError(t, err)

		_, err = job.CancelApplication(workerA)
		assert.ErrorIs(t, err, ErrApplicationAccepted)
		assert.Equal(t, ApplicantAccepted, job.Applicants[0].Status)
	})

	t.Run("rejected application can be withdrawn", func(t *testing.T) {
		job := jobWithApplicants(t, workerA)
		_, err := job.Reject(owner, workerA.UserID)
		require.NoError(t, err)

		_, err = job.CancelApplication(workerA)
		assert.NoError(t, err)
		assert.Empty(t, job.Applicants)
	})
}

func TestAssign(t *testing.T) {
	job := jobWithApplicants(t, workerA, workerB, workerC)
	_, err := job.Reject(owner, workerC.UserID)
	require.NoError(t, err)

	effects, err := job.Assign(owner, workerB.UserID)
	require.NoError(t, err)

	assert.Equal(t, JobStatusAssigned, job.Status)
	assert.Equal(t, workerB.UserID, job.AssignedTo)
	assert.False(t, job.IsOpen())

	accepted := 0
	for _, a := range job.Applicants {
		if a.Status == ApplicantAccepted {
			accepted++
			assert.Equal(t, workerB.UserID, a.UserID)
			continue
		}
		assert.Equal(t, ApplicantRejected, a.Status)
	}
	assert.Equal(t, 1, accepted)

	// accepted worker plus the one previously pending applicant
	assert.Equal(t, []EffectType{EffectJobAccepted, EffectApplicationRejected}, effectTypes(effects))
	assert.Equal(t, workerB.UserID, effects[0].Recipient)
	assert.Equal(t, workerA.UserID, effects[1].Recipient)
}

func TestAssign_ByAdmin(t *testing.T) {
	job := jobWithApplicants(t, workerA)

	_, err := job.Assign(admin, workerA.UserID)
	require.NoError(t, err)
	assert.Equal(t, workerA.UserID, job.AssignedTo)
}

func TestAssign_Guards(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) *Job
		actor   Actor
		worker  string
		wantErr error
	}{
		{
			name:    "not owner",
			setup:   func(t *testing.T) *Job { return jobWithApplicants(t, workerA) },
			actor:   stranger,
			worker:  workerA.UserID,
			wantErr: ErrNotAuthorized,
		},
		{
			name:    "applicant cannot assign",
			setup:   func(t *testing.T) *Job { return jobWithApplicants(t, workerA) },
			actor:   workerA,
			worker:  workerA.UserID,
			wantErr: ErrNotAuthorized,
		},
		{
			name:    "missing user id",
			setup:   func(t *testing.T) *Job { return jobWithApplicants(t, workerA) },
			actor:   owner,
			worker:  "",
			wantErr: ErrMissingUserID,
		},
		{
			name:    "not an applicant",
			setup:   func(t *testing.T) *Job { return jobWithApplicants(t, workerA) },
			actor:   owner,
			worker:  workerB.UserID,
			wantErr: ErrNotApplicant,
		},
		{
			name: "already assigned",
			setup: func(t *testing.T) *Job {
				job := jobWithApplicants(t, workerA, workerB)
				_, err := job.Assign(owner, workerA.UserID)
				require.NoError(t, err)
				return job
			},
			actor:   owner,
			worker:  workerB.UserID,
			wantErr: ErrJobNotOpen,
		},
		{
			name: "closed",
			setup: func(t *testing.T) *Job {
				job := jobWithApplicants(t, workerA)
				_, err := job.Close(owner)
				require.NoError(t, err)
				return job
			},
			actor:   owner,
			worker:  workerA.UserID,
			wantErr: ErrJobNotOpen,
		},
		{
			name: "rejected applicant",
			setup: func(t *testing.T) *Job {
				job := jobWithApplicants(t, workerA)
				_, err := job.Reject(owner, workerA.UserID)
				require.NoError(t, err)
				return job
			},
			actor:   owner,
			worker:  workerA.UserID,
			wantErr: ErrApplicantRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := tt.setup(t)
			snapshot := cloneJob(job)

			effects, err := job.Assign(tt.actor, tt.worker)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, effects)
			assert.Equal(t, snapshot, job)
		})
	}
}

func TestReject(t *testing.T) {
	job := jobWithApplicants(t, workerA, workerB)

	effects, err := job.Reject(owner, workerA.UserID)
	require.NoError(t, err)
	assert.Equal(t, []EffectType{EffectApplicationRejected}, effectTypes(effects))
	assert.Equal(t, ApplicantRejected, job.Applicants[0].Status)
	assert.Equal(t, ApplicantPending, job.Applicants[1].Status)

	_, err = job.Reject(owner, workerB.UserID)
	require.NoError(t, err)

	// no pending applicants left, the job still stays open
	assert.Equal(t, JobStatusOpen, job.Status)
	assert.Empty(t, job.AssignedTo)
}

func TestReject_AlreadyRejectedIsNoop(t *testing.T) {
	job := jobWithApplicants(t, workerA)
	_, err := job.Reject(owner, workerA.UserID)
	require.NoError(t, err)

	effects, err := job.Reject(owner, workerA.UserID)
	require.NoError(t, err)
	assert.Empty(t, effects)
	assert.Equal(t, ApplicantRejected, job.Applicants[0].Status)
}

func TestReject_Guards(t *testing.T) {
	t.Run("not owner", func(t *testing.T) {
		job := jobWithApplicants(t, workerA)
		_, err := job.Reject(stranger, workerA.UserID)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("missing user id", func(t *testing.T) {
		job := jobWithApplicants(t, workerA)
		_, err := job.Reject(owner, "")
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("no application", func(t *testing.T) {
		job := jobWithApplicants(t, workerA)
		_, err := job.Reject(owner, workerB.UserID)
		assert.ErrorIs(t, err, ErrApplicationNotFound)
	})

	t.Run("accepted is final", func(t *testing.T) {
		job := jobWithApplicants(t, workerA)
		_, err := job.Assign(owner, workerA.UserID)
		require.NoError(t, err)

		_, err = job.Reject(owner, workerA.UserID)
		assert.ErrorIs(t, err, ErrAcceptedIsFinal)
		assert.Equal(t, ApplicantAccepted, job.Applicants[0].Status)
	})
}

func TestClose(t *testing.T) {
	job := jobWithApplicants(t, workerA, workerB)
	_, err := job.Reject(owner, workerB.UserID)
	require.NoError(t, err)

	effects, err := job.Close(owner)
	require.NoError(t, err)

	assert.Equal(t, JobStatusClosed, job.Status)
	require.Len(t, effects, 1)
	assert.Equal(t, EffectJobClosed, effects[0].Type)
	assert.Equal(t, workerA.UserID, effects[0].Recipient)

	_, err = job.Close(owner)
	assert.ErrorIs(t, err, ErrJobNotOpen)

	_, err = job.Apply(workerC, now)
	assert.ErrorIs(t, err, ErrJobClosed)
}

func TestClose_NotOwner(t *testing.T) {
	job := newOpenJob()
	_, err := job.Close(workerA)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.True(t, job.IsOpen())

	_, err = job.Close(admin)
	assert.NoError(t, err)
}

func TestAuthorizeDelete(t *testing.T) {
	job := newOpenJob()
	job.Status = JobStatusAssigned

	assert.NoError(t, job.AuthorizeDelete(owner))
	assert.NoError(t, job.AuthorizeDelete(admin))
	assert.ErrorIs(t, job.AuthorizeDelete(stranger), ErrNotAuthorized)
}

func TestSetApplicantStatus(t *testing.T) {
	t.Run("accepted assigns the job", func(t *testing.T) {
		job := jobWithApplicants(t, workerA, workerB)

		effects, err := job.SetApplicantStatus(owner, workerA.UserID, ApplicantAccepted)
		require.NoError(t, err)
		assert.Equal(t, JobStatusAssigned, job.Status)
		assert.Equal(t, workerA.UserID, job.AssignedTo)
		assert.Equal(t, ApplicantRejected, job.Applicants[1].Status)
		assert.Equal(t,
			[]EffectType{EffectJobAccepted, EffectApplicationRejected, EffectApplicationUpdate},
			effectTypes(effects))
	})

	t.Run("rejected leaves the job open", func(t *testing.T) {
		job := jobWithApplicants(t, workerA)

		_, err := job.SetApplicantStatus(owner, workerA.UserID, ApplicantRejected)
		require.NoError(t, err)
		assert.Equal(t, ApplicantRejected, job.Applicants[0].Status)
		assert.True(t, job.IsOpen())
	})

	t.Run("pending reopens a rejected application", func(t *testing.T) {
		job := jobWithApplicants(t, workerA)
		_, err := job.Reject(owner, workerA.UserID)
		require.NoError(t, err)

		effects, err := job.SetApplicantStatus(admin, workerA.UserID, ApplicantPending)
		require.NoError(t, err)
		assert.Equal(t, ApplicantPending, job.Applicants[0].Status)
		assert.Equal(t, []EffectType{EffectApplicationUpdate}, effectTypes(effects))
	})

	t.Run("pending cannot undo an acceptance", func(t *testing.T) {
		job := jobWithApplicants(t, workerA)
		_, err := job.Assign(owner, workerA.UserID)
		require.NoError(t, err)

		_, err = job.SetApplicantStatus(owner, workerA.UserID, ApplicantPending)
		assert.ErrorIs(t, err, ErrAcceptedIsFinal)
	})

	t.Run("invalid status", func(t *testing.T) {
		job := jobWithApplicants(t, workerA)
		_, err := job.SetApplicantStatus(owner, workerA.UserID, "hired")
		assert.ErrorIs(t, err, ErrInvalidApplicantStatus)
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("unknown applicant", func(t *testing.T) {
		job := jobWithApplicants(t, workerA)
		_, err := job.SetApplicantStatus(owner, workerB.UserID, ApplicantRejected)
		assert.ErrorIs(t, err, ErrApplicantNotFound)
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("not owner", func(t *testing.T) {
		job := jobWithApplicants(t, workerA)
		_, err := job.SetApplicantStatus(stranger, workerA.UserID, ApplicantRejected)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})
}

// Applications arrive from A and B, the owner assigns B, and a late
// application from C bounces off the assigned job.
func TestLifecycleScenario(t *testing.T) {
	job := newOpenJob()

	_, err := job.Apply(workerA, now)
	require.NoError(t, err)
	_, err = job.Apply(workerB, now.Add(time.Minute))
	require.NoError(t, err)

	_, err = job.Assign(owner, workerB.UserID)
	require.NoError(t, err)

	a, ok := job.Applicant(workerA.UserID)
	require.True(t, ok)
	assert.Equal(t, ApplicantRejected, a.Status)
	b, ok := job.Applicant(workerB.UserID)
	require.True(t, ok)
	assert.Equal(t, ApplicantAccepted, b.Status)

	_, err = job.Apply(workerC, now)
	assert.True(t, errors.Is(err, ErrJobClosed))
	_, ok = job.Applicant(workerC.UserID)
	assert.False(t, ok)
}

func cloneJob(j *Job) *Job {
	c := *j
	c.Applicants = append([]Applicant(nil), j.Applicants...)
	c.RequiredSkills = append([]string(nil), j.RequiredSkills...)
	return &c
}
