package domain

import (
	"fmt"
	"time"
)

// Transitions below either fail without touching the job or apply the whole
// change and return the effects to dispatch after the write commits.

func (j *Job) authorizeOwner(actor Actor) error {
	if actor.IsAdmin() || j.IsOwnedBy(actor.UserID) {
		return nil
	}
	return ErrNotAuthorized
}

// Apply appends a pending application for actor
func (j *Job) Apply(actor Actor, now time.Time) ([]Effect, error) {
	switch {
	case actor.Role == RoleEmployer:
		return nil, ErrEmployerCannotApply
	case !actor.Role.CanWork():
		return nil, ErrEmployeeProfileRequired
	case j.IsOwnedBy(actor.UserID):
		return nil, ErrOwnJob
	case !j.IsOpen():
		return nil, ErrJobClosed
	case j.applicantIndex(actor.UserID) >= 0:
		return nil, ErrAlreadyApplied
	}

	j.Applicants = append(j.Applicants, Applicant{
		UserID:    actor.UserID,
		Status:    ApplicantPending,
		AppliedAt: now,
	})

	return []Effect{
		j.effect(EffectJobApplied, j.PostedBy, actor.UserID,
			"New applicant",
			fmt.Sprintf("A worker applied to your job %q", j.Title)),
		j.effect(EffectApplicationSent, actor.UserID, "",
			"Application sent",
			fmt.Sprintf("You applied to %q", j.Title)),
	}, nil
}

// CancelApplication removes actor's application unless it was accepted
func (j *Job) CancelApplication(actor Actor) ([]Effect, error) {
	i := j.applicantIndex(actor.UserID)
	if i < 0 {
		return nil, ErrNoApplication
	}
	if j.Applicants[i].Status == ApplicantAccepted {
		return nil, ErrApplicationAccepted
	}

	j.Applicants = append(j.Applicants[:i:i], j.Applicants[i+1:]...)

	return []Effect{
		j.effect(EffectApplicationCancelled, j.PostedBy, actor.UserID,
			"Application cancelled",
			fmt.Sprintf("A worker cancelled their application for %q", j.Title)),
		j.effect(EffectApplicationCancelled, actor.UserID, "",
			"Application cancelled",
			fmt.Sprintf("You cancelled your application for %q", j.Title)),
	}, nil
}

// Assign accepts workerID, rejects every other applicant and closes the job
// to further applications.
func (j *Job) Assign(actor Actor, workerID string) ([]Effect, error) {
	if err := j.authorizeOwner(actor); err != nil {
		return nil, err
	}
	if workerID == "" {
		return nil, ErrMissingUserID
	}
	if !j.IsOpen() {
		return nil, ErrJobNotOpen
	}
	i := j.applicantIndex(workerID)
	if i < 0 {
		return nil, ErrNotApplicant
	}
	if j.Applicants[i].Status == ApplicantRejected {
		return nil, ErrApplicantRejected
	}

	effects := []Effect{
		j.effect(EffectJobAccepted, workerID, actor.UserID,
			"You got the job",
			fmt.Sprintf("You've been assigned to %q", j.Title)),
	}

	for k := range j.Applicants {
		a := &j.Applicants[k]
		if k == i {
			a.Status = ApplicantAccepted
			continue
		}
		if a.Status == ApplicantPending {
			effects = append(effects, j.effect(EffectApplicationRejected, a.UserID, actor.UserID,
				"Application not selected",
				fmt.Sprintf("Your application for %q was not selected", j.Title)))
		}
		a.Status = ApplicantRejected
	}
	j.AssignedTo = workerID
	j.Status = JobStatusAssigned

	return effects, nil
}

// Reject marks workerID's application rejected. The job stays open even when
// no pending applications remain.
func (j *Job) Reject(actor Actor, workerID string) ([]Effect, error) {
	if err := j.authorizeOwner(actor); err != nil {
		return nil, err
	}
	if workerID == "" {
		return nil, ErrMissingUserID
	}
	i := j.applicantIndex(workerID)
	if i < 0 {
		return nil, ErrApplicationNotFound
	}

	switch j.Applicants[i].Status {
	case ApplicantAccepted:
		return nil, ErrAcceptedIsFinal
	case ApplicantRejected:
		return nil, nil
	}

	j.Applicants[i].Status = ApplicantRejected

	return []Effect{
		j.effect(EffectApplicationRejected, workerID, actor.UserID,
			"Application not selected",
			fmt.Sprintf("Your application for %q was not selected", j.Title)),
	}, nil
}

// Close stops an open job from taking applications without assigning anyone
func (j *Job) Close(actor Actor) ([]Effect, error) {
	if err := j.authorizeOwner(actor); err != nil {
		return nil, err
	}
	if !j.IsOpen() {
		return nil, ErrJobNotOpen
	}

	j.Status = JobStatusClosed

	var effects []Effect
	for _, a := range j.Applicants {
		if a.Status != ApplicantPending {
			continue
		}
		effects = append(effects, j.effect(EffectJobClosed, a.UserID, actor.UserID,
			"Job closed",
			fmt.Sprintf("%q is no longer accepting applications", j.Title)))
	}
	return effects, nil
}

// AuthorizeDelete checks that actor may remove the job. Deletion is allowed
// in every state.
func (j *Job) AuthorizeDelete(actor Actor) error {
	return j.authorizeOwner(actor)
}

// SetApplicantStatus is the owner/admin override of a single application.
// Accepting assigns the job, rejecting behaves like Reject, and pending
// re-opens a rejected application while the job is still open.
func (j *Job) SetApplicantStatus(actor Actor, workerID string, status ApplicantStatus) ([]Effect, error) {
	if err := j.authorizeOwner(actor); err != nil {
		return nil, err
	}
	if _, err := ParseApplicantStatus(string(status)); err != nil {
		return nil, err
	}
	i := j.applicantIndex(workerID)
	if i < 0 {
		return nil, ErrApplicantNotFound
	}

	var (
		effects []Effect
		err     error
	)
	switch status {
	case ApplicantAccepted:
		effects, err = j.Assign(actor, workerID)
	case ApplicantRejected:
		effects, err = j.Reject(actor, workerID)
	case ApplicantPending:
		switch {
		case j.Applicants[i].Status == ApplicantAccepted:
			err = ErrAcceptedIsFinal
		case !j.IsOpen():
			err = ErrJobNotOpen
		default:
			j.Applicants[i].Status = ApplicantPending
		}
	}
	if err != nil {
		return nil, err
	}

	return append(effects, j.effect(EffectApplicationUpdate, workerID, actor.UserID,
		"Application updated",
		fmt.Sprintf("Your application for %q has been %s", j.Title, status))), nil
}
