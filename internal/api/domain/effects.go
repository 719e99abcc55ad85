package domain

import "fmt"

// EffectType names a notification produced by a transition
type EffectType string

const (
	EffectJobMatch             EffectType = "job_match"
	EffectJobApplied           EffectType = "job_applied"
	EffectApplicationSent      EffectType = "application_sent"
	EffectApplicationCancelled EffectType = "application_cancelled"
	EffectJobAccepted          EffectType = "job_accepted"
	EffectApplicationRejected  EffectType = "application_rejected"
	EffectApplicationUpdate    EffectType = "application_update"
	EffectJobClosed            EffectType = "job_closed"
)

// Effect is a side effect requested by a committed transition. Callers
// dispatch effects only after the job write succeeded.
type Effect struct {
	Type      EffectType
	Recipient string
	Sender    string
	JobID     string
	Title     string
	Message   string
}

func (j *Job) effect(t EffectType, recipient, sender, title, message string) Effect {
	return Effect{
		Type:      t,
		Recipient: recipient,
		Sender:    sender,
		JobID:     j.ID,
		Title:     title,
		Message:   message,
	}
}

// JobMatchEffects announces a new job to the workers it matches
func JobMatchEffects(job *Job, workerIDs []string) []Effect {
	effects := make([]Effect, 0, len(workerIDs))
	for _, id := range workerIDs {
		effects = append(effects, job.effect(
			EffectJobMatch, id, job.PostedBy,
			"New job match",
			fmt.Sprintf("New job in your area matching your skills: %s", job.Title),
		))
	}
	return effects
}
