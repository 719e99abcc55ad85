package domain

import "sort"

// DefaultMatchLimit is the number of matches returned when the caller gives none
const DefaultMatchLimit = 10

// ScoredJob is a match candidate with its skill overlap count
type ScoredJob struct {
	Job   Job
	Score int
}

// SkillOverlap counts the distinct required skills the worker has. Labels are
// compared exactly, including case.
func SkillOverlap(required, skills []string) int {
	if len(required) == 0 || len(skills) == 0 {
		return 0
	}

	have := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		have[s] = struct{}{}
	}

	counted := make(map[string]struct{}, len(required))
	score := 0
	for _, r := range required {
		if _, ok := have[r]; !ok {
			continue
		}
		if _, dup := counted[r]; dup {
			continue
		}
		counted[r] = struct{}{}
		score++
	}
	return score
}

// Match keeps the open jobs in the worker's barangay that share at least one
// skill with the worker, orders them by descending overlap and returns at most
// limit of them. Equal scores keep their input order, so callers control the
// tie-break through the order of jobs. A limit of zero or less yields an
// empty result.
func Match(jobs []Job, worker Worker, limit int) []ScoredJob {
	if limit <= 0 {
		return []ScoredJob{}
	}

	scored := make([]ScoredJob, 0, len(jobs))
	for _, job := range jobs {
		if !job.IsOpen() || job.Barangay != worker.Barangay {
			continue
		}
		score := SkillOverlap(job.RequiredSkills, worker.Skills)
		if score == 0 {
			continue
		}
		scored = append(scored, ScoredJob{Job: job, Score: score})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
