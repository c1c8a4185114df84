// Package scoring computes the rule-based fit score of a candidate for a job requisition.
//
// The score is the sum of four independent bands:
//
//	experience   30 when the years of experience fall in the job's band, 10 otherwise
//	skills       up to 40, proportional to the job skills covered by the candidate
//	education    15 when at least one education entry is present
//	completeness 10 for a resume plus 5 for a cover letter
//
// Missing or malformed inputs contribute zero to their band; scoring never fails.
package scoring

import (
	"math"
	"strings"

	"github.com/jonathan/talent-manager/internal/types"
)

// Band ceilings
const (
	ExperienceMatchPoints   = 30
	ExperienceFallbackPoint = 10
	SkillsMaxPoints         = 40
	EducationPoints         = 15
	ResumePoints            = 10
	CoverLetterPoints       = 5

	MaxScore = 100
)

// Canonical experience ranges, in years
const (
	entryMaxYears  = 2
	midMinYears    = 2
	midMaxYears    = 5
	seniorMinYears = 5
)

// Breakdown is the per-band contribution behind a score.
type Breakdown struct {
	Experience    float64  `json:"experience"`
	Skills        float64  `json:"skills"`
	Education     float64  `json:"education"`
	Completeness  float64  `json:"completeness"`
	MatchedSkills []string `json:"matched_skills"`
	Total         int      `json:"total"`
}

// Score returns the fit score of candidate for job, in [0,100].
func Score(candidate *types.CandidateProfile, job *types.JobRequisition) int {
	return Explain(candidate, job).Total
}

// Explain scores candidate against job and returns every band's contribution.
// A nil candidate or job yields an all-zero breakdown.
func Explain(candidate *types.CandidateProfile, job *types.JobRequisition) Breakdown {
	b := Breakdown{MatchedSkills: []string{}}
	if candidate == nil || job == nil {
		return b
	}

	b.Experience = experienceBand(candidate.Experience, job.ExperienceLevel)
	b.Skills, b.MatchedSkills = skillBand(candidate.Skills, job.Skills)
	b.Education = educationBand(candidate.Education)
	b.Completeness = completenessBand(candidate.Resume, candidate.CoverLetter)

	total := int(math.Round(b.Experience + b.Skills + b.Education + b.Completeness))
	b.Total = min(max(total, 0), MaxScore)
	return b
}

// experienceBand awards the full band when years falls inside the level's canonical range.
// Lead, Executive and unknown levels always get the fallback.
func experienceBand(years int, level types.ExperienceLevel) float64 {
	if years < 0 {
		return ExperienceFallbackPoint
	}

	var match bool
	switch level {
	case types.ExperienceEntry:
		match = years <= entryMaxYears
	case types.ExperienceMid:
		match = years >= midMinYears && years <= midMaxYears
	case types.ExperienceSenior:
		match = years >= seniorMinYears
	}

	if match {
		return ExperienceMatchPoints
	}
	return ExperienceFallbackPoint
}

// skillBand counts candidate skills contained (case-insensitively) in any job skill.
// Both lists are treated as case-insensitive sets with blanks dropped, so repeated
// spellings of one skill count once on either side.
func skillBand(candidateSkills, jobSkills []string) (float64, []string) {
	matched := make([]string, 0)
	candidate := distinctSkills(candidateSkills)
	job := distinctSkills(jobSkills)
	if len(candidate) == 0 || len(job) == 0 {
		return 0, matched
	}

	for _, skill := range candidate {
		needle := strings.ToLower(skill)
		for _, js := range job {
			if strings.Contains(strings.ToLower(js), needle) {
				matched = append(matched, skill)
				break
			}
		}
	}

	score := SkillsMaxPoints * float64(len(matched)) / float64(len(job))
	return math.Min(score, SkillsMaxPoints), matched
}

// distinctSkills trims skills and drops blanks and case-insensitive repeats,
// keeping the first spelling seen.
func distinctSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func educationBand(education []types.Education) float64 {
	if len(education) > 0 {
		return EducationPoints
	}
	return 0
}

func completenessBand(resume *types.Resume, coverLetter string) float64 {
	score := 0.0
	if resume.Present() {
		score += ResumePoints
	}
	if strings.TrimSpace(coverLetter) != "" {
		score += CoverLetterPoints
	}
	return score
}
