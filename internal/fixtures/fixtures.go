// Package fixtures loads seed data (staff users, job requisitions, candidates and onboarding
// records) from a JSON document and writes it through the storage layer.
package fixtures

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/talent-manager/internal/schemas"
	"github.com/jonathan/talent-manager/internal/types"
)

//go:embed demo.json
var demo []byte

// User is a staff account to create. Password is plain text and hashed at seed time.
type User struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

// Job is a requisition addressed by Key from candidates. PostedBy and HiringManager are user
// emails resolved at seed time.
type Job struct {
	Key           string `json:"key"`
	PostedBy      string `json:"posted_by,omitempty"`
	HiringManager string `json:"hiring_manager,omitempty"`
	types.CreateJobRequest
}

// Candidate is an application to the job with key Job. Status defaults to new.
type Candidate struct {
	Job    string                `json:"job"`
	Status types.CandidateStatus `json:"status,omitempty"`
	types.CreateCandidateRequest
}

// Onboarding is a record for the candidate with email Candidate. Manager and Buddy are user
// emails.
type Onboarding struct {
	Candidate string `json:"candidate"`
	Manager   string `json:"manager,omitempty"`
	Buddy     string `json:"buddy,omitempty"`
	types.CreateOnboardingRequest
}

// File is a complete fixture document
type File struct {
	Users      []User       `json:"users"`
	Jobs       []Job        `json:"jobs"`
	Candidates []Candidate  `json:"candidates,omitempty"`
	Onboarding []Onboarding `json:"onboarding,omitempty"`
}

// Demo returns the embedded demo fixture.
func Demo() (*File, error) {
	return Parse(demo)
}

// Load reads a fixture file. An empty path returns the embedded demo fixture.
func Load(path string) (*File, error) {
	if path == "" {
		return Demo()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates data against the fixture schema, decodes it and checks that every job key,
// user email and candidate email it references is defined exactly once.
func Parse(data []byte) (*File, error) {
	if err := schemas.Validate(schemas.Fixtures, data); err != nil {
		return nil, fmt.Errorf("invalid fixtures: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	if err := f.check(); err != nil {
		return nil, fmt.Errorf("invalid fixtures: %w", err)
	}
	return &f, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (f *File) check() error {
	users := make(map[string]bool, len(f.Users))
	for _, u := range f.Users {
		email := normalizeEmail(u.Email)
		if users[email] {
			return fmt.Errorf("duplicate user %s", u.Email)
		}
		users[email] = true
	}

	userRef := func(what, email string) error {
		if email != "" && !users[normalizeEmail(email)] {
			return fmt.Errorf("%s references unknown user %s", what, email)
		}
		return nil
	}

	jobs := make(map[string]bool, len(f.Jobs))
	for _, j := range f.Jobs {
		if jobs[j.Key] {
			return fmt.Errorf("duplicate job key %s", j.Key)
		}
		jobs[j.Key] = true
		if err := userRef("job "+j.Key, j.PostedBy); err != nil {
			return err
		}
		if err := userRef("job "+j.Key, j.HiringManager); err != nil {
			return err
		}
	}

	candidates := make(map[string]types.CandidateStatus, len(f.Candidates))
	for _, c := range f.Candidates {
		email := normalizeEmail(c.Email)
		if _, dup := candidates[email]; dup {
			return fmt.Errorf("duplicate candidate %s", c.Email)
		}
		if !jobs[c.Job] {
			return fmt.Errorf("candidate %s references unknown job %s", c.Email, c.Job)
		}
		status := c.Status
		if status == "" {
			status = types.CandidateNew
		}
		candidates[email] = status
	}

	onboarded := make(map[string]bool, len(f.Onboarding))
	for _, o := range f.Onboarding {
		email := normalizeEmail(o.Candidate)
		status, ok := candidates[email]
		if !ok {
			return fmt.Errorf("onboarding references unknown candidate %s", o.Candidate)
		}
		if status != types.CandidateHired {
			return fmt.Errorf("onboarding for %s requires a hired candidate, got %s", o.Candidate, status)
		}
		if onboarded[email] {
			return fmt.Errorf("duplicate onboarding for %s", o.Candidate)
		}
		onboarded[email] = true
		if err := userRef("onboarding "+o.Candidate, o.Manager); err != nil {
			return err
		}
		if err := userRef("onboarding "+o.Candidate, o.Buddy); err != nil {
			return err
		}
	}
	return nil
}
