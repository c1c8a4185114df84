package onboarding

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-manager/internal/schemas"
	"github.com/jonathan/talent-manager/internal/types"
)

// Task is one entry of a checklist template
type Task struct {
	Task        string      `json:"task"`
	Description string      `json:"description,omitempty"`
	AssignedTo  types.Owner `json:"assigned_to"`
}

// Template is the checklist seeded into a new onboarding record when the request does not
// bring its own.
type Template []Task

// DefaultTemplate returns the eight standard onboarding tasks.
func DefaultTemplate() Template {
	return Template{
		{Task: "Create employee account", AssignedTo: types.OwnerIT, Description: "Set up email and system access"},
		{Task: "Prepare workstation", AssignedTo: types.OwnerIT, Description: "Setup computer and required software"},
		{Task: "Complete employment forms", AssignedTo: types.OwnerHR, Description: "Tax forms, contracts, and policies"},
		{Task: "Assign mentor/buddy", AssignedTo: types.OwnerHR, Description: "Pair with experienced team member"},
		{Task: "Schedule orientation", AssignedTo: types.OwnerTraining, Description: "Company overview and culture training"},
		{Task: "Department introduction", AssignedTo: types.OwnerManager, Description: "Meet team and tour facilities"},
		{Task: "Review job responsibilities", AssignedTo: types.OwnerManager, Description: "Discuss role expectations and goals"},
		{Task: "Complete mandatory training", AssignedTo: types.OwnerEmployee, Description: "Safety, compliance, and systems training"},
	}
}

// LoadTemplate reads a checklist template from a JSON file. An empty path returns the default.
func LoadTemplate(path string) (Template, error) {
	if path == "" {
		return DefaultTemplate(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checklist template %s: %w", path, err)
	}
	return ParseTemplate(data)
}

// ParseTemplate validates data against the checklist template schema and decodes it.
func ParseTemplate(data []byte) (Template, error) {
	if err := schemas.Validate(schemas.ChecklistTemplate, data); err != nil {
		return nil, fmt.Errorf("invalid checklist template: %w", err)
	}

	var tmpl Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse checklist template: %w", err)
	}
	return tmpl, nil
}

// Checklist instantiates the template as pending items with fresh IDs.
func (t Template) Checklist() []types.ChecklistItem {
	items := make([]types.ChecklistItem, 0, len(t))
	for _, task := range t {
		items = append(items, types.ChecklistItem{
			ID:          uuid.New(),
			Task:        task.Task,
			Description: task.Description,
			AssignedTo:  task.AssignedTo,
			Status:      types.ItemPending,
		})
	}
	return items
}

// BuildChecklist returns the request's own checklist when it has one and the template
// otherwise. Items supplied as completed are stamped with actor and now; an unknown
// status fails the whole checklist.
func BuildChecklist(inputs []types.ChecklistItemInput, tmpl Template, actor *uuid.UUID, now time.Time) ([]types.ChecklistItem, error) {
	if len(inputs) == 0 {
		return tmpl.Checklist(), nil
	}

	items := make([]types.ChecklistItem, 0, len(inputs))
	for i, in := range inputs {
		item := types.ChecklistItem{
			ID:          uuid.New(),
			Task:        in.Task,
			Description: in.Description,
			AssignedTo:  in.AssignedTo,
			Status:      types.ItemPending,
			DueDate:     in.DueDate,
		}
		if in.Status != "" {
			if err := Transition(&item, in.Status, actor, now); err != nil {
				return nil, fmt.Errorf("checklist item %d: %w", i+1, err)
			}
		}
		items = append(items, item)
	}
	return items, nil
}
