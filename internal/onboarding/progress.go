// Package onboarding derives the progress of an onboarding record from its checklist and
// applies checklist item transitions.
package onboarding

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-manager/internal/types"
)

// Progress is the derived state of a checklist
type Progress struct {
	Percentage int                    `json:"percentage"`
	Status     types.OnboardingStatus `json:"status"`
	Completed  int                    `json:"completed"`
	Total      int                    `json:"total"`
}

// Recompute classifies a checklist. Completed means every item is completed and not started
// means every item is pending; anything else, including 99%, is in progress.
// An empty checklist is 0% and not started.
func Recompute(items []types.ChecklistItem) Progress {
	p := Progress{Status: types.OnboardingNotStarted, Total: len(items)}
	if len(items) == 0 {
		return p
	}

	pending := 0
	for _, item := range items {
		switch item.Status {
		case types.ItemCompleted:
			p.Completed++
		case types.ItemPending, "":
			pending++
		}
	}

	p.Percentage = int(math.Round(100 * float64(p.Completed) / float64(p.Total)))

	switch {
	case p.Completed == p.Total:
		p.Status = types.OnboardingCompleted
	case pending == p.Total:
		p.Status = types.OnboardingNotStarted
	default:
		p.Status = types.OnboardingInProgress
	}
	return p
}

// Apply recomputes the derived fields of rec from its checklist.
func Apply(rec *types.OnboardingRecord) Progress {
	p := Recompute(rec.Checklist)
	rec.CompletionPercentage = p.Percentage
	rec.OverallStatus = p.Status
	return p
}

// Transition moves item to status. Moving to completed stamps the completion time and the
// actor; moving away from completed clears them. Skipping in_progress is allowed.
func Transition(item *types.ChecklistItem, status types.ChecklistStatus, actor *uuid.UUID, now time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("unknown checklist status %q", status)
	}

	if status == types.ItemCompleted {
		if item.Status != types.ItemCompleted {
			completedAt := now
			item.CompletedDate = &completedAt
			item.CompletedBy = actor
		}
	} else {
		item.CompletedDate = nil
		item.CompletedBy = nil
	}

	item.Status = status
	return nil
}

// FindItem returns the checklist item with the given ID, or nil.
func FindItem(items []types.ChecklistItem, id uuid.UUID) *types.ChecklistItem {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}
