// Package observability provides formatted output for the CLI's human-readable mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/talent-manager/internal/onboarding"
	"github.com/jonathan/talent-manager/internal/scoring"
	"github.com/jonathan/talent-manager/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the offline commands
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList writes up to maxItemsToShow bullets and a count of the rest.
func writeList(sb *strings.Builder, items []string) {
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// PrintBreakdown outputs a candidate's fit score with the contribution of every band.
func (p *Printer) PrintBreakdown(candidate *types.CandidateProfile, job *types.JobRequisition, b scoring.Breakdown) {
	var sb strings.Builder

	if candidate != nil && candidate.FullName() != "" {
		sb.WriteString(fmt.Sprintf("Candidate:    %s\n", candidate.FullName()))
	}
	if job != nil && job.Title != "" {
		sb.WriteString(fmt.Sprintf("Job:          %s (%s)\n", job.Title, job.ExperienceLevel))
	}
	if sb.Len() > 0 {
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Experience    %5.1f / %d\n", b.Experience, scoring.ExperienceMatchPoints))
	sb.WriteString(fmt.Sprintf("Skills        %5.1f / %d\n", b.Skills, scoring.SkillsMaxPoints))
	sb.WriteString(fmt.Sprintf("Education     %5.1f / %d\n", b.Education, scoring.EducationPoints))
	sb.WriteString(fmt.Sprintf("Completeness  %5.1f / %d\n", b.Completeness, scoring.ResumePoints+scoring.CoverLetterPoints))

	if len(b.MatchedSkills) > 0 {
		sb.WriteString("\nMatched skills:\n")
		writeList(&sb, b.MatchedSkills)
	}

	p.printBox(fmt.Sprintf("FIT SCORE: %d/%d", b.Total, scoring.MaxScore), strings.TrimSuffix(sb.String(), "\n"))
}

// statusMarker renders a checklist status as a checkbox.
func statusMarker(s types.ChecklistStatus) string {
	switch s {
	case types.ItemCompleted:
		return "[x]"
	case types.ItemInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

// PrintProgress outputs the derived progress of a checklist followed by its items.
func (p *Printer) PrintProgress(items []types.ChecklistItem, progress onboarding.Progress) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Completion: %d%% (%d/%d tasks)\n", progress.Percentage, progress.Completed, progress.Total))
	sb.WriteString(fmt.Sprintf("Status:     %s\n", progress.Status))

	if len(items) > 0 {
		sb.WriteString("\n")
	}
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("%s %s", statusMarker(item.Status), item.Task))
		if item.AssignedTo != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", item.AssignedTo))
		}
		sb.WriteString("\n")
	}

	p.printBox("ONBOARDING PROGRESS", strings.TrimSuffix(sb.String(), "\n"))
}
