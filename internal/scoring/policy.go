package scoring

import (
	"fmt"
	"strings"
)

// Mode controls when a stored fit score is refreshed.
type Mode string

const (
	// ModeSnapshot scores once, when the application is created. Later edits to the candidate
	// or the job leave the stored score untouched, so it reflects the application as submitted.
	ModeSnapshot Mode = "snapshot"
	// ModeRecompute re-scores the candidate on every update.
	ModeRecompute Mode = "recompute"
)

// ParseMode parses a configured mode; empty means snapshot.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSnapshot:
		return ModeSnapshot, nil
	case ModeRecompute:
		return ModeRecompute, nil
	default:
		return "", fmt.Errorf("unknown scoring mode %q (want snapshot or recompute)", s)
	}
}

// RescoreOnUpdate reports whether an edited candidate should be scored again.
func (m Mode) RescoreOnUpdate() bool {
	return m == ModeRecompute
}
