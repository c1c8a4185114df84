package main

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/talent-manager/internal/observability"
	"github.com/jonathan/talent-manager/internal/onboarding"
	"github.com/jonathan/talent-manager/internal/types"
	"github.com/spf13/cobra"
)

var (
	progressChecklist string
	progressJSON      bool
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Compute onboarding progress from a checklist file",
	Long: `Reads a JSON array of checklist items (or an onboarding record with a "checklist" field)
and prints the completion percentage and overall status.`,
	RunE: runProgress,
}

func init() {
	progressCmd.Flags().StringVarP(&progressChecklist, "in", "i", "", "Path to checklist JSON file (required)")
	progressCmd.Flags().BoolVar(&progressJSON, "output-json", false, "Print the progress as JSON")

	if err := progressCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(progressCmd)
}

// readChecklist accepts a bare item array or a full record.
func readChecklist(path string) ([]types.ChecklistItem, error) {
	var raw json.RawMessage
	if err := readJSONFile(path, &raw); err != nil {
		return nil, err
	}

	var items []types.ChecklistItem
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var rec types.OnboardingRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: expected a checklist array or an onboarding record: %w", path, err)
	}
	return rec.Checklist, nil
}

func runProgress(cmd *cobra.Command, _ []string) error {
	items, err := readChecklist(progressChecklist)
	if err != nil {
		return err
	}
	for i, item := range items {
		if item.Status != "" && !item.Status.Valid() {
			return fmt.Errorf("checklist item %d (%s): unknown status %q", i+1, item.Task, item.Status)
		}
	}

	p := onboarding.Recompute(items)
	out := cmd.OutOrStdout()
	if progressJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}

	observability.NewPrinter(out).PrintProgress(items, p)
	return nil
}
