package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/talent-manager/internal/observability"
	"github.com/jonathan/talent-manager/internal/scoring"
	"github.com/jonathan/talent-manager/internal/types"
	"github.com/spf13/cobra"
)

var (
	scoreCandidate string
	scoreJob       string
	scoreJSON      bool
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a candidate against a job offline",
	Long:  "Reads a candidate profile and a job requisition from JSON files and prints the fit score with its per-band breakdown.",
	RunE:  runScore,
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreCandidate, "candidate", "c", "", "Path to candidate JSON file (required)")
	scoreCmd.Flags().StringVarP(&scoreJob, "job", "j", "", "Path to job JSON file (required)")
	scoreCmd.Flags().BoolVar(&scoreJSON, "output-json", false, "Print the breakdown as JSON")

	if err := scoreCmd.MarkFlagRequired("candidate"); err != nil {
		panic(fmt.Sprintf("failed to mark candidate flag as required: %v", err))
	}
	if err := scoreCmd.MarkFlagRequired("job"); err != nil {
		panic(fmt.Sprintf("failed to mark job flag as required: %v", err))
	}

	rootCmd.AddCommand(scoreCmd)
}

func readJSONFile(path string, v any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}

func runScore(cmd *cobra.Command, _ []string) error {
	var candidate types.CandidateProfile
	if err := readJSONFile(scoreCandidate, &candidate); err != nil {
		return err
	}
	var job types.JobRequisition
	if err := readJSONFile(scoreJob, &job); err != nil {
		return err
	}

	b := scoring.Explain(&candidate, &job)
	out := cmd.OutOrStdout()
	if scoreJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}

	observability.NewPrinter(out).PrintBreakdown(&candidate, &job, b)
	return nil
}
