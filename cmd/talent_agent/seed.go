package main

import (
	"errors"
	"fmt"

	"github.com/jonathan/talent-manager/internal/db"
	"github.com/jonathan/talent-manager/internal/fixtures"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var (
	seedFixtures string
	seedYes      bool
)

var errSeedAborted = errors.New("seed aborted")

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all data with fixture data",
	Long: `Delete every user, job, candidate and onboarding record, then load the fixture file
(the embedded demo data when none is given). Candidates are scored against their job as they
are inserted.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFixtures, "fixtures", "f", "", "Path to fixtures JSON file (default: embedded demo data)")
	seedCmd.Flags().BoolVarP(&seedYes, "yes", "y", false, "Do not ask for confirmation before clearing data")
	seedCmd.Flags().String("database-url", "", "PostgreSQL connection URL")
	rootCmd.AddCommand(seedCmd)
}

// confirmReset asks before existing data is deleted.
func confirmReset() error {
	prompt := promptui.Prompt{
		Label:     "This deletes all existing data. Continue",
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
			return errSeedAborted
		}
		return fmt.Errorf("confirmation failed: %w", err)
	}
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	path := seedFixtures
	if path == "" {
		path = cfg.Seed.Fixtures
	}
	f, err := fixtures.Load(path)
	if err != nil {
		return err
	}

	passwords, err := cfg.Password()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if !seedYes {
		if err := confirmReset(); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Reset(ctx); err != nil {
		return err
	}

	sum, err := fixtures.Seed(ctx, database, f, passwords, log)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s\n", sum)
	return nil
}
