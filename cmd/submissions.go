package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/crumble-bakery/signup-service/app/repository"
	"github.com/crumble-bakery/signup-service/config"

	"github.com/spf13/cobra"
)

var submissionsJSON bool

var submissionsCmd = &cobra.Command{
	Use:   "submissions",
	Short: "Inspect recorded signups",
}

var submissionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded signups in append order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, cleanup, err := newSubmissionStoreForCommands()
		if err != nil {
			return err
		}
		defer cleanup()

		submissions := store.Submissions(cmd.Context())
		if submissionsJSON {
			return json.NewEncoder(os.Stdout).Encode(submissions)
		}

		for _, s := range submissions {
			fmt.Printf("%d\t%s\n", s.Position, s.Email)
		}
		fmt.Printf("total: %d\n", len(submissions))
		return nil
	},
}

var submissionsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the submission count and rate-limit state",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, cleanup, err := newSubmissionStoreForCommands()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		fmt.Printf("total_submissions: %d\n", len(store.Submissions(ctx)))
		fmt.Printf("rate_limited: %v\n", store.IsRateLimited(ctx))
		if state := store.RateLimitState(ctx); state != nil {
			fmt.Printf("attempts: %d\n", state.Attempts)
			fmt.Printf("window_start: %s\n", state.WindowStart().UTC().Format(time.RFC3339))
		}
		return nil
	},
}

func newSubmissionStoreForCommands() (*repository.SubmissionStore, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	kv, err := repository.NewKV(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}

	store := repository.NewSubmissionStore(kv, cfg.Storage.KeyPrefix, cfg.Signup.RateLimitWindow, cfg.Signup.RateLimitMaxAttempts)
	return store, func() { _ = kv.Close() }, nil
}

func init() {
	submissionsListCmd.Flags().BoolVar(&submissionsJSON, "json", false, "output as JSON")
	submissionsCmd.AddCommand(submissionsListCmd)
	submissionsCmd.AddCommand(submissionsStatsCmd)
	rootCmd.AddCommand(submissionsCmd)
}
