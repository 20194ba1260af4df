package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var dispatchConfigPath string

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Run a single notification round",
	Long:  `Run one notification round from the command line and print its report. Useful for manual triggers and cron-driven batch jobs.`,
}

var dispatchNewPostingCmd = &cobra.Command{
	Use:   "new-posting <posting-id>",
	Short: "Recommend a posting to matching candidates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRound(cmd, func(a *app, ids []uuid.UUID) (any, error) {
			return a.dispatcher.DispatchNewPostingRecommendations(cmd.Context(), ids[0])
		}, args)
	},
}

var dispatchSimilarCmd = &cobra.Command{
	Use:   "similar <user-id> <applied-posting-id>",
	Short: "Recommend similar postings to a user who applied",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRound(cmd, func(a *app, ids []uuid.UUID) (any, error) {
			return a.dispatcher.DispatchSimilarPostingRecommendations(cmd.Context(), ids[0], ids[1])
		}, args)
	},
}

var dispatchSkillGapCmd = &cobra.Command{
	Use:   "skill-gap <user-id> <rejected-posting-id>",
	Short: "Send a skill-gap notification after a rejection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRound(cmd, func(a *app, ids []uuid.UUID) (any, error) {
			return a.dispatcher.DispatchSkillGapOnRejection(cmd.Context(), ids[0], ids[1])
		}, args)
	},
}

var dispatchUrgentCmd = &cobra.Command{
	Use:   "urgent <posting-id>",
	Short: "Alert nearby candidates about an urgent posting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRound(cmd, func(a *app, ids []uuid.UUID) (any, error) {
			return a.notifier.DispatchUrgentAlert(cmd.Context(), ids[0])
		}, args)
	},
}

var dispatchDigestCmd = &cobra.Command{
	Use:   "digest-flush",
	Short: "Flush the batched notification digest queue now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runRound(cmd, func(a *app, _ []uuid.UUID) (any, error) {
			return a.flusher.Flush(cmd.Context())
		}, nil)
	},
}

func init() {
	dispatchCmd.PersistentFlags().StringVar(&dispatchConfigPath, "config", "", "Path to config.json file")
	dispatchCmd.AddCommand(dispatchNewPostingCmd)
	dispatchCmd.AddCommand(dispatchSimilarCmd)
	dispatchCmd.AddCommand(dispatchSkillGapCmd)
	dispatchCmd.AddCommand(dispatchUrgentCmd)
	dispatchCmd.AddCommand(dispatchDigestCmd)
	rootCmd.AddCommand(dispatchCmd)
}

// runRound wires the app, parses the id arguments, runs one round, and prints
// its report as JSON.
func runRound(cmd *cobra.Command, round func(*app, []uuid.UUID) (any, error), args []string) error {
	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			return fmt.Errorf("invalid id %q: must be a UUID", arg)
		}
		ids = append(ids, id)
	}

	cfg, err := loadConfig(dispatchConfigPath)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := round(a, ids)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
