package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/japaniel/kelime/pkg/app"
	"github.com/japaniel/kelime/pkg/config"
	"github.com/japaniel/kelime/pkg/kelime"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kelime",
		Short:         "Build an English-Turkish vocabulary and quiz yourself on it",
		Version:       kelime.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newUpdateCmd(), newLearnCmd(), newStatsCmd())
	return root
}

// withApp loads configuration, opens the App and runs fn. The dictionary is
// saved only when save is set and fn succeeded.
func withApp(cmd *cobra.Command, save bool, fn func(a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg.Log)

	a, err := app.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := fn(a); err != nil {
		return err
	}
	if err := cmd.Context().Err(); err != nil {
		return fmt.Errorf("interrupted, dictionary not saved: %w", err)
	}
	if save {
		return a.Save()
	}
	return nil
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update [wordlist]",
		Short: "Look up words from the word list that are not in the dictionary yet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, true, func(a *app.App) error {
				path := ""
				if len(args) == 1 {
					path = args[0]
				}
				out := cmd.OutOrStdout()
				report, err := a.Update(cmd.Context(), path, out)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Added %d, already known %d, failed %d\n",
					len(report.Added), len(report.Skipped), len(report.Failed))
				return nil
			})
		},
	}
}

func newLearnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "learn N",
		Short: "Quiz yourself on N words; press Enter to reveal a word, type anything to skip it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("learn: N must be a positive integer, got %q", args[0])
			}
			return withApp(cmd, true, func(a *app.App) error {
				out := cmd.OutOrStdout()
				res, err := a.Learn(cmd.Context(), n, cmd.InOrStdin(), out)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Reviewed %d of %d, skipped %d\n", res.Acknowledged, res.Shown, res.Skipped)
				return nil
			})
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the dictionary and past learn sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, false, func(a *app.App) error {
				return a.Stats(cmd.OutOrStdout())
			})
		},
	}
}
