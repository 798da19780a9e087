package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/famgraph/internal/application/handlers"
	"github.com/ersonp/famgraph/internal/infrastructure/config"
)

type fetchFlags struct {
	ids          []string
	ancestors    int
	descendants  int
	spouses      bool
	contributors bool
	ordinances   bool
	timeout      int
	output       string
	logFile      string
	verbose      bool
}

func newFetchCmd() *cobra.Command {
	var flags fetchFlags

	cmd := &cobra.Command{
		Use:   "fetch [-i] [id...]",
		Short: "Download a family tree as a GRF file",
		Long: `Downloads the starting individuals (the signed-in user by default), their
ancestors and descendants for the requested number of generations, and
optionally spouses, contributors and ordinances, then writes the tree as
GRF to the output file or stdout. Person ids may follow -i or be given as
arguments.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.ids = append(flags.ids, args...)
			return runFetch(cmd, flags)
		},
	}

	cmd.Flags().StringSliceVarP(&flags.ids, "individuals", "i", nil, "Person ids to start from (default: the signed-in user)")
	cmd.Flags().IntVarP(&flags.ancestors, "ancestors", "a", 0, "Generations of ancestors to download (default from config)")
	cmd.Flags().IntVarP(&flags.descendants, "descendants", "d", 0, "Generations of descendants to download (default from config)")
	cmd.Flags().BoolVarP(&flags.spouses, "marriages", "m", false, "Add spouses and couple information")
	cmd.Flags().BoolVarP(&flags.contributors, "contributors", "r", false, "Add the list of contributors in notes")
	cmd.Flags().BoolVarP(&flags.ordinances, "ordinances", "c", false, "Add ordinances (the account must be allowed to read them)")
	cmd.Flags().IntVarP(&flags.timeout, "timeout", "t", 0, "Request timeout in seconds (default from config)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output GRF file (default stdout)")
	cmd.Flags().StringVarP(&flags.logFile, "log", "l", "", "Log file (default stderr)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log every request")

	return cmd
}

func runFetch(cmd *cobra.Command, flags fetchFlags) error {
	if err := validateIDs(flags.ids); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFetchFlags(cmd, cfg, flags)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	ctx := cmd.Context()
	errOut := cmd.ErrOrStderr()

	return withDeps(ctx, cfg, flags.verbose, func(deps *Deps) error {
		out, closeOut, err := openOutput(flags.output, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeOut()

		opts := handlers.FetchOptions{
			Seeds:        flags.ids,
			Ancestors:    cfg.Fetch.Ancestors,
			Descendants:  cfg.Fetch.Descendants,
			Spouses:      cfg.Fetch.Spouses,
			Contributors: cfg.Fetch.Contributors,
			Ordinances:   cfg.Fetch.Ordinances,
			Workers:      cfg.Fetch.Workers,
		}

		result, err := deps.FetchHandler.Handle(ctx, opts, out, func(msg string) {
			fmt.Fprintln(errOut, msg)
		})
		if err != nil {
			if flags.output != "" {
				closeOut()
				os.Remove(flags.output)
			}
			return err
		}

		if result.OrdinancesDisabled {
			fmt.Fprintln(errOut, "Ordinances are not available for this account and were skipped.")
		}
		if result.SupplementFailed > 0 {
			fmt.Fprintf(errOut, "%d supplementary downloads failed, see the log for details.\n", result.SupplementFailed)
		}
		fmt.Fprintln(errOut, result.Summary())
		return nil
	})
}

// applyFetchFlags overrides cfg with the flags set on the command line.
func applyFetchFlags(cmd *cobra.Command, cfg *config.Config, flags fetchFlags) {
	changed := cmd.Flags().Changed
	if changed("ancestors") {
		cfg.Fetch.Ancestors = flags.ancestors
	}
	if changed("descendants") {
		cfg.Fetch.Descendants = flags.descendants
	}
	if changed("marriages") {
		cfg.Fetch.Spouses = flags.spouses
	}
	if changed("contributors") {
		cfg.Fetch.Contributors = flags.contributors
	}
	if changed("ordinances") {
		cfg.Fetch.Ordinances = flags.ordinances
	}
	if changed("timeout") {
		cfg.Source.TimeoutSeconds = flags.timeout
	}
	if changed("log") {
		cfg.Log.File = flags.logFile
	}
}

func validateIDs(ids []string) error {
	for _, id := range ids {
		if !personIDPattern.MatchString(id) {
			return fmt.Errorf("invalid FamilySearch ID: %s", id)
		}
	}
	return nil
}
