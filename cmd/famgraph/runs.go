package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ersonp/famgraph/internal/application/handlers"
	"github.com/ersonp/famgraph/internal/domain/entities"
	"github.com/ersonp/famgraph/internal/infrastructure/relationaldb/sqlite"
)

func newRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent fetch runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(cmd, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", DefaultRunsLimit, "Maximum number of runs to display (0 for all)")

	return cmd
}

func runRuns(cmd *cobra.Command, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	return withStore(ctx, cfg, func(store *sqlite.Repository) error {
		runs, err := handlers.NewRunsHandler(store).Handle(ctx, limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs recorded.")
			return nil
		}
		return displayRuns(cmd, runs)
	})
}

func displayRuns(cmd *cobra.Command, runs []*entities.Run) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSEEDS\tINDIVIDUALS\tFAMILIES\tSOURCES\tNOTES\tREQUESTS\tDURATION")
	for _, r := range runs {
		seeds := strings.Join(r.Seeds, ",")
		if seeds == "" {
			seeds = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			seeds,
			r.Individuals, r.Families, r.Sources, r.Notes,
			r.Requests,
			r.Duration().Round(time.Second))
	}
	return w.Flush()
}
