package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/famgraph/internal/application/handlers"
	"github.com/ersonp/famgraph/internal/domain/services"
)

func newMergeCmd() *cobra.Command {
	var (
		inputs []string
		output string
	)

	cmd := &cobra.Command{
		Use:   "merge [-i] [file...]",
		Short: "Merge GRF files into one",
		Long: `Merges GRF files into a single graph. Individuals, families and sources
with the same identifier are combined and notes with the same text are
written once. Reads stdin when no input is given and writes stdout when no
output is given. Files may follow -i or be given as arguments.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, append(inputs, args...), output)
		},
	}

	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "Input GRF files (default stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output GRF file (default stdout)")

	return cmd
}

func runMerge(cmd *cobra.Command, inputs []string, output string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	return withLogger(cfg, false, func(logger *slog.Logger) error {
		handler := handlers.NewMergeHandler(services.NewMergeService(logger))

		out, closeOut, err := openOutput(output, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer closeOut()

		var result *handlers.MergeResult
		if len(inputs) == 0 {
			result, err = handler.HandleReaders(cmd.Context(), []io.Reader{cmd.InOrStdin()}, out)
		} else {
			result, err = handler.Handle(cmd.Context(), inputs, out)
		}
		if err != nil {
			if output != "" {
				closeOut()
				os.Remove(output)
			}
			return fmt.Errorf("merging: %w", err)
		}

		logger.Info("merged",
			"inputs", result.Inputs,
			"individuals", result.Stats.Individuals,
			"families", result.Stats.Families,
			"sources", result.Stats.Sources,
			"notes", result.Stats.Notes)
		return nil
	})
}
