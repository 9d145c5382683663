package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RowanDark/payloadforge/internal/batch"
	"github.com/RowanDark/payloadforge/internal/logging"
	"github.com/RowanDark/payloadforge/internal/observability/metrics"
)

type batchFlags struct {
	outputDir string
	field     string
	workers   int
}

func (f *batchFlags) register(cmd *cobra.Command, withWorkers bool) {
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "directory for json_<transform>.txt files (default from config)")
	cmd.Flags().StringVar(&f.field, "field", "", "JSON path of the payload in each export entry (default from config)")
	if withWorkers {
		cmd.Flags().IntVar(&f.workers, "workers", 0, "transforms converted in parallel (default from config)")
	}
}

// newRunner builds a batch runner from configuration and flags. finish closes
// the journal and writes the metrics textfile; it must be called once.
func (a *app) newRunner(ctx context.Context, f batchFlags) (runner *batch.Runner, finish func() error, err error) {
	logger := loggerFromContext(ctx)

	outputDir := a.cfg.OutputDir
	if f.outputDir != "" {
		outputDir = f.outputDir
	}
	field := a.cfg.PayloadField
	if f.field != "" {
		field = f.field
	}
	workers := a.cfg.Workers
	if f.workers > 0 {
		workers = f.workers
	}

	var journal *logging.Journal
	if a.cfg.JournalPath != "" {
		journal, err = logging.NewJournal("batch", logging.WithFile(a.cfg.JournalPath))
		if err != nil {
			return nil, nil, fmt.Errorf("open journal %s: %w", a.cfg.JournalPath, err)
		}
	}

	var recorder *metrics.Recorder
	if a.cfg.MetricsFile != "" {
		recorder = metrics.New()
		recorder.SetRegistered(a.registry.Len())
	}

	runner = batch.NewRunner(a.registry,
		batch.WithOutputDir(outputDir),
		batch.WithPayloadField(field),
		batch.WithWorkers(workers),
		batch.WithJournal(journal),
		batch.WithMetrics(recorder),
		batch.WithLogger(logger),
	)

	finish = func() error {
		var errs []error
		if err := journal.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close journal: %w", err))
		}
		if recorder != nil {
			if err := recorder.WriteTextfile(a.cfg.MetricsFile); err != nil {
				errs = append(errs, err)
			} else {
				logger.Debug("Wrote metrics", "path", a.cfg.MetricsFile)
			}
		}
		return errors.Join(errs...)
	}
	return runner, finish, nil
}

func newConvertCmd(a *app) *cobra.Command {
	var flags batchFlags

	cmd := &cobra.Command{
		Use:   "convert <export.json> <transform>",
		Short: "Transform every payload of a JSON export",
		Long: `Read a JSON array, take the payload field of every entry and write the
transformed payloads, one per line, to <output-dir>/json_<transform>.txt.
Entries without the field contribute an empty line.`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, finish, err := a.newRunner(cmd.Context(), flags)
			if err != nil {
				return err
			}
			res, err := runner.Convert(cmd.Context(), args[0], args[1])
			if finishErr := finish(); err == nil {
				err = finishErr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Wrote %d payloads to %s\n", res.Payloads, res.Output)
			return nil
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newRunAllCmd(a *app) *cobra.Command {
	var flags batchFlags

	cmd := &cobra.Command{
		Use:   "run-all <export.json>",
		Short: "Convert a JSON export with every registered transform",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			runner, finish, err := a.newRunner(cmd.Context(), flags)
			if err != nil {
				return err
			}
			summary, err := runner.RunAll(cmd.Context(), args[0])
			if finishErr := finish(); err == nil {
				err = finishErr
			}
			if err != nil {
				return err
			}

			for _, failure := range summary.Failed {
				logger.Error("Transform failed", "transform", failure.Transform, "err", failure.Err)
			}
			line := fmt.Sprintf("Converted %d payloads with %d transforms", summary.Payloads, len(summary.Succeeded))
			if isTerminal(a.stdout) {
				line = styleTitle.Render(line) + styleDim.Render(fmt.Sprintf(" (%s)", args[0]))
			}
			fmt.Fprintln(a.stdout, line)

			if len(summary.Failed) > 0 {
				return fmt.Errorf("%d transforms failed", len(summary.Failed))
			}
			return nil
		},
	}
	flags.register(cmd, true)
	return cmd
}
