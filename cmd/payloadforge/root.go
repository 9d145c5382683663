package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/RowanDark/payloadforge/internal/config"
	"github.com/RowanDark/payloadforge/internal/transform"
)

const productName = "payloadforge"

// app holds what every command shares once the root pre-run has resolved
// configuration and built the registry.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool
	seed       int64

	cfg      config.Config
	registry *transform.Registry
}

// usageError marks errors caused by how the command was invoked.
type usageError struct {
	command string
	err     error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &usageError{command: cmd.CommandPath(), err: err}
		}
		return nil
	}
}

func newRootCmd(a *app) *cobra.Command {
	var list bool

	root := &cobra.Command{
		Use:   productName,
		Short: "Encode and obfuscate security testing payloads",
		Long: `payloadforge applies named encoding, escaping, compression and obfuscation
transforms to payloads. Generated families cover byte encodings crossed with
hex, base64 and percent output, and chains compose neighbouring transforms.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              usageArgs(cobra.NoArgs),
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !list {
				_ = cmd.Help()
				return &usageError{command: cmd.CommandPath(), err: fmt.Errorf("a command or --list is required")}
			}
			for _, name := range a.registry.List() {
				fmt.Fprintln(a.stdout, name)
			}
			return nil
		},
	}
	root.SetVersionTemplate(productName + " {{.Version}}\n")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{command: cmd.CommandPath(), err: err}
	})

	root.Flags().BoolVar(&list, "list", false, "print every transform name and exit")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "configuration file (default ./"+config.LocalFile+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().Int64Var(&a.seed, "seed", 0, "seed for shuffle_string (0 = time based)")

	root.AddCommand(newListCmd(a))
	root.AddCommand(newApplyCmd(a))
	root.AddCommand(newConvertCmd(a))
	root.AddCommand(newRunAllCmd(a))
	root.AddCommand(newVersionCmd(a))

	return root
}

// setup loads configuration, installs the logger and builds the registry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = a.seed
	}
	a.cfg = cfg

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if a.verbose {
		level = log.DebugLevel
	}
	logger := newLogger(a.stderr, level, cfg.Log.Format)
	cmd.SetContext(withLogger(cmd.Context(), logger))

	reg, err := transform.New(
		transform.WithSeed(cfg.Seed),
		transform.WithChainWindow(cfg.ChainLimit, cfg.ChainWidth),
	)
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}
	a.registry = reg
	logger.Debug("Registry ready", "transforms", reg.Len(), "chain_limit", cfg.ChainLimit, "chain_width", cfg.ChainWidth)
	return nil
}
