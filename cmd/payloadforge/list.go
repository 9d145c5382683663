package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/RowanDark/payloadforge/internal/transform"
)

type transformInfo struct {
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category" yaml:"category"`
	Description string `json:"description" yaml:"description"`
}

func newListCmd(a *app) *cobra.Command {
	var (
		category string
		format   string
		describe bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available transforms",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := a.registry.List()
			if category != "" {
				names = a.registry.ListByCategory(transform.Category(category))
			}

			switch format {
			case "text":
				return a.printListText(names, category, describe)
			case "json", "yaml":
				return a.printListStructured(names, format, describe)
			default:
				return &usageError{command: cmd.CommandPath(), err: fmt.Errorf("unknown format %q (want text, json or yaml)", format)}
			}
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only list one category (identity, encode, decode, escape, cipher, compress, cosmetic, family, chain)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json or yaml")
	cmd.Flags().BoolVar(&describe, "describe", false, "include category and description")
	return cmd
}

func (a *app) printListText(names []string, category string, describe bool) error {
	if isTerminal(a.stdout) {
		title := fmt.Sprintf("%d transforms", len(names))
		if category != "" {
			title = fmt.Sprintf("%d %s transforms", len(names), category)
		}
		fmt.Fprintln(a.stdout, styleTitle.Render(title))
	}
	if !describe {
		for _, name := range names {
			fmt.Fprintln(a.stdout, name)
		}
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, info := range a.describe(names) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.Category, info.Description)
	}
	return tw.Flush()
}

func (a *app) printListStructured(names []string, format string, describe bool) error {
	var v any = names
	if describe {
		v = a.describe(names)
	}

	if format == "json" {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	}

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	_, err := fmt.Fprint(a.stdout, sb.String())
	return err
}

func (a *app) describe(names []string) []transformInfo {
	infos := make([]transformInfo, 0, len(names))
	for _, name := range names {
		t, ok := a.registry.Lookup(name)
		if !ok {
			continue
		}
		infos = append(infos, transformInfo{
			Name:        t.Name(),
			Category:    string(t.Category()),
			Description: t.Description(),
		})
	}
	return infos
}
