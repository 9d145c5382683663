package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newApplyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <transform> [text]",
		Short: "Apply one transform to text",
		Long: `Apply one transform and print the result.

When text is omitted it is read from standard input and a single trailing
newline is removed.`,
		Example: `  payloadforge apply base64 abc
  echo "<script>" | payloadforge apply html_num_hex`,
		Args: usageArgs(cobra.RangeArgs(1, 2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			var input string
			if len(args) == 2 {
				input = args[1]
			} else {
				data, err := io.ReadAll(a.stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				input = trimNewline(string(data))
			}

			out, err := a.registry.Apply(name, input)
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("Applied transform", "transform", name, "in", len(input), "out", len(out))
			_, err = fmt.Fprintln(a.stdout, out)
			return err
		},
	}
}

func trimNewline(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	return strings.TrimSuffix(s, "\n")
}
