// Command vcr inspects persisted cassette files.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/getvcr/vcr/cassette"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "vcr",
		Short:        "Inspect recorded HTTP cassettes",
		SilenceUsage: true,
	}
	root.AddCommand(newListCmd(), newShowCmd())
	return root
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <dir>",
		Short: "List the cassettes in a library directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := os.ReadDir(args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMODE\tMATCHER\tINTERACTIONS")
			for _, e := range entries {
				if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
					continue
				}
				c, err := cassette.Load(filepath.Join(args[0], e.Name()))
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: %v\n", e.Name(), err)
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
					c.Name(), c.Mode(), c.Matcher().Identity(), c.Len())
			}
			return w.Flush()
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print the interactions of a cassette file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cassette.Load(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "cassette %q  mode=%s  matcher=%s\n\n",
				c.Name(), c.Mode(), c.Matcher().Identity())
			for n, it := range c.Interactions() {
				fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s  %s %s -> %d (%d byte response)\n",
					n,
					it.RecordedAt.Format(time.RFC3339),
					it.Request.Method,
					it.Request.URL,
					it.Response.StatusCode,
					len(it.Response.Body))
			}
			return nil
		},
	}
}
