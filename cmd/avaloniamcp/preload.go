package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"avaloniamcp/internal/cache"
	"avaloniamcp/internal/mcp"

	"github.com/spf13/cobra"
)

func newPreloadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preload",
		Short: "Warm the cache with the configured data files and print statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := opts.newServer()
			report := server.Preload(cmd.Context())
			printPreloadReport(cmd.OutOrStdout(), report, server.Cache())
			if !report.OK() {
				return fmt.Errorf("%d of %d files failed to preload",
					len(report.Failed), len(report.Failed)+len(report.Loaded))
			}
			return nil
		},
	}
}

func printPreloadReport(w io.Writer, report cache.PreloadReport, c *cache.Cache) {
	fmt.Fprintln(w, titleStyle.Render("Preload"))
	for _, path := range report.Loaded {
		fmt.Fprintf(w, "  %s %s\n", okStyle.Render("ok  "), filepath.Base(path))
	}

	failed := make([]string, 0, len(report.Failed))
	for path := range report.Failed {
		failed = append(failed, path)
	}
	sort.Strings(failed)
	for _, path := range failed {
		fmt.Fprintf(w, "  %s %s: %v\n", failStyle.Render("fail"), filepath.Base(path), report.Failed[path])
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Cache"))
	fmt.Fprint(w, labelStyle.Render(mcp.FormatStats(c.Stats(), c.MaxEntries())))
	fmt.Fprintln(w)
}
