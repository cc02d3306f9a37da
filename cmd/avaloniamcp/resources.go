package main

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

func newResourcesCmd(opts *rootOptions) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "resources",
		Short: "List the MCP resources and resource templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server := opts.newServer()
			if err := server.Initialize(cmd.Context()); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, r := range server.Resources() {
				kind := "resource"
				if r.Template {
					kind = "template"
				}
				fmt.Fprintf(w, "%s %s\n", uriStyle.Render(r.URI), labelStyle.Render("("+kind+")"))

				text := r.Name
				if r.Description != "" {
					text += ": " + r.Description
				}
				wrapped := wordwrap.String(text, max(width-4, 20))
				fmt.Fprintln(w, indent.String(strings.TrimRight(wrapped, "\n"), 4))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", defaultWrapWidth, "wrap descriptions to this many columns")
	return cmd
}
