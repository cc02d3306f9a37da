package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var (
		style string
		width int
		raw   bool
	)

	cmd := &cobra.Command{
		Use:   "render <uri>",
		Short: "Render a resource such as avalonia://controls/button in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			server := opts.newServer()
			text, err := server.ReadResource(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if raw {
				_, err := fmt.Fprint(w, text)
				return err
			}

			renderer, err := glamour.NewTermRenderer(
				glamour.WithStandardStyle(glamourStyle(w, style)),
				glamour.WithWordWrap(width),
			)
			if err != nil {
				return fmt.Errorf("failed to create markdown renderer: %w", err)
			}

			out, err := renderer.Render(text)
			if err != nil {
				return fmt.Errorf("failed to render markdown: %w", err)
			}
			_, err = fmt.Fprint(w, out)
			return err
		},
	}

	cmd.Flags().StringVar(&style, "style", "auto", "glamour style: auto, dark, light, notty, ascii")
	cmd.Flags().IntVar(&width, "width", defaultWrapWidth, "wrap rendered output to this many columns")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the markdown without rendering it")
	return cmd
}
