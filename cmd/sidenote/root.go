package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sidenote.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sidenote",
		Short: "Render markdown with inline sidenotes into HTML",
		Long: `sidenote renders markdown containing inline sidenotes (^[text]) into HTML.

Every sidenote becomes a numbered reference in the text and an <aside>
block placed directly after the paragraph that holds the reference, so
sidenotes can be styled in the margin next to the text they annotate.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewRenderCmd())
	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewCacheCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
