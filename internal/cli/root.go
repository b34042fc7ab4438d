package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	projectDir string
	outputJSON bool
)

// Execute runs the root cobra command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "clipforge",
		Short:         "Compile guide-driven clip plans and render them with ffmpeg",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&projectDir, "project", "", "Path to project directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newToolsCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newLayoutCmd())
	cmd.AddCommand(newCompileCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newConcatCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newCleanCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}
