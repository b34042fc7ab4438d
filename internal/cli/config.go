package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"clipforge/internal/config"
	"clipforge/internal/paths"
)

var configShowDefaults bool

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit project configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration in YAML",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
	show.Flags().BoolVar(&configShowDefaults, "defaults", false, "Print the built-in defaults instead of the project config")

	edit := &cobra.Command{
		Use:   "edit",
		Short: "Open the project configuration in $EDITOR and check it afterwards",
		Args:  cobra.NoArgs,
		RunE:  runConfigEdit,
	}

	cmd.AddCommand(show, edit)
	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if !configShowDefaults {
		pp, err := paths.Resolve(projectDir)
		if err != nil {
			return err
		}
		if cfg, err = config.Load(pp.ConfigFile); err != nil {
			return err
		}
	}
	cfg.ApplyDefaults()

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := out.Write(data); err != nil {
		return err
	}
	if !strings.HasSuffix(string(data), "\n") {
		fmt.Fprintln(out)
	}
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	if err := pp.EnsureRoot(); err != nil {
		return err
	}

	content, err := defaultConfigYAML()
	if err != nil {
		return err
	}
	if _, err := ensureProjectFile(pp.ConfigFile, content, slog.New(slog.DiscardHandler)); err != nil {
		return err
	}

	argv := editorCommand(os.Getenv("EDITOR"), pp.ConfigFile)
	editor := exec.CommandContext(cmd.Context(), argv[0], argv[1:]...)
	editor.Dir = pp.Root
	editor.Stdin = cmd.InOrStdin()
	editor.Stdout = cmd.OutOrStdout()
	editor.Stderr = cmd.ErrOrStderr()
	if err := editor.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}

	return reportEditedConfig(cmd, pp)
}

// reportEditedConfig reloads the config after an edit and prints any
// validation findings so mistakes surface before the next render.
func reportEditedConfig(cmd *cobra.Command, pp paths.ProjectPaths) error {
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return fmt.Errorf("config no longer parses: %w", err)
	}
	results := cfg.Validate(pp.Root)
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "config ok")
		return nil
	}
	var errs int
	for _, r := range results {
		if r.Level == config.LevelError {
			errs++
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", r.Level, r.Message)
	}
	if errs > 0 {
		return fmt.Errorf("config has %d error(s)", errs)
	}
	return nil
}

// editorCommand splits an $EDITOR value such as "code -w" and appends file.
// Shell quoting is not supported. An empty value falls back to vi.
func editorCommand(editor, file string) []string {
	argv := strings.Fields(editor)
	if len(argv) == 0 {
		argv = []string{"vi"}
	}
	return append(argv, file)
}
