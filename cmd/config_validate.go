package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/texdup/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect texdup configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate config files against the schema",
	Long: `Validate config files. Without arguments the global config and the
project config in use are checked; missing files are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return validateFiles(cmd.OutOrStdout(), args, true)
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		global, project := tierPaths()
		return validateFiles(cmd.OutOrStdout(), []string{global, project}, false)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
}

// validateFiles reports each file. Missing files are errors only when strict.
func validateFiles(out io.Writer, paths []string, strict bool) error {
	var errs []error
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) && !strict {
			_, _ = fmt.Fprintf(out, "%s: not found, skipped\n", p)
			continue
		}
		if err := config.ValidateFile(p); err != nil {
			errs = append(errs, err)
			_, _ = fmt.Fprintf(out, "%s: invalid\n", p)
			continue
		}
		_, _ = fmt.Fprintf(out, "%s: ok\n", p)
	}
	return errors.Join(errs...)
}
