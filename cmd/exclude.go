package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/texdup/internal/config"
)

var excludeGlobal bool

var excludeCmd = &cobra.Command{
	Use:   "exclude",
	Short: "Manage words that are never reported",
	Long: `Manage the exclusion list. The project list (.texdup/config.yaml, or the
--config file) is added to the global list (~/.config/texdup/config.yaml).
Until the global file has an exclusions key, a built-in list of function
words is used in its place.`,
}

var excludeAddCmd = &cobra.Command{
	Use:   "add words...",
	Short: "Add words to the exclusion list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return excludeAdd(cmd.OutOrStdout(), exclusionFile(), args)
	},
}

var excludeRemoveCmd = &cobra.Command{
	Use:   "remove words...",
	Short: "Remove words from the exclusion list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return excludeRemove(cmd.OutOrStdout(), exclusionFile(), args)
	},
}

var excludeListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the effective exclusion list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		global, project := tierPaths()
		return excludeList(cmd.OutOrStdout(), global, project)
	},
}

func init() {
	rootCmd.AddCommand(excludeCmd)
	excludeCmd.AddCommand(excludeAddCmd, excludeRemoveCmd, excludeListCmd)
	excludeCmd.PersistentFlags().BoolVarP(&excludeGlobal, "global", "g", false,
		"edit the global list instead of the project list")
}

func exclusionFile() string {
	global, project := tierPaths()
	if excludeGlobal {
		return global
	}
	return project
}

func excludeAdd(out io.Writer, path string, words []string) error {
	added, err := config.AddExclusions(path, words...)
	if err != nil {
		return fmt.Errorf("adding exclusions: %w", err)
	}
	if len(added) == 0 {
		_, err = fmt.Fprintf(out, "nothing to add to %s\n", path)
		return err
	}
	_, err = fmt.Fprintf(out, "added %s to %s\n", strings.Join(added, ", "), path)
	return err
}

func excludeRemove(out io.Writer, path string, words []string) error {
	removed, err := config.RemoveExclusions(path, words...)
	if err != nil {
		return fmt.Errorf("removing exclusions: %w", err)
	}
	if len(removed) == 0 {
		_, err = fmt.Fprintf(out, "none of the words are in %s\n", path)
		return err
	}
	_, err = fmt.Fprintf(out, "removed %s from %s\n", strings.Join(removed, ", "), path)
	return err
}

func excludeList(out io.Writer, global, project string) error {
	for _, w := range config.LoadVocabulary(global, project).Words() {
		if _, err := fmt.Fprintln(out, w); err != nil {
			return err
		}
	}
	return nil
}
