package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/GustavoCosta/typewriter/internal/scripts"
)

var scriptsTags []string

func init() {
	rootCmd.AddCommand(scriptsCmd)
	scriptsCmd.AddCommand(scriptsListCmd)
	scriptsCmd.AddCommand(scriptsShowCmd)

	scriptsListCmd.Flags().StringSliceVar(&scriptsTags, "tag", nil, "only list scripts with one of these tags")
}

var scriptsCmd = &cobra.Command{
	Use:     "scripts",
	Aliases: []string{"script"},
	Short:   "Inspect available scripts",
}

var scriptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scripts from the search paths and builtins",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := loadAvailableScripts()
		if err != nil {
			return err
		}
		items = filterScripts(items, scriptsTags)

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(cmd.OutOrStdout(), items)
		}

		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No scripts found.")
			return nil
		}

		rows := make([][]string, 0, len(items))
		for _, item := range items {
			rows = append(rows, []string{
				item.Name,
				strconv.Itoa(len(item.Steps)),
				formatYesNo(item.Loop != nil && *item.Loop),
				scriptSourceLabel(item),
				truncate(item.Description, 50),
			})
		}
		return writeTable(cmd.OutOrStdout(), []string{"NAME", "STEPS", "LOOP", "SOURCE", "DESCRIPTION"}, rows)
	},
}

var scriptsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a script's steps and variables",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := loadAvailableScripts()
		if err != nil {
			return err
		}
		script := findScriptByName(items, args[0])
		if script == nil {
			return fmt.Errorf("script %q not found", args[0])
		}

		if IsJSONOutput() || IsJSONLOutput() {
			return WriteOutput(cmd.OutOrStdout(), script)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# source: %s\n", scriptSourceLabel(script))
		data, err := yaml.Marshal(script)
		if err != nil {
			return fmt.Errorf("encode script: %w", err)
		}
		_, err = out.Write(data)
		return err
	},
}

func loadAvailableScripts() ([]*scripts.Script, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	return scripts.LoadScriptsFromSearchPaths(cwd, GetConfig().Scripts.Dirs...)
}

func scriptSourceLabel(script *scripts.Script) string {
	if script.Source == "" {
		return "-"
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" && strings.HasPrefix(script.Source, home) {
		return "~" + strings.TrimPrefix(script.Source, home)
	}
	return script.Source
}
