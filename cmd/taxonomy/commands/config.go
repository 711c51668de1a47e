package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/underthemoss/construction-taxonomy/config"
	"github.com/underthemoss/construction-taxonomy/display"
	"github.com/underthemoss/construction-taxonomy/errors"
)

// ConfigCmd groups the configuration subcommands
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage taxonomy configuration",
	Long: `Display and manage taxonomy configuration.

Configuration sources (later overrides earlier):
1. Built-in defaults
2. System config (/etc/taxonomy/config.toml)
3. User config (~/.taxonomy/config.toml)
4. Project config (taxonomy.toml, searched up from the working directory)
5. Environment variables (TAXONOMY_* prefix, plus OPENROUTER_API_KEY and GITHUB_TOKEN)

Examples:
  taxonomy config show                  # Show the effective configuration
  taxonomy config show --format yaml    # ... as YAML
  taxonomy config where                 # Show where each setting comes from
  taxonomy config init                  # Write taxonomy.toml with the defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  "Display the effective configuration from all sources. Secrets are masked.",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective configuration",
	RunE:  runConfigValidate,
}

var configWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where each setting is loaded from",
	RunE:  runConfigWhere,
}

var configInitCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a taxonomy.toml holding the defaults",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	configShowCmd.Flags().String("format", "toml", "Output format: toml, json, yaml")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configValidateCmd)
	ConfigCmd.AddCommand(configWhereCmd)
	ConfigCmd.AddCommand(configInitCmd)
}

// RenderConfig serializes cfg with its secrets masked. JSON and YAML use the
// same snake_case keys as the TOML file.
func RenderConfig(cfg *config.Config, format string) ([]byte, error) {
	data, err := toml.Marshal(cfg.Redacted())
	if err != nil {
		return nil, errors.Wrap(err, "encode config")
	}
	if format == "toml" {
		return data, nil
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	switch format {
	case "json":
		out, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "encode config")
		}
		return append(out, '\n'), nil
	case "yaml":
		return yaml.Marshal(tree)
	default:
		return nil, errors.WithHint(
			errors.NewInvalidf("unsupported format %q", format),
			"supported formats: toml, json, yaml",
		)
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if display.ShouldOutputJSON(cmd) {
		format = "json"
	}
	data, err := RenderConfig(cfg, format)
	if err != nil {
		return err
	}
	if format != "json" {
		fmt.Fprintln(cmd.OutOrStdout(), "# taxonomy configuration")
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	pterm.Success.Println("Configuration is valid")
	return nil
}

func runConfigWhere(cmd *cobra.Command, args []string) error {
	settings, err := config.Where()
	if err != nil {
		return err
	}
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(cmd.OutOrStdout(), settings)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(out, "  1. [DEFAULT]      Built-in defaults")
	fmt.Fprintf(out, "  2. [SYSTEM]       %s\n", config.SystemPath)
	fmt.Fprintf(out, "  3. [USER]         ~/%s/config.toml\n", config.UserDir)
	fmt.Fprintf(out, "  4. [PROJECT]      ./%s (searches up directories)\n", config.ProjectFile)
	fmt.Fprintf(out, "  5. [ENVIRONMENT]  %s_* environment variables\n", config.EnvPrefix)
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(settings))
	for _, s := range settings {
		origin := strings.ToUpper(string(s.Source))
		if s.SourcePath != "" {
			origin += " " + s.SourcePath
		}
		rows = append(rows, []string{s.Key, fmt.Sprint(s.Value), origin})
	}
	return display.Table(out, []string{"Key", "Value", "Source"}, rows)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	} else if wd, err := os.Getwd(); err == nil {
		dir = wd
	}
	path, err := config.Init(dir)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Wrote %s", path)
	return nil
}
