package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/config"
)

var configJSON bool

// configCmd prints the resolved configuration with the source of each value.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long: `Display every configuration value and where it came from: a CLI flag, an
environment variable, waypoint.toml or the built-in default.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, _, err := loadAndResolveConfig(cmd)
		if err != nil {
			return err
		}
		if configJSON {
			return writePrettyJSON(cmd.OutOrStdout(), configJSONOutput(resolved))
		}
		printResolvedConfig(cmd.OutOrStdout(), resolved)
		return nil
	},
}

// configValidateCmd implements "waypoint config validate".
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and report issues",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, meta, err := loadAndResolveConfig(cmd)
		if err != nil {
			return err
		}
		result := config.Validate(resolved.Config, meta)
		printValidationResult(cmd.OutOrStdout(), result)
		if result.HasErrors() {
			return fmt.Errorf("configuration has %d error(s)", len(result.Errors()))
		}
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&configJSON, "json", false, "Output as JSON")
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

// configField is one printed line of the resolved configuration.
type configField struct {
	Key    string              `json:"key"`
	Value  any                 `json:"value"`
	Source config.ConfigSource `json:"source"`
}

// configFields flattens the configuration in section order.
func configFields(rc *config.ResolvedConfig) []configField {
	c := rc.Config
	f := func(key string, v any) configField {
		return configField{Key: key, Value: v, Source: rc.Sources[key]}
	}
	return []configField{
		f("backend.endpoint", c.Backend.Endpoint),
		f("backend.timeout", c.Backend.Timeout.String()),
		f("backend.user_agent", c.Backend.UserAgent),
		f("backend.verbose", c.Backend.Verbose),
		f("backend.max_body_log_size", c.Backend.MaxBodyLogSize),
		f("message.endpoint", c.Message.Endpoint),
		f("message.timeout", c.Message.Timeout.String()),
		f("progress.title", c.Progress.Title),
		f("progress.gating", c.Progress.Gating),
		f("progress.mount_check", c.Progress.MountCheck),
		f("progress.cascade_uncheck", c.Progress.CascadeUncheck),
		f("serve.addr", c.Serve.Addr),
		f("serve.seed", c.Serve.Seed),
		f("ui.log_file", c.UI.LogFile),
	}
}

func configJSONOutput(rc *config.ResolvedConfig) map[string]any {
	return map[string]any{
		"path":   rc.Path,
		"fields": configFields(rc),
	}
}

// sourceStyle colors a source label. --no-color strips it through the
// lipgloss color profile.
func sourceStyle(src config.ConfigSource) lipgloss.Style {
	switch src {
	case config.SourceFile:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	case config.SourceEnv:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	case config.SourceCLI:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	}
}

var (
	styleSection  = lipgloss.NewStyle().Bold(true)
	styleErrorLbl = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleWarnLbl  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleSuccess  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

const fieldWidth = 18

func printResolvedConfig(out io.Writer, rc *config.ResolvedConfig) {
	if rc.Path != "" {
		fmt.Fprintf(out, "Config file: %s\n", rc.Path)
	} else {
		fmt.Fprintln(out, "Config file: none found")
	}

	section := ""
	for _, field := range configFields(rc) {
		sec, name, _ := strings.Cut(field.Key, ".")
		if sec != section {
			section = sec
			fmt.Fprintln(out)
			fmt.Fprintln(out, styleSection.Render("["+sec+"]"))
		}
		src := sourceStyle(field.Source).Render(fmt.Sprintf("(source: %s)", field.Source))
		fmt.Fprintf(out, "  %-*s = %-44s %s\n", fieldWidth, name, formatValue(field.Value), src)
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case time.Duration:
		return fmt.Sprintf("%q", x.String())
	default:
		return fmt.Sprint(x)
	}
}

func printValidationResult(out io.Writer, result *config.ValidationResult) {
	errs := result.Errors()
	warns := result.Warnings()

	if len(errs) == 0 && len(warns) == 0 {
		fmt.Fprintln(out, styleSuccess.Render("No issues found."))
		return
	}
	if len(errs) > 0 {
		fmt.Fprintln(out, styleErrorLbl.Render("Errors:"))
		for _, issue := range errs {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
	}
	if len(warns) > 0 {
		fmt.Fprintln(out, styleWarnLbl.Render("Warnings:"))
		for _, issue := range warns {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
	}
	fmt.Fprintf(out, "%d error(s), %d warning(s)\n", len(errs), len(warns))
}
