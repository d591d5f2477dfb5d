package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/buildinfo"
	"github.com/AbdelazizMoustafa10m/Waypoint/internal/logging"
	"github.com/AbdelazizMoustafa10m/Waypoint/internal/tui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive checklist",
	Long: `Open the full-screen checklist. Move with the arrow keys or j/k, toggle a
task with space, reload with r and press ? for help.

Log output is written to the [ui] log_file while the dashboard is open.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	addProgressFlags(dashboardCmd)
	addProgressFlags(rootCmd)
	dashboardCmd.Flags().String("log-file", "", "Write logs to this file while the dashboard runs (env: WAYPOINT_LOG_FILE)")
	rootCmd.AddCommand(dashboardCmd)
}

// runDashboard resolves configuration, builds the model and runs the TUI.
func runDashboard(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveValidConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Loggers copy the output writer when created, so redirect before
	// building anything that logs.
	restore, err := logging.Redirect(cfg.UI.LogFile)
	if err != nil {
		return err
	}
	defer func() {
		if err := restore(); err != nil {
			logging.New("dashboard").Warn("closing log file", "error", err)
		}
	}()

	model := buildModel(cfg)
	return tui.RunTUI(ctx, tui.AppConfig{
		Title:   cfg.Progress.Title,
		Version: buildinfo.GetInfo().Version,
	}, model)
}

// cmdContext returns the command's context or a background context when the
// command was invoked without one.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
