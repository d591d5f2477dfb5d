package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/logging"
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose  bool
	flagQuiet    bool
	flagConfig   string
	flagNoColor  bool
	flagEndpoint string
)

// rootCmd is the base command for waypoint.
var rootCmd = &cobra.Command{
	Use:   "waypoint",
	Short: "Track a phased startup checklist",
	Long: `Waypoint tracks progress through an ordered checklist of phases and tasks
kept on a GraphQL backend. A phase unlocks once the phase before it is
complete, and finishing every task earns a closing message.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	// With no subcommand, launch the dashboard.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd, args)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("verbose") && os.Getenv("WAYPOINT_VERBOSE") != "" {
			flagVerbose = true
		}
		if !cmd.Flags().Changed("quiet") && os.Getenv("WAYPOINT_QUIET") != "" {
			flagQuiet = true
		}
		if !cmd.Flags().Changed("no-color") && (os.Getenv("NO_COLOR") != "" || os.Getenv("WAYPOINT_NO_COLOR") != "") {
			flagNoColor = true
		}

		logging.Setup(flagVerbose, flagQuiet, logging.JSONFromEnv(os.LookupEnv))

		if flagNoColor {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
		return nil
	},
}

func init() {
	registerPersistentFlags(rootCmd, true)
}

// registerPersistentFlags adds the global flags to cmd. bind ties them to the
// package-level variables; generator commands use unbound copies.
func registerPersistentFlags(cmd *cobra.Command, bind bool) {
	pf := cmd.PersistentFlags()
	if !bind {
		pf.BoolP("verbose", "v", false, "Enable verbose (debug) output (env: WAYPOINT_VERBOSE)")
		pf.BoolP("quiet", "q", false, "Suppress all output except errors (env: WAYPOINT_QUIET)")
		pf.String("config", "", "Path to waypoint.toml config file (env: WAYPOINT_CONFIG)")
		pf.Bool("no-color", false, "Disable colored output (env: WAYPOINT_NO_COLOR, NO_COLOR)")
		pf.String("endpoint", "", "GraphQL backend URL (env: WAYPOINT_ENDPOINT)")
		return
	}
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose (debug) output (env: WAYPOINT_VERBOSE)")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress all output except errors (env: WAYPOINT_QUIET)")
	pf.StringVar(&flagConfig, "config", "", "Path to waypoint.toml config file (env: WAYPOINT_CONFIG)")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable colored output (env: WAYPOINT_NO_COLOR, NO_COLOR)")
	pf.StringVar(&flagEndpoint, "endpoint", "", "GraphQL backend URL (env: WAYPOINT_ENDPOINT)")
}

// Execute runs the root command and returns the exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewRootCmd returns a fresh command carrying the same flags and subcommands
// as the global tree, for completion and doc generators.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               rootCmd.Use,
		Short:             rootCmd.Short,
		Long:              rootCmd.Long,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rootCmd.PersistentPreRunE,
	}
	registerPersistentFlags(cmd, false)
	for _, child := range rootCmd.Commands() {
		cmd.AddCommand(child)
	}
	return cmd
}
