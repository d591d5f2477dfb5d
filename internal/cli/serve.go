package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/fixture"
	"github.com/AbdelazizMoustafa10m/Waypoint/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local checklist backend",
	Long: `Serve an in-memory checklist over the same GraphQL operations the client
uses, plus a closing message endpoint at /fact. The checklist comes from a
YAML or TOML seed file, or a built-in three-phase plan.

Point the client at it with:

  waypoint --endpoint http://127.0.0.1:3000/ --message-endpoint http://127.0.0.1:3000/fact`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (env: WAYPOINT_SERVE_ADDR)")
	serveCmd.Flags().String("seed", "", "YAML or TOML seed file (env: WAYPOINT_SEED)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveValidConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.New("serve")

	seed := fixture.DefaultSeed()
	if cfg.Serve.Seed != "" {
		seed, err = fixture.LoadSeed(cfg.Serve.Seed)
		if err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ready := make(chan string, 1)
	go func() {
		select {
		case addr := <-ready:
			fmt.Fprintf(cmd.ErrOrStderr(), "Serving checklist on http://%s/ (fact: http://%s%s)\n", addr, addr, fixture.FactPath)
		case <-ctx.Done():
		}
	}()

	logger.Info("starting fixture backend", "addr", cfg.Serve.Addr, "phases", len(seed.Phases))
	return fixture.NewServer(seed).ListenAndServe(ctx, cfg.Serve.Addr, ready)
}
