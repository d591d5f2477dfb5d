package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/config"
	"github.com/AbdelazizMoustafa10m/Waypoint/internal/gateway"
	"github.com/AbdelazizMoustafa10m/Waypoint/internal/logging"
	"github.com/AbdelazizMoustafa10m/Waypoint/internal/progress"
)

// addProgressFlags registers the flags that tune checklist behavior on
// commands that build a progress model.
func addProgressFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("gating", "", "Phase gating rule: previous or chain (env: WAYPOINT_GATING)")
	f.String("mount-check", "", "Closing message check at startup: before-load, after-load or off (env: WAYPOINT_MOUNT_CHECK)")
	f.Bool("cascade-uncheck", false, "Unchecking a task also unchecks later phases (env: WAYPOINT_CASCADE_UNCHECK)")
	f.String("message-endpoint", "", "Closing message URL (env: WAYPOINT_MESSAGE_ENDPOINT)")
}

// overridesFromFlags collects every explicitly set flag that maps onto a
// config key. Flags a command does not define are skipped.
func overridesFromFlags(fs *pflag.FlagSet) *config.CLIOverrides {
	o := &config.CLIOverrides{}
	str := func(name string) *string {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			return nil
		}
		v := f.Value.String()
		return &v
	}
	boolean := func(name string) *bool {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			return nil
		}
		v, err := fs.GetBool(name)
		if err != nil {
			return nil
		}
		return &v
	}

	o.Endpoint = str("endpoint")
	o.MessageEndpoint = str("message-endpoint")
	o.Gating = str("gating")
	o.MountCheck = str("mount-check")
	o.CascadeUncheck = boolean("cascade-uncheck")
	o.Verbose = boolean("verbose")
	o.ServeAddr = str("addr")
	o.Seed = str("seed")
	o.LogFile = str("log-file")
	return o
}

// loadAndResolveConfig loads waypoint.toml (from --config, $WAYPOINT_CONFIG
// or by walking up from the working directory), layers env and the command's flags on top and
// returns the result with the TOML metadata (nil when no file was found).
func loadAndResolveConfig(cmd *cobra.Command) (*config.ResolvedConfig, *toml.MetaData, error) {
	var (
		fileCfg *config.Config
		meta    *toml.MetaData
	)

	cfgPath, err := config.Locate(flagConfig, os.LookupEnv, ".")
	if err != nil {
		return nil, nil, fmt.Errorf("finding config file: %w", err)
	}
	if cfgPath != "" {
		fc, md, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return nil, nil, err
		}
		fileCfg = fc
		meta = &md
	}

	var overrides *config.CLIOverrides
	if cmd != nil {
		overrides = overridesFromFlags(cmd.Flags())
	}
	resolved := config.Resolve(config.NewDefaults(), fileCfg, os.LookupEnv, overrides)
	resolved.Path = cfgPath
	return resolved, meta, nil
}

// resolveValidConfig is loadAndResolveConfig followed by validation. Warnings
// are logged; errors fail the command.
func resolveValidConfig(cmd *cobra.Command) (*config.Config, error) {
	resolved, meta, err := loadAndResolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	result := config.Validate(resolved.Config, meta)
	logger := logging.New("config")
	for _, w := range result.Warnings() {
		logger.Warn(w.Message, "field", w.Field)
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return resolved.Config, nil
}

// gatewayConfig maps the resolved configuration onto the gateway client.
func gatewayConfig(cfg *config.Config) gateway.Config {
	return gateway.Config{
		Endpoint:        cfg.Backend.Endpoint,
		MessageEndpoint: cfg.Message.Endpoint,
		Timeout:         cfg.Backend.Timeout,
		MessageTimeout:  cfg.Message.Timeout,
		UserAgent:       cfg.Backend.UserAgent,
		Verbose:         cfg.Backend.Verbose,
		MaxBodyLogSize:  cfg.Backend.MaxBodyLogSize,
	}
}

// progressOptions maps the resolved configuration onto model options.
func progressOptions(cfg *config.Config) progress.Options {
	return progress.Options{
		Gating:         progress.GatingMode(cfg.Progress.Gating),
		MountCheck:     progress.MountCheck(cfg.Progress.MountCheck),
		CascadeUncheck: cfg.Progress.CascadeUncheck,
	}
}

// newGateway is swapped in tests.
var newGateway = func(cfg *config.Config) progress.Gateway {
	return gateway.New(gatewayConfig(cfg))
}

// buildModel returns a model wired to the configured backend.
func buildModel(cfg *config.Config) *progress.Model {
	return progress.NewModel(newGateway(cfg), progressOptions(cfg))
}
