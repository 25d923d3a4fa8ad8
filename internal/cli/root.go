// Package cli implements mpcsim, a command line simulator running every party of a protocol
// in a single process, connected by an in-memory network.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pool"
	"github.com/taurusgroup/threshold-ecdsa/pkg/protocol"
)

const envPrefix = "MPCSIM"

// Flag names, also used as keys in the config file and, upper-cased with an MPCSIM_ prefix,
// as environment variables.
const (
	flagConfig    = "config"
	flagLogLevel  = "log-level"
	flagTimeout   = "timeout"
	flagSession   = "session"
	flagParties   = "parties"
	flagThreshold = "threshold"
	flagTarget    = "target"
	flagWorkers   = "workers"
)

type options struct {
	v        *viper.Viper
	log      zerolog.Logger
	registry *prometheus.Registry
	metrics  *protocol.Metrics
	pool     *pool.Pool
}

func newOptions() *options {
	registry := prometheus.NewRegistry()
	return &options{
		v:        viper.New(),
		log:      zerolog.Nop(),
		registry: registry,
		metrics:  protocol.NewMetrics(registry),
	}
}

// NewRootCommand returns the mpcsim command with all its subcommands.
func NewRootCommand() *cobra.Command {
	o := newOptions()
	cmd := &cobra.Command{
		Use:   "mpcsim",
		Short: "Simulate threshold ECDSA key generation, refresh and recovery",
		Long: `mpcsim runs every party of a protocol in a single process, connected by an
in-memory network, and prints a yaml summary of the outcome.

Commands:
  dkg:     distributed key generation
  refresh: key generation followed by a share refresh
  recover: key generation followed by the recovery of one share by two other parties`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			o.pool.TearDown()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(flagConfig, "", "config file (yaml)")
	flags.String(flagLogLevel, "warn", "log level (trace, debug, info, warn, error)")
	flags.Duration(flagTimeout, 30*time.Second, "maximum duration of each protocol run")
	flags.String(flagSession, "", "session identifier (random if empty)")
	flags.Int(flagParties, 3, "number of parties")
	flags.Int(flagThreshold, 2, "number of shares needed to reconstruct the key")
	flags.Int(flagWorkers, 0, "size of the verification worker pool (0 verifies sequentially)")

	cmd.AddCommand(newDKGCommand(o))
	cmd.AddCommand(newRefreshCommand(o))
	cmd.AddCommand(newRecoverCommand(o))
	return cmd
}

func (o *options) init(cmd *cobra.Command) error {
	o.v.SetEnvPrefix(envPrefix)
	o.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	o.v.AutomaticEnv()
	if err := o.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	if file := o.v.GetString(flagConfig); file != "" {
		o.v.SetConfigFile(file)
		if err := o.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level, err := zerolog.ParseLevel(o.v.GetString(flagLogLevel))
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	o.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()

	if workers := o.v.GetInt(flagWorkers); workers > 0 {
		o.pool = pool.NewPool(workers)
	}
	return nil
}

func (o *options) session() string {
	if s := o.v.GetString(flagSession); s != "" {
		return s
	}
	return uuid.New().String()
}
