// Package cli implements the musig command line tool.
package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/f3rmion/musig/group"
	"github.com/f3rmion/musig/internal/config"
	"github.com/f3rmion/musig/internal/logging"
)

// app carries the state shared by every subcommand.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRootCommand builds the musig command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:   "musig",
		Short: "MuSig multi-signature tool",
		Long: `musig creates and verifies MuSig aggregate Schnorr signatures.

Supported groups:
  - ristretto255
  - edwards25519
  - secp256k1
  - p256
  - bjj (Baby Jubjub)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is ./musig.yaml)")
	flags.String("curve", "", "group to use (bjj, edwards25519, p256, ristretto255, secp256k1)")
	flags.String("hasher", "", "hash oracle (sha256, sha3, blake2b)")
	flags.String("key-order", "", "key ordering before aggregation (sorted, given)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("curve", flags.Lookup("curve"))
	_ = a.v.BindPFlag("hasher", flags.Lookup("hasher"))
	_ = a.v.BindPFlag("key_order", flags.Lookup("key-order"))
	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))

	root.AddCommand(
		newKeygenCommand(a),
		newAggregateCommand(a),
		newSignCommand(a),
		newVerifyCommand(a),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

func (a *app) init() error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) group() (group.Group, error) {
	return a.cfg.Group()
}

func parseScalar(g group.Group, s string) (group.Scalar, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode scalar: %w", err)
	}
	return g.NewScalar().SetBytes(b)
}

func parsePoint(g group.Group, s string) (group.Point, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode point: %w", err)
	}
	return g.NewPoint().SetBytes(b)
}

func parsePoints(g group.Group, in []string) ([]group.Point, error) {
	out := make([]group.Point, len(in))
	for i, s := range in {
		p, err := parsePoint(g, s)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}
