package cli

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/f3rmion/musig/schnorr"
)

func newKeygenCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.group()
			if err != nil {
				return err
			}
			sk, pk, err := schnorr.GenerateKey(g, rand.Reader)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "secret: %s\n", hex.EncodeToString(sk.Bytes()))
			fmt.Fprintf(out, "public: %s\n", hex.EncodeToString(pk.Bytes()))
			return nil
		},
	}
}

func newAggregateCommand(a *app) *cobra.Command {
	var keys []string
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Compute the aggregate public key of a key list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.cfg.MuSig()
			if err != nil {
				return err
			}
			points, err := parsePoints(m.Group(), keys)
			if err != nil {
				return err
			}
			agg, err := m.AggregateKeys(points)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(agg.Key.Bytes()))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&keys, "key", nil, "hex public key (repeatable)")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
