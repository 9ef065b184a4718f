package cli

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errInvalidSignature = errors.New("signature is not valid")

func newVerifyCommand(a *app) *cobra.Command {
	var (
		keys      []string
		signature string
		message   string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify an aggregate signature against its signers' keys",
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
			raw, err := hex.DecodeString(signature)
			if err != nil {
				return fmt.Errorf("decode signature: %w", err)
			}
			sig, err := m.ParseSignature(raw)
			if err != nil {
				return err
			}
			if !m.Verify(sig, points, []byte(message)) {
				return errInvalidSignature
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&keys, "key", nil, "hex public key (repeatable)")
	cmd.Flags().StringVar(&signature, "signature", "", "hex signature")
	cmd.Flags().StringVar(&message, "message", "", "signed message")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}
