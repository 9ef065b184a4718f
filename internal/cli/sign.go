package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/f3rmion/musig/session"
)

func newSignCommand(a *app) *cobra.Command {
	var (
		secrets []string
		message string
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message with every given secret key",
		Long: `sign runs a full MuSig session in process, one participant per
secret key, and prints the aggregate key and the signature.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.cfg.MuSig()
			if err != nil {
				return err
			}
			participants := make([]session.Participant, len(secrets))
			for i, s := range secrets {
				sk, err := parseScalar(m.Group(), s)
				if err != nil {
					return fmt.Errorf("secret %d: %w", i, err)
				}
				p, err := session.NewLocalParticipant(m, sk, rand.Reader)
				if err != nil {
					return fmt.Errorf("secret %d: %w", i, err)
				}
				participants[i] = p
			}

			c := session.NewCoordinator(m, a.cfg.Session(), session.WithLogger(a.logger))
			res, err := c.Run(context.Background(), participants, []byte(message))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "key: %s\n", hex.EncodeToString(res.AggregateKey.Key.Bytes()))
			fmt.Fprintf(out, "signature: %s\n", hex.EncodeToString(res.Signature.Bytes()))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&secrets, "secret", nil, "hex secret key (repeatable)")
	cmd.Flags().StringVar(&message, "message", "", "message to sign")
	_ = cmd.MarkFlagRequired("secret")
	return cmd
}
