package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newSignCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sign <content>",
		Short: "Print the integrity token (h parameter) for content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			svc, err := newService(cfg, nil)
			if err != nil {
				return err
			}

			signer, ok := svc.Signer()
			if !ok {
				return errors.New("auth.method must be hmac, jwt or any to sign tokens")
			}
			token, err := signer.Sign(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
}
