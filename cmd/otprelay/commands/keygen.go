package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func keygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate the pinned listener key and store it securely",
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				return fmt.Errorf("passphrase required (-p)")
			}
			_, fp, err := wire.Identity.GenerateIdentity(passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listener key created.\nFingerprint: %s\n", fp)
			return nil
		},
	}
}
