package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"otprelay/internal/crypto"
)

// trust: remember the listener key fingerprint expected at --addr.
func trustCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trust <fingerprint>",
		Short: "Pin the listener key fingerprint for --addr",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fp, err := crypto.ParseFingerprint(args[0])
			if err != nil {
				return err
			}
			if err := wire.Trust.Trust(cfg.Addr, fp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Trusted %s for %q.\n", fp, cfg.Addr)
			return nil
		},
	}
}

func untrustCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "untrust",
		Short: "Forget the pinned fingerprint for --addr",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Trust.Forget(cfg.Addr); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Forgot %q.\n", cfg.Addr)
			return nil
		},
	}
}
