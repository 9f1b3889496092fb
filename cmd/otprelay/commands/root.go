package commands

import (
	"context"

	"github.com/spf13/cobra"

	"otprelay/internal/app"
)

var (
	cfg        app.Config
	passphrase string
	wire       *app.Wire

	expectFingerprint string
	readStdin         bool
)

func Execute() error {
	return rootCmd().Execute()
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "otprelay",
		Short:        "Relay one-time passwords to a paired desktop",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.PrepareHome(); err != nil {
				return err
			}
			w, err := app.NewWire(cfg)
			if err != nil {
				return err
			}
			wire = w
			return nil
		},
	}

	cfg.BindFlags(root.PersistentFlags())
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the pinned key")

	root.AddCommand(sendCmd(), pingCmd(), keygenCmd(), fingerprintCmd(), trustCmd(), untrustCmd())
	return root
}

// exchangeContext bounds a command by --timeout when set.
func exchangeContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	if cfg.Timeout > 0 {
		return context.WithTimeout(cmd.Context(), cfg.Timeout)
	}
	return context.WithCancel(cmd.Context())
}
