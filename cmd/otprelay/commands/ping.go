package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"otprelay/internal/services/exchange"
)

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping [message]",
		Short: "Send a test frame to the listener",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := "ping"
			if len(args) == 1 {
				payload = args[0]
			}

			ctx, cancel := exchangeContext(cmd)
			defer cancel()

			s, err := wire.Initiator().Connect(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := exchange.Ping(ctx, s, []byte(payload)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent test frame (%d bytes).\n", len(payload))
			return nil
		},
	}
}
