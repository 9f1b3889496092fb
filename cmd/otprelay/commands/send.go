package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"otprelay/internal/domain"
	"otprelay/internal/services/exchange"
)

// send: connect, wait for the listener's key, relay the OTP encrypted to it.
func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send [otp]",
		Short: "Relay an OTP to the listener",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src domain.OTPSource
			switch {
			case len(args) == 1:
				src = exchange.StaticOTP(args[0])
			case readStdin:
				src = exchange.ReaderOTP{R: cmd.InOrStdin()}
			default:
				return fmt.Errorf("otp required (argument or --stdin)")
			}

			expect, err := wire.ExpectedFingerprint(expectFingerprint)
			if err != nil {
				return err
			}

			ctx, cancel := exchangeContext(cmd)
			defer cancel()

			s, err := wire.Initiator().Connect(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := wire.Sender(expect).RelayFrom(ctx, s, src); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OTP relayed.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&readStdin, "stdin", false, "read the OTP from the first line of stdin")
	cmd.Flags().StringVar(&expectFingerprint, "expect-fingerprint", "", "refuse keys whose fingerprint differs (default: trusted fingerprint for --addr)")
	return cmd
}
