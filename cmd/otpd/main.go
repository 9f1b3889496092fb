package main

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"otprelay/internal/app"
	"otprelay/internal/services/exchange"
	"otprelay/internal/session"
)

var (
	cfg        app.Config
	passphrase string
	pinned     bool
	once       bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "otpd",
		Short:        "Listen for relayed one-time passwords",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.PrepareHome(); err != nil {
				return err
			}
			w, err := app.NewWire(cfg)
			if err != nil {
				return err
			}

			var key *rsa.PrivateKey
			if pinned {
				if passphrase == "" {
					return fmt.Errorf("passphrase required with --pinned (-p)")
				}
				if key, err = w.Identity.LoadIdentity(passphrase); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, w, key, cmd.OutOrStdout())
		},
	}
	cfg.BindFlags(cmd.Flags())
	cmd.Flags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting the pinned key")
	cmd.Flags().BoolVar(&pinned, "pinned", false, "announce the stored key instead of a fresh one per session")
	cmd.Flags().BoolVar(&once, "once", false, "exit after the first OTP")
	return cmd
}

func serve(ctx context.Context, w *app.Wire, key *rsa.PrivateKey, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := w.Entry().WithField("component", "otpd")
	l := w.Listener()
	defer l.Close()

	errc := make(chan error, 1)
	go func() { errc <- l.Serve(ctx) }()

	otps := make(chan string)
	for {
		select {
		case s, ok := <-l.Sessions():
			if !ok {
				err := <-errc
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			}
			go handle(ctx, w, key, s, otps, log.WithField("session", s.Name()))
		case otp := <-otps:
			fmt.Fprintln(out, otp)
			if once {
				return nil
			}
		}
	}
}

func handle(ctx context.Context, w *app.Wire, key *rsa.PrivateKey, s *session.Session, otps chan<- string, log *logrus.Entry) {
	if w.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Config.Timeout)
		defer cancel()
	}
	defer s.Close()

	otp, err := w.Receiver(key).Receive(ctx, s)
	switch {
	case err == nil:
		select {
		case otps <- otp:
		case <-ctx.Done():
		}
	case errors.Is(err, exchange.ErrConnectionLost), errors.Is(err, context.Canceled):
		log.WithError(err).Debug("exchange ended")
	default:
		log.WithError(err).Warn("exchange failed")
	}
}
