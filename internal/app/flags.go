package app

import (
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"otprelay/internal/crypto"
	"otprelay/internal/protocol/frame"
	"otprelay/internal/transport/rfcomm"
)

// BindFlags registers the shared persistent flags onto fs, writing into c.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Home, "home", "", "config dir (default ~/.otprelay)")
	fs.StringVar(&c.Transport, "transport", TransportRFCOMM, "stream transport: rfcomm or tcp")
	fs.StringVar(&c.Addr, "addr", "", "device address (rfcomm) or host:port (tcp)")
	fs.Uint8Var(&c.Channel, "channel", rfcomm.DefaultChannel, "rfcomm channel")
	fs.StringVar(&c.Service, "service", rfcomm.SerialPortService.String(), "service UUID")
	fs.IntVar(&c.KeyBits, "key-bits", crypto.DefaultKeyBits, "RSA modulus size for generated keys")
	fs.Uint32Var(&c.MaxPayload, "max-payload", frame.DefaultMaxPayload, "largest inbound frame payload in bytes")
	fs.StringVar(&c.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", "text", "log format: text or json")
	fs.DurationVar(&c.Timeout, "timeout", 0, "give up on an exchange after this long (0 waits forever)")
}

// PrepareHome fills in the default home directory and creates it.
func (c *Config) PrepareHome() error {
	if c.Home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		c.Home = filepath.Join(dir, ".otprelay")
	}
	return os.MkdirAll(c.Home, 0o700)
}
