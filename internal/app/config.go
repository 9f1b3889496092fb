package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"otprelay/internal/crypto"
	"otprelay/internal/protocol/frame"
	"otprelay/internal/transport/rfcomm"
)

// Transport names accepted by Config.Transport.
const (
	TransportRFCOMM = "rfcomm"
	TransportTCP    = "tcp"
)

// DefaultTCPAddr is used when the tcp transport is selected without an address.
const DefaultTCPAddr = "127.0.0.1:8733"

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds runtime wiring options for building the app.
type Config struct {
	Home       string        // config directory, e.g. $HOME/.otprelay
	Transport  string        // "rfcomm" or "tcp"
	Addr       string        // device address (rfcomm) or host:port (tcp)
	Channel    uint8         // rfcomm channel
	Service    string        // service UUID advertised by the listener
	KeyBits    int           // RSA modulus size for generated keys
	MaxPayload uint32        // cap on inbound frame payloads
	LogLevel   string        // logrus level name
	LogFormat  string        // "text" or "json"
	Timeout    time.Duration // bound on a whole exchange; zero waits forever
}

// Validate normalises defaults and rejects unusable settings.
func (c *Config) Validate() error {
	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	switch c.Transport {
	case "", TransportRFCOMM:
		c.Transport = TransportRFCOMM
		if c.Channel == 0 {
			c.Channel = rfcomm.DefaultChannel
		}
		if _, err := rfcomm.ParseAddress(c.Addr); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	case TransportTCP:
		if c.Addr == "" {
			c.Addr = DefaultTCPAddr
		}
	default:
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, c.Transport)
	}

	id, err := rfcomm.ParseServiceID(c.Service)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c.Service = id.String()

	if c.KeyBits == 0 {
		c.KeyBits = crypto.DefaultKeyBits
	}
	if c.KeyBits < crypto.DefaultKeyBits {
		return fmt.Errorf("%w: key bits %d below %d", ErrInvalidConfig, c.KeyBits, crypto.DefaultKeyBits)
	}
	if c.MaxPayload == 0 {
		c.MaxPayload = frame.DefaultMaxPayload
	}
	if c.MaxPayload > frame.MaxEncodable {
		return fmt.Errorf("%w: max payload %d exceeds %d", ErrInvalidConfig, c.MaxPayload, uint32(frame.MaxEncodable))
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	return nil
}
