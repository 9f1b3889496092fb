package rfcomm

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"

	"otprelay/internal/domain"
)

// SerialPortService is the Serial Port Profile service class UUID.
var SerialPortService = uuid.MustParse("00001101-0000-1000-8000-00805F9B34FB")

// DefaultChannel is the RFCOMM channel used when none is configured.
const DefaultChannel uint8 = 1

const maxChannel = 30

var (
	// ErrUnsupported is returned on systems without RFCOMM socket support.
	ErrUnsupported = errors.New("rfcomm: not supported on this platform")

	// ErrInvalidAddress is returned for a malformed device address.
	ErrInvalidAddress = errors.New("rfcomm: invalid device address")

	// ErrInvalidChannel is returned for a channel outside 1..30.
	ErrInvalidChannel = errors.New("rfcomm: invalid channel")

	// ErrInvalidService is returned for a service identifier that is not a UUID.
	ErrInvalidService = errors.New("rfcomm: invalid service id")
)

// Provider dials a remote device or listens on a local adapter.
type Provider struct {
	// Address is the remote device for Dial and the local adapter for
	// Listen, formatted "AA:BB:CC:DD:EE:FF". Empty binds any adapter.
	Address string
	Channel uint8
}

// New returns a provider for address and channel; channel 0 selects
// DefaultChannel.
func New(address string, channel uint8) *Provider {
	if channel == 0 {
		channel = DefaultChannel
	}
	return &Provider{Address: address, Channel: channel}
}

// Type reports domain.TransportBluetooth.
func (p *Provider) Type() domain.TransportType { return domain.TransportBluetooth }

func (p *Provider) validChannel() error {
	if p.Channel < 1 || p.Channel > maxChannel {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, p.Channel)
	}
	return nil
}

// Address is a Bluetooth device address in display order.
type Address [6]byte

// ParseAddress parses "AA:BB:CC:DD:EE:FF". The empty string is the
// wildcard address.
func ParseAddress(s string) (Address, error) {
	var a Address
	if s == "" {
		return a, nil
	}
	hw, err := net.ParseMAC(s)
	if err != nil || len(hw) != len(a) {
		return a, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	copy(a[:], hw)
	return a, nil
}

// IsAny reports whether a is the wildcard address.
func (a Address) IsAny() bool { return a == Address{} }

func (a Address) String() string {
	return strings.ToUpper(net.HardwareAddr(a[:]).String())
}

// reversed returns a in the little-endian order used by sockaddr_rc.
func (a Address) reversed() [6]uint8 {
	var r [6]uint8
	for i := range a {
		r[i] = a[len(a)-1-i]
	}
	return r
}

func fromSockaddr(b [6]uint8) Address {
	var a Address
	for i := range b {
		a[i] = b[len(b)-1-i]
	}
	return a
}

// ParseServiceID validates a service identifier. The empty string selects
// SerialPortService.
func ParseServiceID(s string) (uuid.UUID, error) {
	if s == "" {
		return SerialPortService, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidService, s)
	}
	return id, nil
}

// Addr is the endpoint of an RFCOMM stream.
type Addr struct {
	Device  Address
	Channel uint8
}

func (a Addr) Network() string { return "rfcomm" }

func (a Addr) String() string { return fmt.Sprintf("%s/%d", a.Device, a.Channel) }

var _ domain.Provider = (*Provider)(nil)
