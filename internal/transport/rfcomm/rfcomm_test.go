package rfcomm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otprelay/internal/domain"
	"otprelay/internal/transport/rfcomm"
)

func TestParseAddress(t *testing.T) {
	a, err := rfcomm.ParseAddress("aa:bb:cc:dd:ee:ff")
	require.NoError(t, err)
	assert.Equal(t, rfcomm.Address{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}, a)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", a.String())
	assert.False(t, a.IsAny())

	wild, err := rfcomm.ParseAddress("")
	require.NoError(t, err)
	assert.True(t, wild.IsAny())

	for _, bad := range []string{"aa:bb", "zz:bb:cc:dd:ee:ff", "00:00:5e:00:53:00:00:01"} {
		_, err := rfcomm.ParseAddress(bad)
		assert.ErrorIs(t, err, rfcomm.ErrInvalidAddress, bad)
	}
}

func TestParseServiceID(t *testing.T) {
	id, err := rfcomm.ParseServiceID("")
	require.NoError(t, err)
	assert.Equal(t, rfcomm.SerialPortService, id)
	assert.Equal(t, "00001101-0000-1000-8000-00805f9b34fb", id.String())

	_, err = rfcomm.ParseServiceID("not-a-uuid")
	assert.ErrorIs(t, err, rfcomm.ErrInvalidService)
}

func TestNew(t *testing.T) {
	p := rfcomm.New("AA:BB:CC:DD:EE:FF", 0)
	assert.Equal(t, rfcomm.DefaultChannel, p.Channel)
	assert.Equal(t, domain.TransportBluetooth, p.Type())

	addr := rfcomm.Addr{Device: rfcomm.Address{1, 2, 3, 4, 5, 6}, Channel: 3}
	assert.Equal(t, "rfcomm", addr.Network())
	assert.Equal(t, "01:02:03:04:05:06/3", addr.String())
}
