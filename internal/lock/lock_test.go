package lock

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcquireIsExclusive(t *testing.T) {
	// Grab an ephemeral port first so the test never collides with a real
	// bridge on the well-known port.
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NoError(t, err)
	port := probe.Addr().(*net.TCPAddr).Port
	assert.NoError(t, probe.Close())

	first, err := Acquire(port)
	assert.NoError(t, err)

	// A second instance must fail while the first holds the bind
	_, err = Acquire(port)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "another bridge instance")

	// Releasing the listener releases the lock
	assert.NoError(t, first.Close())
	second, err := Acquire(port)
	assert.NoError(t, err)
	assert.NoError(t, second.Close())
}
