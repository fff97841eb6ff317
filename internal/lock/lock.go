package lock

import (
	"fmt"
	"net"
)

// Acquire binds the well-known local coordination port. Holding the bind is
// the single-instance lock: a second bridge process against the same
// configuration fails here and must exit before doing any sync work. The
// returned listener stays open for the life of the process and doubles as
// the local status endpoint's listener.
func Acquire(port int) (net.Listener, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("another bridge instance appears to be running on port %d: %w", port, err)
	}
	return listener, nil
}
