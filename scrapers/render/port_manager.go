package render

import (
	"context"
)

// PortManager is a fixed pool of ChromeDriver ports. Renders wait for a free
// port instead of starting a second driver on a busy one.
type PortManager struct {
	free chan int
}

func NewPortManager(basePort, size int) *PortManager {
	if size <= 0 {
		size = 1
	}
	pm := &PortManager{free: make(chan int, size)}
	for port := basePort; port < basePort+size; port++ {
		pm.free <- port
	}
	return pm
}

// Acquire blocks until a port is free or ctx ends.
func (pm *PortManager) Acquire(ctx context.Context) (int, error) {
	select {
	case port := <-pm.free:
		return port, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Release returns a port obtained from Acquire.
func (pm *PortManager) Release(port int) {
	pm.free <- port
}
