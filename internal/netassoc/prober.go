package netassoc

import (
	"fmt"
	"net"
	"time"
)

// defaultProbeTimeout bounds one reachability probe.
const defaultProbeTimeout = 5 * time.Second

// DialFunc opens a connection; net.DialTimeout in production.
type DialFunc func(network, address string, timeout time.Duration) (net.Conn, error)

// Prober treats network association as reachability of a probe target.
//
// It suits nodes whose link is managed by the OS: there is nothing to
// join, but the connection manager still needs an answer to "is the
// network there". Associate and Up both make one TCP probe; Disassociate
// is a no-op because the link is not ours to tear down.
type Prober struct {
	target  string
	timeout time.Duration
	dial    DialFunc
}

// NewProber creates a Prober for a "host:port" target, normally the
// broker address.
func NewProber(target string) *Prober {
	return &Prober{
		target:  target,
		timeout: defaultProbeTimeout,
		dial:    net.DialTimeout,
	}
}

// Associate performs one reachability probe. identity and secret are
// ignored: the OS owns the link.
func (p *Prober) Associate(identity, secret string) error {
	return p.probe()
}

// Disassociate is a no-op; the OS-managed link stays up.
func (p *Prober) Disassociate() {}

// Up reports live reachability of the probe target.
func (p *Prober) Up() bool {
	return p.probe() == nil
}

func (p *Prober) probe() error {
	c, err := p.dial("tcp", p.target, p.timeout)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrProbeFailed, p.target, err)
	}
	_ = c.Close()
	return nil
}
