package netassoc

import (
	"fmt"
	"os/exec"
	"strings"
)

// defaultNMCLIBinary is the NetworkManager CLI path resolved via PATH.
const defaultNMCLIBinary = "nmcli"

// CommandRunner executes one external command and returns its combined
// output. Tests substitute a recorder.
type CommandRunner func(name string, args ...string) ([]byte, error)

// NMCLI joins Wi-Fi networks by driving NetworkManager.
//
// Associate runs one `nmcli device wifi connect` invocation, mirroring
// the single firmware join attempt the connection manager expects from
// its association capability.
type NMCLI struct {
	binary string
	run    CommandRunner

	// lastIdentity is the network Associate last joined, used by
	// Disassociate to bring the right connection down.
	lastIdentity string
}

// NewNMCLI creates an associator using the system nmcli binary.
func NewNMCLI() *NMCLI {
	return &NMCLI{
		binary: defaultNMCLIBinary,
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).CombinedOutput()
		},
	}
}

// Associate makes one attempt to join the named network.
func (n *NMCLI) Associate(identity, secret string) error {
	args := []string{"device", "wifi", "connect", identity}
	if secret != "" {
		args = append(args, "password", secret)
	}

	out, err := n.run(n.binary, args...)
	if err != nil {
		return fmt.Errorf("%w: connect %q: %v: %s", ErrCommandFailed, identity, err, strings.TrimSpace(string(out)))
	}
	n.lastIdentity = identity
	return nil
}

// Disassociate brings down the connection last joined by Associate.
// No-op when nothing was joined.
func (n *NMCLI) Disassociate() {
	if n.lastIdentity == "" {
		return
	}
	// Best effort; the manager re-associates from scratch anyway.
	_, _ = n.run(n.binary, "connection", "down", "id", n.lastIdentity)
}

// Up reports NetworkManager's overall connectivity state.
func (n *NMCLI) Up() bool {
	out, err := n.run(n.binary, "-t", "-f", "STATE", "general")
	if err != nil {
		return false
	}
	state := strings.TrimSpace(string(out))
	return state == "connected" || strings.HasPrefix(state, "connected ")
}
