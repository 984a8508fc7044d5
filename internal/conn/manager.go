package conn

import "sync"

// Manager owns the connection state machine for one node.
//
// It composes a NetworkAssociator and a BrokerSession and is the only
// component that transitions State. Publish-side code borrows the active
// session through ActiveSession and never closes it.
//
// Thread Safety:
//   - All methods serialise behind one mutex. The Manager is intended
//     for a single control loop; the mutex is the exclusive access point
//     a multi-goroutine caller would otherwise have to build itself.
type Manager struct {
	mu sync.Mutex

	cfg     Config
	network NetworkAssociator
	session BrokerSession

	// ownsSession records which construction path built this Manager.
	// New borrows the session, NewOwned owns it; only an owned session is
	// released by Close.
	ownsSession bool

	// active is set by a successful Begin and cleared only by End. Broker
	// errors after Begin leave it set so CheckConnection keeps driving
	// recovery instead of reporting StateNotStarted.
	active bool

	status    State
	brokerErr BrokerErrorCode

	clock  Clock
	logger Logger
}

// New creates a Manager that borrows a caller-supplied broker session.
// The caller remains responsible for releasing the session; the Manager
// will disconnect it on End but never Close it.
func New(cfg Config, network NetworkAssociator, session BrokerSession) *Manager {
	return &Manager{
		cfg:     cfg,
		network: network,
		session: session,
		clock:   realClock{},
	}
}

// NewOwned creates a Manager that exclusively owns the broker session.
// Close releases the session; no other party may use or close it.
func NewOwned(cfg Config, network NetworkAssociator, session BrokerSession) *Manager {
	m := New(cfg, network, session)
	m.ownsSession = true
	return m
}

// SetClock replaces the retry-backoff clock. Intended for tests and for
// ports that schedule continuations instead of blocking.
func (m *Manager) SetClock(clock Clock) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if clock != nil {
		m.clock = clock
	}
}

// SetLogger sets an optional logger for state-transition warnings.
func (m *Manager) SetLogger(logger Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// Begin establishes the network association and the broker session.
//
// Preconditions: the network identity and broker host must be non-empty,
// otherwise Begin returns StateConfigMissing without performing any I/O.
//
// The association runs in a bounded retry loop: each failed attempt
// increments a counter, and when RetryLimit is nonzero and the counter
// reaches it, Begin returns StateNetworkTimeout without touching the
// broker. Attempts are separated by a fixed 5 s backoff. RetryLimit 0
// retries until the association succeeds.
//
// On association success exactly one broker connect attempt is made. On
// broker failure the network association is torn down, the broker error
// code is cached, and Begin returns StateBrokerError. On success the
// session is marked active and Begin returns StateConnected.
func (m *Manager) Begin() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.Network.Name == "" || m.cfg.Broker.Host == "" {
		m.status = StateConfigMissing
		return m.status
	}

	if state := m.associate(); state != StateConnected {
		m.status = state
		return m.status
	}

	if state := m.connectBroker(); state != StateConnected {
		m.status = state
		return m.status
	}

	m.active = true
	m.status = StateConnected
	return m.status
}

// End gracefully closes the broker session and tears down the network
// association. Idempotent: a second End is a no-op. The state returns to
// StateNotStarted.
func (m *Manager) End() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active {
		return
	}
	m.session.Disconnect()
	m.network.Disassociate()
	m.active = false
	m.status = StateNotStarted
}

// Close ends the session and, when the Manager owns it, releases it.
// A Manager built with New leaves the session untouched beyond End.
func (m *Manager) Close() {
	m.End()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ownsSession {
		m.session.Close()
	}
}

// CheckConnection evaluates live connectivity and drives reconnection.
//
// If Begin never succeeded it returns StateNotStarted immediately, with
// no I/O. Otherwise the live status is read from both capabilities and
// fed through the reconnect table:
//
//	both up          -> StateConnected, no action
//	broker dead      -> one broker reconnect attempt
//	network down     -> bounded re-association, then one broker attempt
func (m *Manager) CheckConnection() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active {
		return StateNotStarted
	}

	m.status = m.reconnect(m.liveStatus())
	return m.status
}

// Poll drives the broker session's keepalive and incoming-message
// processing. No-op when the session is inactive. Must be called
// frequently by the control loop to avoid broker-side timeouts.
func (m *Manager) Poll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active {
		return
	}
	m.session.Poll()
}

// Status returns the state recorded by the last operation.
func (m *Manager) Status() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// BrokerError returns the last cached broker error code. It is retained
// until the next failed broker attempt overwrites it, independent of
// Status.
func (m *Manager) BrokerError() BrokerErrorCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.brokerErr
}

// ActiveSession returns the broker session and whether it may be used
// for publishing. Callers borrow the session; they must never close it.
func (m *Manager) ActiveSession() (BrokerSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, m.active
}

// SetNetwork updates the network identity and secret. Takes effect on
// the next connect attempt.
func (m *Manager) SetNetwork(name, secret string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Network.Name = name
	m.cfg.Network.Secret = secret
}

// SetBroker updates the broker address. Takes effect on the next connect
// attempt.
func (m *Manager) SetBroker(host string, port int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Broker.Host = host
	m.cfg.Broker.Port = port
}

// SetCredentials updates the broker credentials. Takes effect on the
// next connect attempt.
func (m *Manager) SetCredentials(username, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Auth.Username = username
	m.cfg.Auth.Password = password
}

// SetRetryLimit updates the association retry limit. Values outside
// [0, 100] are rejected; the prior limit is kept and false is returned.
func (m *Manager) SetRetryLimit(limit int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit < 0 || limit > maxRetryLimit {
		return false
	}
	m.cfg.RetryLimit = limit
	return true
}

// liveStatus queries both capabilities and classifies the result.
// Callers hold m.mu.
func (m *Manager) liveStatus() State {
	if !m.network.Up() {
		return StateNoNetwork
	}
	if !m.session.Alive() {
		return StateNoBroker
	}
	return StateConnected
}

// reconnect applies the state-machine transition table to a live status.
// Callers hold m.mu.
func (m *Manager) reconnect(status State) State {
	switch status {
	case StateConnected:
		return StateConnected

	case StateNoBroker:
		return m.connectBroker()

	case StateNoNetwork:
		if m.logger != nil {
			m.logger.Warn("network association lost, re-associating",
				"network", m.cfg.Network.Name,
			)
		}
		if state := m.associate(); state != StateConnected {
			return state
		}
		return m.connectBroker()

	default:
		return status
	}
}

// associate runs the bounded association retry loop. Returns
// StateConnected on success or StateNetworkTimeout on exhaustion.
// Callers hold m.mu.
func (m *Manager) associate() State {
	attempts := 0
	for {
		err := m.network.Associate(m.cfg.Network.Name, m.cfg.Network.Secret)
		if err == nil {
			return StateConnected
		}

		attempts++
		if m.cfg.RetryLimit > 0 && attempts >= m.cfg.RetryLimit {
			if m.logger != nil {
				m.logger.Warn("network association retries exhausted",
					"network", m.cfg.Network.Name,
					"attempts", attempts,
				)
			}
			return StateNetworkTimeout
		}
		m.clock.Sleep(retryBackoff)
	}
}

// connectBroker makes exactly one broker connect attempt. On failure the
// network association is torn down and the error code cached. Callers
// hold m.mu.
func (m *Manager) connectBroker() State {
	err := m.session.Connect(m.cfg.Broker.Host, m.cfg.Broker.Port, m.cfg.credentials())
	if err != nil {
		m.network.Disassociate()
		m.brokerErr = m.session.LastError()
		if m.logger != nil {
			m.logger.Warn("broker connect failed",
				"host", m.cfg.Broker.Host,
				"port", m.cfg.Broker.Port,
				"code", m.brokerErr.String(),
			)
		}
		return StateBrokerError
	}
	return StateConnected
}
