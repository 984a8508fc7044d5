package conn

import (
	"errors"
	"testing"
	"time"
)

// =============================================================================
// Fakes
// =============================================================================

var errAssociate = errors.New("association failed")

// fakeNetwork is a scriptable NetworkAssociator.
type fakeNetwork struct {
	// failuresBeforeSuccess makes the first N Associate calls fail.
	// Set to -1 to fail forever.
	failuresBeforeSuccess int

	up                bool
	associateCalls    int
	disassociateCalls int
	lastIdentity      string
	lastSecret        string
}

func (f *fakeNetwork) Associate(identity, secret string) error {
	f.associateCalls++
	f.lastIdentity = identity
	f.lastSecret = secret
	if f.failuresBeforeSuccess < 0 || f.associateCalls <= f.failuresBeforeSuccess {
		return errAssociate
	}
	f.up = true
	return nil
}

func (f *fakeNetwork) Disassociate() {
	f.disassociateCalls++
	f.up = false
}

func (f *fakeNetwork) Up() bool { return f.up }

// fakeSession is a scriptable BrokerSession.
type fakeSession struct {
	// failConnect makes every Connect call fail with failCode.
	failConnect bool
	failCode    BrokerErrorCode

	alive           bool
	connectCalls    int
	disconnectCalls int
	closeCalls      int
	pollCalls       int
	writeCalls      int
	lastCreds       *Credentials
	lastErr         BrokerErrorCode
}

func (f *fakeSession) Connect(host string, port int, creds *Credentials) error {
	f.connectCalls++
	f.lastCreds = creds
	if f.failConnect {
		f.lastErr = f.failCode
		return errors.New("broker connect failed")
	}
	f.alive = true
	f.lastErr = BrokerErrNone
	return nil
}

func (f *fakeSession) Alive() bool { return f.alive }

func (f *fakeSession) BeginMessage(string, bool) error { return nil }

func (f *fakeSession) Write(p []byte) (int, error) {
	f.writeCalls++
	return len(p), nil
}

func (f *fakeSession) EndMessage() error { return nil }

func (f *fakeSession) Poll() { f.pollCalls++ }

func (f *fakeSession) Disconnect() {
	f.disconnectCalls++
	f.alive = false
}

func (f *fakeSession) Close() { f.closeCalls++ }

func (f *fakeSession) LastError() BrokerErrorCode { return f.lastErr }

// fakeClock records sleeps instead of blocking.
type fakeClock struct {
	sleeps []time.Duration
}

func (f *fakeClock) Sleep(d time.Duration) { f.sleeps = append(f.sleeps, d) }

func testConfig() Config {
	return Config{
		Network:    NetworkConfig{Name: "greenhouse", Secret: "hunter2"},
		Broker:     BrokerConfig{Host: "broker.local", Port: 1883},
		RetryLimit: 5,
	}
}

// newTestManager wires a Manager with fakes and a recording clock.
func newTestManager(cfg Config) (*Manager, *fakeNetwork, *fakeSession, *fakeClock) {
	network := &fakeNetwork{}
	session := &fakeSession{}
	clock := &fakeClock{}
	m := New(cfg, network, session)
	m.SetClock(clock)
	return m, network, session, clock
}

// =============================================================================
// Begin
// =============================================================================

func TestBegin(t *testing.T) {
	m, network, session, _ := newTestManager(testConfig())

	if state := m.Begin(); state != StateConnected {
		t.Fatalf("Begin() = %v, want %v", state, StateConnected)
	}
	if network.associateCalls != 1 {
		t.Errorf("associate calls = %d, want 1", network.associateCalls)
	}
	if session.connectCalls != 1 {
		t.Errorf("broker connect calls = %d, want 1", session.connectCalls)
	}
	if m.Status() != StateConnected {
		t.Errorf("Status() = %v, want %v", m.Status(), StateConnected)
	}
}

func TestBeginMissingHost(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Host = ""
	m, network, session, _ := newTestManager(cfg)

	if state := m.Begin(); state != StateConfigMissing {
		t.Fatalf("Begin() = %v, want %v", state, StateConfigMissing)
	}
	if network.associateCalls != 0 {
		t.Errorf("associate calls = %d, want 0 (no I/O on missing config)", network.associateCalls)
	}
	if session.connectCalls != 0 {
		t.Errorf("broker connect calls = %d, want 0 (no I/O on missing config)", session.connectCalls)
	}
}

func TestBeginMissingNetworkName(t *testing.T) {
	cfg := testConfig()
	cfg.Network.Name = ""
	m, network, _, _ := newTestManager(cfg)

	if state := m.Begin(); state != StateConfigMissing {
		t.Fatalf("Begin() = %v, want %v", state, StateConfigMissing)
	}
	if network.associateCalls != 0 {
		t.Errorf("associate calls = %d, want 0", network.associateCalls)
	}
}

func TestBeginRetryExhaustion(t *testing.T) {
	for _, limit := range []int{1, 2, 5, 100} {
		cfg := testConfig()
		cfg.RetryLimit = limit
		m, network, session, clock := newTestManager(cfg)
		network.failuresBeforeSuccess = -1 // never succeeds

		if state := m.Begin(); state != StateNetworkTimeout {
			t.Fatalf("limit %d: Begin() = %v, want %v", limit, state, StateNetworkTimeout)
		}
		if network.associateCalls != limit {
			t.Errorf("limit %d: associate calls = %d, want %d", limit, network.associateCalls, limit)
		}
		if len(clock.sleeps) != limit-1 {
			t.Errorf("limit %d: sleeps = %d, want %d", limit, len(clock.sleeps), limit-1)
		}
		for _, d := range clock.sleeps {
			if d != retryBackoff {
				t.Errorf("limit %d: sleep = %v, want %v", limit, d, retryBackoff)
			}
		}
		if session.connectCalls != 0 {
			t.Errorf("limit %d: broker connect calls = %d, want 0 after timeout", limit, session.connectCalls)
		}
	}
}

func TestBeginUnlimitedRetries(t *testing.T) {
	cfg := testConfig()
	cfg.RetryLimit = 0
	m, network, _, clock := newTestManager(cfg)
	network.failuresBeforeSuccess = 37

	if state := m.Begin(); state != StateConnected {
		t.Fatalf("Begin() = %v, want %v (limit 0 must not time out)", state, StateConnected)
	}
	if network.associateCalls != 38 {
		t.Errorf("associate calls = %d, want 38", network.associateCalls)
	}
	if len(clock.sleeps) != 37 {
		t.Errorf("sleeps = %d, want 37", len(clock.sleeps))
	}
}

func TestBeginBrokerFailure(t *testing.T) {
	m, network, session, _ := newTestManager(testConfig())
	session.failConnect = true
	session.failCode = BrokerErrBadCredentials

	if state := m.Begin(); state != StateBrokerError {
		t.Fatalf("Begin() = %v, want %v", state, StateBrokerError)
	}
	if network.disassociateCalls != 1 {
		t.Errorf("disassociate calls = %d, want 1 (network torn down on broker failure)", network.disassociateCalls)
	}
	if m.BrokerError() != BrokerErrBadCredentials {
		t.Errorf("BrokerError() = %v, want %v", m.BrokerError(), BrokerErrBadCredentials)
	}
}

func TestBeginAnonymousBroker(t *testing.T) {
	m, _, session, _ := newTestManager(testConfig())

	m.Begin()
	if session.lastCreds != nil {
		t.Errorf("Connect creds = %+v, want nil for anonymous broker", session.lastCreds)
	}
}

func TestBeginWithCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = Credentials{Username: "node", Password: "s3cret"}
	m, _, session, _ := newTestManager(cfg)

	m.Begin()
	if session.lastCreds == nil {
		t.Fatal("Connect creds = nil, want configured credentials")
	}
	if session.lastCreds.Username != "node" || session.lastCreds.Password != "s3cret" {
		t.Errorf("Connect creds = %+v, want node/s3cret", session.lastCreds)
	}
}

// =============================================================================
// CheckConnection
// =============================================================================

func TestCheckConnectionNotStarted(t *testing.T) {
	m, network, session, _ := newTestManager(testConfig())

	if state := m.CheckConnection(); state != StateNotStarted {
		t.Fatalf("CheckConnection() = %v, want %v", state, StateNotStarted)
	}
	if network.associateCalls != 0 || session.connectCalls != 0 {
		t.Error("CheckConnection before Begin must perform no I/O")
	}
}

func TestCheckConnectionHealthy(t *testing.T) {
	m, _, session, _ := newTestManager(testConfig())
	m.Begin()

	for i := 0; i < 5; i++ {
		if state := m.CheckConnection(); state != StateConnected {
			t.Fatalf("CheckConnection() #%d = %v, want %v", i+1, state, StateConnected)
		}
	}
	if session.connectCalls != 1 {
		t.Errorf("broker connect calls = %d, want 1 (no reconnects while healthy)", session.connectCalls)
	}
}

func TestCheckConnectionBrokerRecovers(t *testing.T) {
	m, _, session, _ := newTestManager(testConfig())
	m.Begin()

	session.alive = false // broker dropped
	if state := m.CheckConnection(); state != StateConnected {
		t.Fatalf("CheckConnection() = %v, want %v after single reconnect", state, StateConnected)
	}
	if session.connectCalls != 2 {
		t.Errorf("broker connect calls = %d, want 2", session.connectCalls)
	}
}

func TestCheckConnectionBrokerReconnectFails(t *testing.T) {
	m, network, session, _ := newTestManager(testConfig())
	m.Begin()

	session.alive = false
	session.failConnect = true
	session.failCode = BrokerErrServerUnavailable

	if state := m.CheckConnection(); state != StateBrokerError {
		t.Fatalf("CheckConnection() = %v, want %v", state, StateBrokerError)
	}
	if network.disassociateCalls != 1 {
		t.Errorf("disassociate calls = %d, want 1", network.disassociateCalls)
	}
	if m.BrokerError() != BrokerErrServerUnavailable {
		t.Errorf("BrokerError() = %v, want %v", m.BrokerError(), BrokerErrServerUnavailable)
	}
}

func TestCheckConnectionNetworkRecovers(t *testing.T) {
	m, network, session, _ := newTestManager(testConfig())
	m.Begin()

	network.up = false
	session.alive = false

	if state := m.CheckConnection(); state != StateConnected {
		t.Fatalf("CheckConnection() = %v, want %v", state, StateConnected)
	}
	if network.associateCalls != 2 {
		t.Errorf("associate calls = %d, want 2", network.associateCalls)
	}
	if session.connectCalls != 2 {
		t.Errorf("broker connect calls = %d, want 2", session.connectCalls)
	}
}

func TestCheckConnectionNetworkTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.RetryLimit = 3
	m, network, session, _ := newTestManager(cfg)
	m.Begin()

	network.up = false
	network.failuresBeforeSuccess = -1
	network.associateCalls = 0 // reset after Begin
	connectsAfterBegin := session.connectCalls

	if state := m.CheckConnection(); state != StateNetworkTimeout {
		t.Fatalf("CheckConnection() = %v, want %v", state, StateNetworkTimeout)
	}
	if network.associateCalls != 3 {
		t.Errorf("associate calls = %d, want 3", network.associateCalls)
	}
	if session.connectCalls != connectsAfterBegin {
		t.Error("broker connect attempted after association timeout")
	}
}

func TestCheckConnectionStatePersists(t *testing.T) {
	m, _, session, _ := newTestManager(testConfig())
	m.Begin()

	session.alive = false
	session.failConnect = true
	session.failCode = BrokerErrServerUnavailable
	m.CheckConnection()

	// A later check still drives recovery rather than reporting NotStarted.
	session.failConnect = false
	if state := m.CheckConnection(); state != StateConnected {
		t.Fatalf("CheckConnection() after broker error = %v, want %v", state, StateConnected)
	}
	// Cached code survives the recovery.
	if m.BrokerError() != BrokerErrServerUnavailable {
		t.Errorf("BrokerError() = %v, want %v retained", m.BrokerError(), BrokerErrServerUnavailable)
	}
}

// =============================================================================
// End / Close / Poll
// =============================================================================

func TestEnd(t *testing.T) {
	m, network, session, _ := newTestManager(testConfig())
	m.Begin()

	m.End()
	if session.disconnectCalls != 1 {
		t.Errorf("disconnect calls = %d, want 1", session.disconnectCalls)
	}
	if network.disassociateCalls != 1 {
		t.Errorf("disassociate calls = %d, want 1", network.disassociateCalls)
	}
	if m.Status() != StateNotStarted {
		t.Errorf("Status() = %v, want %v", m.Status(), StateNotStarted)
	}

	// Idempotent.
	m.End()
	if session.disconnectCalls != 1 || network.disassociateCalls != 1 {
		t.Error("second End() must be a no-op")
	}
}

func TestEndBeforeBegin(t *testing.T) {
	m, network, session, _ := newTestManager(testConfig())

	m.End()
	if session.disconnectCalls != 0 || network.disassociateCalls != 0 {
		t.Error("End() before Begin must perform no I/O")
	}
}

func TestCloseBorrowedSession(t *testing.T) {
	m, _, session, _ := newTestManager(testConfig())
	m.Begin()

	m.Close()
	if session.closeCalls != 0 {
		t.Errorf("session close calls = %d, want 0 for borrowed session", session.closeCalls)
	}
}

func TestCloseOwnedSession(t *testing.T) {
	network := &fakeNetwork{}
	session := &fakeSession{}
	m := NewOwned(testConfig(), network, session)
	m.SetClock(&fakeClock{})
	m.Begin()

	m.Close()
	if session.disconnectCalls != 1 {
		t.Errorf("disconnect calls = %d, want 1", session.disconnectCalls)
	}
	if session.closeCalls != 1 {
		t.Errorf("session close calls = %d, want 1 for owned session", session.closeCalls)
	}
}

func TestPoll(t *testing.T) {
	m, _, session, _ := newTestManager(testConfig())

	m.Poll()
	if session.pollCalls != 0 {
		t.Errorf("poll calls = %d, want 0 before Begin", session.pollCalls)
	}

	m.Begin()
	m.Poll()
	if session.pollCalls != 1 {
		t.Errorf("poll calls = %d, want 1", session.pollCalls)
	}
}

// =============================================================================
// Setters
// =============================================================================

func TestSetRetryLimit(t *testing.T) {
	m, _, _, _ := newTestManager(testConfig())

	if ok := m.SetRetryLimit(150); ok {
		t.Error("SetRetryLimit(150) = true, want false")
	}
	if m.cfg.RetryLimit != 5 {
		t.Errorf("retry limit = %d, want prior value 5 after rejected update", m.cfg.RetryLimit)
	}

	if ok := m.SetRetryLimit(50); !ok {
		t.Error("SetRetryLimit(50) = false, want true")
	}
	if m.cfg.RetryLimit != 50 {
		t.Errorf("retry limit = %d, want 50", m.cfg.RetryLimit)
	}

	if ok := m.SetRetryLimit(-1); ok {
		t.Error("SetRetryLimit(-1) = true, want false")
	}
	if ok := m.SetRetryLimit(0); !ok {
		t.Error("SetRetryLimit(0) = false, want true (unlimited)")
	}
}

func TestSettersTakeEffectOnNextAttempt(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Host = "" // force ConfigMissing first
	m, network, session, _ := newTestManager(cfg)

	if state := m.Begin(); state != StateConfigMissing {
		t.Fatalf("Begin() = %v, want %v", state, StateConfigMissing)
	}

	m.SetBroker("broker.local", 8883)
	m.SetNetwork("glasshouse", "secret2")
	m.SetCredentials("node", "pass")

	if state := m.Begin(); state != StateConnected {
		t.Fatalf("Begin() after setters = %v, want %v", state, StateConnected)
	}
	if network.lastIdentity != "glasshouse" || network.lastSecret != "secret2" {
		t.Errorf("associate identity/secret = %q/%q, want glasshouse/secret2",
			network.lastIdentity, network.lastSecret)
	}
	if session.lastCreds == nil || session.lastCreds.Username != "node" {
		t.Errorf("broker creds = %+v, want username node", session.lastCreds)
	}
}

// =============================================================================
// Status vocabulary
// =============================================================================

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateNotStarted:     "not_started",
		StateConnected:      "connected",
		StateNoNetwork:      "no_network",
		StateNoBroker:       "no_broker",
		StateConfigMissing:  "config_missing",
		StateNetworkTimeout: "network_timeout",
		StateBrokerError:    "broker_error",
		State(99):           "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}

func TestBrokerErrorCodeString(t *testing.T) {
	cases := map[BrokerErrorCode]string{
		BrokerErrRefused:            "connection_refused",
		BrokerErrTimeout:            "connection_timeout",
		BrokerErrNone:               "none",
		BrokerErrProtocolVersion:    "unacceptable_protocol_version",
		BrokerErrIdentifierRejected: "identifier_rejected",
		BrokerErrServerUnavailable:  "server_unavailable",
		BrokerErrBadCredentials:     "bad_credentials",
		BrokerErrNotAuthorized:      "not_authorized",
		BrokerErrorCode(42):         "unknown",
	}
	for code, want := range cases {
		if got := code.String(); got != want {
			t.Errorf("BrokerErrorCode(%d).String() = %q, want %q", code, got, want)
		}
	}
}
