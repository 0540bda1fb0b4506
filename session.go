package irc

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nyx-irc/irc/irctransport"
)

// SessionState is the engine's connection lifecycle. Only the engine
// mutates it.
type SessionState int

const (
	Disconnected SessionState = iota
	Connecting
	Connected
	Registering
	Registered
)

func (s SessionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Registering:
		return "registering"
	case Registered:
		return "registered"
	default:
		return "unknown"
	}
}

// SASLMechanism selects which SASL mechanism a session authenticates with.
// SCRAM and other mechanisms are explicitly out of scope.
type SASLMechanism int

const (
	SASLPlain SASLMechanism = iota
	SASLExternal
)

// SASLConfig holds SASL credentials for a session. Only PLAIN and EXTERNAL
// are supported.
type SASLConfig struct {
	Mechanism SASLMechanism
	User      string
	Pass      string
}

// RateLimitConfig bounds how fast the writer drains the outbound queue.
type RateLimitConfig struct {
	MessagesPerWindow int
	Window            time.Duration
}

// SessionConfig configures a Client and is immutable once Connect is
// called. Unset fields take documented defaults in setDefaults.
//
// TLS is opted out of with NoTLS rather than opted into with an UseTLS
// flag, so that the zero value of SessionConfig matches the spec's
// TLS-on-by-default without needing separate default-tracking machinery.
type SessionConfig struct {
	Server   string
	Port     int
	NoTLS    bool
	Nick     string
	Username string
	Realname string
	Password string

	SASL          *SASLConfig
	RequestedCaps []string

	PingTimeout time.Duration
	RateLimit   RateLimitConfig

	// Logger receives internal diagnostic events. The zero value is
	// zerolog's disabled logger, so logging is opt-in.
	Logger zerolog.Logger

	// Transport overrides the default TLS/TCP transport, primarily for
	// tests. Nil selects irctransport.NewTCP built from Server/Port/NoTLS.
	Transport irctransport.Transport
}

func (c *SessionConfig) setDefaults() {
	if c.Port == 0 {
		c.Port = 6697
	}
	if c.Username == "" {
		c.Username = c.Nick
	}
	if c.Realname == "" {
		c.Realname = c.Nick
	}
	if c.PingTimeout == 0 {
		c.PingTimeout = 120 * time.Second
	}
	if c.RateLimit.MessagesPerWindow == 0 {
		c.RateLimit.MessagesPerWindow = 5
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = 2 * time.Second
	}
}

// capNegotiationState tracks IRCv3 CAP LS/REQ/ACK progress for one
// connection.
type capNegotiationState struct {
	available  map[string]bool
	enabled    map[string]bool
	lsComplete bool
	saslOK     bool
}

func newCapState() capNegotiationState {
	return capNegotiationState{available: map[string]bool{}, enabled: map[string]bool{}}
}

// outboundQueue is the engine's ordered queue of not-yet-written lines,
// drained by the writer activity. It has no explicit bound; callers are
// expected to be shaped by the rate limiter, per the concurrency model.
type outboundQueue struct {
	mu    sync.Mutex
	items []Command
}

func (q *outboundQueue) push(c Command) {
	q.mu.Lock()
	q.items = append(q.items, c)
	q.mu.Unlock()
}

func (q *outboundQueue) pop() (Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	c := q.items[0]
	q.items = q.items[1:]
	return c, true
}

// Client is the session engine: the sole mutator of connection state, and
// the single owner of the reader, writer, and keepalive activities.
type Client struct {
	cfg SessionConfig
	log zerolog.Logger

	mu               sync.Mutex
	state            SessionState
	transport        irctransport.Transport
	outbound         *outboundQueue
	capState         capNegotiationState
	saslActive       bool
	saslStarted      bool
	nickUserSent     bool
	currentNick      string
	lastPongReceived time.Time
	aggregators      map[AggKey]aggregator
	registeredCh     chan struct{}
	cancelCh         chan struct{}
	cancelRun        context.CancelFunc

	events      chan Event
	rateLimiter *rateLimiter
}

// NewClient builds a Client. Connect must be called before any command can
// be sent.
func NewClient(cfg SessionConfig) *Client {
	cfg.setDefaults()
	eventsPerSecond := float64(cfg.RateLimit.MessagesPerWindow) / cfg.RateLimit.Window.Seconds()
	return &Client{
		cfg:         cfg,
		log:         cfg.Logger,
		state:       Disconnected,
		currentNick: cfg.Nick,
		aggregators: map[AggKey]aggregator{},
		events:      make(chan Event, 64),
		rateLimiter: newRateLimiter(eventsPerSecond, cfg.RateLimit.MessagesPerWindow),
	}
}

// Events returns the channel every Event is delivered on. The channel is
// bounded; a slow consumer blocks the reader activity rather than losing
// events, per the documented backpressure policy.
func (c *Client) Events() <-chan Event {
	return c.events
}

// State returns the engine's current SessionState.
func (c *Client) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentNick returns the nickname the engine currently believes it holds.
func (c *Client) CurrentNick() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentNick
}

func (c *Client) emit(e Event) {
	c.events <- e
}

func (c *Client) enqueue(cmd Command) {
	c.mu.Lock()
	q := c.outbound
	c.mu.Unlock()
	if q == nil {
		return
	}
	q.push(cmd)
}

// Connect opens the transport and starts the reader, writer, and keepalive
// activities. It returns once the transport is open; it does not wait for
// registration -- use AwaitRegistered for that.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Disconnected {
		c.mu.Unlock()
		return errors.New("irc: Connect called while already connected")
	}
	c.state = Connecting
	c.registeredCh = make(chan struct{})
	c.cancelCh = make(chan struct{})
	c.capState = newCapState()
	c.nickUserSent = false
	c.saslActive = false
	c.saslStarted = false
	c.currentNick = c.cfg.Nick
	c.outbound = &outboundQueue{}
	c.mu.Unlock()

	transport := c.cfg.Transport
	if transport == nil {
		transport = irctransport.NewTCP(irctransport.TLSConfig{
			Host:   c.cfg.Server,
			Port:   c.cfg.Port,
			UseTLS: !c.cfg.NoTLS,
		})
	}
	if err := transport.Open(ctx); err != nil {
		c.mu.Lock()
		c.state = Disconnected
		c.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrTransportOpen, err)
	}

	c.mu.Lock()
	c.transport = transport
	c.state = Connected
	c.mu.Unlock()
	c.emit(ConnectedEvent{})

	c.doHandshake()

	c.mu.Lock()
	c.state = Registering
	c.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancelRun = cancel
	c.mu.Unlock()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return c.runReader(gctx) })
	g.Go(func() error { return c.runWriter(gctx) })
	g.Go(func() error { return c.runKeepalive(gctx) })
	g.Go(func() error { return c.runAggregatorSweep(gctx) })

	go func() {
		err := g.Wait()
		cancel()
		c.cleanup(err)
	}()

	return nil
}

// doHandshake implements the connect-time handshake from §4.5: CAP LS,
// PASS, then either an immediate NICK/USER or a delayed one gated on SASL.
func (c *Client) doHandshake() {
	if len(c.cfg.RequestedCaps) > 0 {
		c.enqueue(Cap{Subcommand: "LS", Args: []string{"302"}})
	}
	if c.cfg.Password != "" {
		c.enqueue(Pass{Password: c.cfg.Password})
	}

	saslActive := c.cfg.SASL != nil && containsFold(c.cfg.RequestedCaps, "sasl")
	c.mu.Lock()
	c.saslActive = saslActive
	c.mu.Unlock()

	if !saslActive {
		c.flushNickUser()
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// flushNickUser enqueues NICK/USER exactly once, whether they were sent
// immediately (no SASL) or delayed until CAP/SASL resolved.
func (c *Client) flushNickUser() {
	c.mu.Lock()
	if c.nickUserSent {
		c.mu.Unlock()
		return
	}
	c.nickUserSent = true
	nick := c.currentNick
	c.mu.Unlock()

	c.enqueue(Nick{Nickname: nick})
	c.enqueue(User{User: c.cfg.Username, RealName: c.cfg.Realname})
}

// finishCapNegotiation enqueues the delayed NICK/USER (if not already
// sent) followed by CAP END, per every path in §4.5 that concludes
// negotiation: LS with nothing requested, ACK with no SASL to run, NAK,
// SASL success, and SASL failure.
func (c *Client) finishCapNegotiation() {
	c.flushNickUser()
	c.enqueue(Cap{Subcommand: "END"})
}

// AwaitRegistered blocks until the engine reaches Registered, the
// connection is disconnected (returning ErrDisconnected), or ctx is
// cancelled.
func (c *Client) AwaitRegistered(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Disconnected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	registeredCh := c.registeredCh
	cancelCh := c.cancelCh
	c.mu.Unlock()

	select {
	case <-registeredCh:
		return nil
	case <-cancelCh:
		return ErrDisconnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Disconnect requests the engine shut down. If registration was in
// progress or complete, a best-effort QUIT is enqueued first. Disconnect
// is idempotent.
func (c *Client) Disconnect(reason string) {
	c.mu.Lock()
	state := c.state
	cancel := c.cancelRun
	c.mu.Unlock()

	if state == Disconnected || state == Connecting {
		return
	}
	if state == Registering || state == Registered {
		c.enqueue(Quit{Reason: reason})
		time.Sleep(20 * time.Millisecond) // best-effort: give the writer a chance to flush QUIT
	}
	if cancel != nil {
		cancel()
	}
}

// Send enqueues cmd once the session has registered. Handshake primitives
// (PASS/NICK/USER/CAP/AUTHENTICATE) bypass this gate internally.
func (c *Client) Send(ctx context.Context, cmd Command) error {
	if err := c.AwaitRegistered(ctx); err != nil {
		return err
	}
	c.enqueue(cmd)
	return nil
}

// SendRaw enqueues line verbatim once the session has registered.
func (c *Client) SendRaw(ctx context.Context, line string) error {
	if err := c.AwaitRegistered(ctx); err != nil {
		return err
	}
	c.enqueue(Raw{Line: line})
	return nil
}

func (c *Client) runReader(ctx context.Context) error {
	for {
		line, err := c.transport.ReadLine(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, irctransport.ErrClosed) {
				return err
			}
			c.emit(ErrorEvent{Text: err.Error()})
			return fmt.Errorf("%w: %v", ErrTransportRead, err)
		}
		c.handleMessage(Parse(line))
	}
}

func (c *Client) runWriter(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c.mu.Lock()
		q := c.outbound
		c.mu.Unlock()

		cmd, ok := q.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(10 * time.Millisecond):
			}
			continue
		}

		if err := c.rateLimiter.Acquire(ctx); err != nil {
			return err
		}

		line := Serialize(cmd)
		if err := c.transport.WriteLine(ctx, line); err != nil {
			c.emit(ErrorEvent{Text: err.Error()})
			return fmt.Errorf("%w: %v", ErrTransportWrite, err)
		}
		c.log.Debug().Str("line", line).Msg("sent")
	}
}

func (c *Client) runKeepalive(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.PingTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.mu.Lock()
			state := c.state
			lastPong := c.lastPongReceived
			c.mu.Unlock()

			if state != Registered {
				continue
			}
			if !lastPong.IsZero() && time.Since(lastPong) > c.cfg.PingTimeout {
				c.emit(ErrorEvent{Text: ErrPingTimeout.Error()})
				return ErrPingTimeout
			}
			c.enqueue(Ping{Token: strconv.FormatInt(time.Now().UnixNano(), 10)})
		}
	}
}

// runAggregatorSweep periodically fails any aggregator whose deadline has
// elapsed without a terminator numeric arriving, so a Whois/Names/Who/List/
// Motd call against an unresponsive server resolves with ErrTimeout instead
// of hanging until the caller's own context expires.
func (c *Client) runAggregatorSweep(ctx context.Context) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			c.mu.Lock()
			var expired []AggKey
			for k, agg := range c.aggregators {
				if now.After(agg.deadline()) {
					expired = append(expired, k)
				}
			}
			for _, k := range expired {
				c.aggregators[k].complete(ErrTimeout)
				delete(c.aggregators, k)
			}
			c.mu.Unlock()
		}
	}
}

// handleMessage implements the runtime dispatch order from §4.5/§5: CAP/
// SASL/registration handling, then aggregator routing, then the specific
// domain event (if any), then the raw message event.
func (c *Client) handleMessage(m Message) {
	c.handleProtocol(m)
	c.routeAggregators(m)
	if ev := c.specificEvent(m); ev != nil {
		c.emit(ev)
	}
	c.emit(MessageEvent{Message: m})
}

func (c *Client) handleProtocol(m Message) {
	switch strings.ToUpper(m.Command) {
	case "PING":
		c.enqueue(Pong{Token: m.Text()})
	case "PONG":
		c.mu.Lock()
		c.lastPongReceived = time.Now()
		c.mu.Unlock()
	case "CAP":
		c.handleCap(m)
	case "AUTHENTICATE":
		c.handleAuthenticate(m)
	default:
		if code, ok := m.NumericCode(); ok {
			c.handleNumeric(code, m)
		}
	}
}

// handleCap implements the CAP state machine from §4.5, including the
// LS continuation marker resolved in the design notes: a third parameter
// of "*" means more LS lines follow.
func (c *Client) handleCap(m Message) {
	sub := strings.ToUpper(m.Params.Get(2))
	switch sub {
	case "LS":
		continuation := m.Params.Get(3) == "*" && len(m.Params) >= 4
		capsStr := m.Params.Get(3)
		if continuation {
			capsStr = m.Params.Get(4)
		}
		c.mu.Lock()
		for _, name := range strings.Fields(capsStr) {
			name = strings.SplitN(name, "=", 2)[0]
			c.capState.available[name] = true
		}
		c.mu.Unlock()
		if continuation {
			return
		}

		c.mu.Lock()
		c.capState.lsComplete = true
		var req []string
		for _, name := range c.cfg.RequestedCaps {
			if c.capState.available[name] {
				req = append(req, name)
			}
		}
		c.mu.Unlock()

		if len(req) > 0 {
			c.enqueue(Cap{Subcommand: "REQ", Args: []string{strings.Join(req, " ")}})
		} else {
			c.finishCapNegotiation()
		}
	case "ACK":
		c.mu.Lock()
		for _, name := range strings.Fields(m.Params.Get(3)) {
			c.capState.enabled[name] = true
		}
		startSASL := c.capState.enabled["sasl"] && c.cfg.SASL != nil && !c.capState.saslOK && !c.saslStarted
		if startSASL {
			c.saslStarted = true
		}
		c.mu.Unlock()

		if startSASL {
			switch c.cfg.SASL.Mechanism {
			case SASLPlain:
				c.enqueue(Authenticate{Payload: "PLAIN"})
			case SASLExternal:
				c.enqueue(Authenticate{Payload: "EXTERNAL"})
				c.enqueue(Authenticate{Payload: "+"})
			}
		} else {
			c.finishCapNegotiation()
		}
	case "NAK":
		c.mu.Lock()
		c.capState.lsComplete = true
		c.mu.Unlock()
		c.finishCapNegotiation()
	}
}

// handleAuthenticate implements the SASL PLAIN credential step: the
// server's "AUTHENTICATE +" is the cue to send the base64-encoded
// NUL-joined credential blob.
func (c *Client) handleAuthenticate(m Message) {
	if m.Params.Get(1) != "+" {
		return
	}
	if c.cfg.SASL == nil || c.cfg.SASL.Mechanism != SASLPlain {
		return
	}
	blob := "\x00" + c.cfg.SASL.User + "\x00" + c.cfg.SASL.Pass
	c.enqueue(Authenticate{Payload: base64.StdEncoding.EncodeToString([]byte(blob))})
}

func (c *Client) handleNumeric(code int, m Message) {
	switch code {
	case RPL_SASLSUCCESS:
		c.mu.Lock()
		c.capState.saslOK = true
		c.mu.Unlock()
		c.finishCapNegotiation()
	case ERR_SASLFAIL, ERR_SASLTOOLONG, ERR_SASLABORTED:
		c.emit(ErrorEvent{Text: fmt.Sprintf("%s: %s", ErrSASLFailed, m.Raw)})
		c.finishCapNegotiation()
	case ERR_NICKNAMEINUSE:
		c.mu.Lock()
		registering := c.state == Registering
		if registering {
			c.currentNick += "_"
		}
		nick := c.currentNick
		c.mu.Unlock()
		if registering {
			c.enqueue(Nick{Nickname: nick})
		}
	case RPL_WELCOME:
		c.mu.Lock()
		c.state = Registered
		c.lastPongReceived = time.Now()
		if nick := m.Params.Get(1); nick != "" {
			c.currentNick = nick
		}
		registeredCh := c.registeredCh
		c.mu.Unlock()
		select {
		case <-registeredCh:
		default:
			close(registeredCh)
		}
		c.emit(RegisteredEvent{})
	}
}

func (c *Client) routeAggregators(m Message) {
	c.mu.Lock()
	pending := make(map[AggKey]aggregator, len(c.aggregators))
	for k, v := range c.aggregators {
		pending[k] = v
	}
	c.mu.Unlock()

	for key, agg := range pending {
		agg.feed(m)
		if !agg.isDone(m) {
			continue
		}
		agg.complete(terminatorError(m))
		c.mu.Lock()
		delete(c.aggregators, key)
		c.mu.Unlock()
	}
}

// terminatorError maps a terminator numeric to the error the aggregator
// should resolve with; most terminators are success (nil error) and only
// the failure numerics in §4.3's table resolve with an error.
func terminatorError(m Message) error {
	code, _ := m.NumericCode()
	switch code {
	case ERR_NOSUCHNICK, ERR_NOMOTD:
		return fmt.Errorf("irc: %s", m.Text())
	default:
		return nil
	}
}

func (c *Client) specificEvent(m Message) Event {
	switch strings.ToUpper(m.Command) {
	case "PRIVMSG":
		if len(m.Params) >= 2 && m.Nick() != "" {
			return PrivmsgEvent{Target: m.Target(), Sender: m.Nick(), Text: m.Text(), Raw: m.Raw}
		}
	case "NOTICE":
		if len(m.Params) >= 2 && m.Nick() != "" {
			return NoticeEvent{Target: m.Target(), Sender: m.Nick(), Text: m.Text(), Raw: m.Raw}
		}
	case "JOIN":
		return JoinEvent{Channel: m.Params.Get(1), Nick: m.Nick(), Raw: m.Raw}
	case "PART":
		return PartEvent{Channel: m.Params.Get(1), Nick: m.Nick(), Reason: m.Params.Get(2), Raw: m.Raw}
	case "QUIT":
		return QuitEvent{Nick: m.Nick(), Reason: m.Params.Get(1), Raw: m.Raw}
	case "KICK":
		if len(m.Params) >= 2 {
			return KickEvent{Channel: m.Params.Get(1), Kicked: m.Params.Get(2), By: m.Nick(), Reason: m.Params.Get(3), Raw: m.Raw}
		}
	case "NICK":
		old := m.Nick()
		newNick := m.Params.Get(1)
		c.mu.Lock()
		if strings.EqualFold(old, c.currentNick) {
			c.currentNick = newNick
		}
		c.mu.Unlock()
		return NickEvent{Old: old, New: newNick, Raw: m.Raw}
	case "TOPIC":
		return TopicEvent{Channel: m.Params.Get(1), NewTopic: m.Params.Get(2), Raw: m.Raw}
	case "MODE":
		if len(m.Params) >= 1 {
			return ModeEvent{Target: m.Params.Get(1), ModesJoined: strings.Join(m.Params[1:], " "), Raw: m.Raw}
		}
	}
	return nil
}

// cleanup implements §4.5's cleanup routine: cancel activities (already
// done by the caller via context cancellation), close the transport, reset
// negotiation state, fail every pending aggregator, and emit disconnected
// exactly once.
func (c *Client) cleanup(cause error) {
	c.mu.Lock()
	if c.state == Disconnected {
		c.mu.Unlock()
		return
	}
	c.state = Disconnected
	pending := c.aggregators
	c.aggregators = map[AggKey]aggregator{}
	c.outbound = &outboundQueue{}
	cancelCh := c.cancelCh
	transport := c.transport
	c.mu.Unlock()

	close(cancelCh)

	for _, agg := range pending {
		agg.complete(ErrDisconnected)
	}

	if transport != nil {
		_ = transport.Close()
	}

	var reportCause error
	if cause != nil && !errors.Is(cause, context.Canceled) {
		reportCause = cause
	}
	c.emit(DisconnectedEvent{Cause: reportCause})
}
