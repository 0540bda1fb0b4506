package irc

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

// aggDefaultDeadline is the default time an aggregator waits for its
// terminator before failing with ErrTimeout.
const aggDefaultDeadline = 30 * time.Second

// AggKey identifies a pending aggregated query. At most one aggregator may
// be registered under a given key at a time; a second request for the same
// key is rejected with ErrBusy rather than queued.
type AggKey struct {
	kind string
	arg  string
}

func whoisKey(nick string) AggKey  { return AggKey{"whois", strings.ToLower(nick)} }
func namesKey(chn string) AggKey   { return AggKey{"names", strings.ToLower(chn)} }
func whoKey(mask string) AggKey    { return AggKey{"who", strings.ToLower(mask)} }
func listKey() AggKey              { return AggKey{kind: "list"} }
func motdKey() AggKey              { return AggKey{kind: "motd"} }

// aggregator is the uniform capability set every polymorphic aggregator
// exposes: feed accumulates a relevant message, isDone is a pure decision
// on whether a message terminates the request, and complete resolves the
// aggregator's single outstanding result exactly once.
type aggregator interface {
	feed(m Message)
	isDone(m Message) bool
	complete(err error)
	deadline() time.Time
}

// aggBase carries the completion machinery shared by every aggregator: a
// result is produced exactly once, either by a terminator numeric or by
// deadline expiry, and further completions are no-ops.
type aggBase struct {
	mu        sync.Mutex
	done      chan struct{}
	err       error
	expiresAt time.Time
}

func newAggBase() aggBase {
	return aggBase{done: make(chan struct{}), expiresAt: time.Now().Add(aggDefaultDeadline)}
}

func (a *aggBase) deadline() time.Time { return a.expiresAt }

func (a *aggBase) complete(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	select {
	case <-a.done:
		return
	default:
	}
	a.err = err
	close(a.done)
}

func (a *aggBase) block(ctx context.Context) error {
	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WhoisResult is the resolved answer to a Whois query.
type WhoisResult struct {
	Nick       string
	User       string
	Host       string
	RealName   string
	Server     string
	ServerInfo string
	Operator   bool
	IdleSecs   int
	Channels   []string
	Away       string
	Account    string
}

type whoisAggregator struct {
	aggBase
	nick   string
	result WhoisResult
}

func newWhoisAggregator(nick string) *whoisAggregator {
	return &whoisAggregator{aggBase: newAggBase(), nick: strings.ToLower(nick), result: WhoisResult{Nick: nick}}
}

// matches reports whether m names a.nick as its subject. Every numeric
// reply's first param echoes the receiving client's own nick, so the
// subject nick is always one position further along.
func (a *whoisAggregator) matches(m Message) bool {
	return strings.ToLower(m.Params.Get(2)) == a.nick
}

func (a *whoisAggregator) feed(m Message) {
	if !a.matches(m) {
		return
	}
	code, _ := m.NumericCode()
	a.mu.Lock()
	defer a.mu.Unlock()
	switch code {
	case RPL_WHOISUSER:
		a.result.User = m.Params.Get(3)
		a.result.Host = m.Params.Get(4)
		a.result.RealName = m.Text()
	case RPL_WHOISSERVER:
		a.result.Server = m.Params.Get(3)
		a.result.ServerInfo = m.Text()
	case RPL_WHOISOPERATOR:
		a.result.Operator = true
	case RPL_WHOISIDLE:
		if n, err := strconv.Atoi(m.Params.Get(3)); err == nil {
			a.result.IdleSecs = n
		}
	case RPL_WHOISCHANNELS:
		a.result.Channels = strings.Fields(m.Text())
	case RPL_AWAY:
		a.result.Away = m.Text()
	case RPL_WHOISACCOUNT:
		a.result.Account = m.Params.Get(3)
	}
}

func (a *whoisAggregator) isDone(m Message) bool {
	if !a.matches(m) {
		return false
	}
	code, _ := m.NumericCode()
	return code == RPL_ENDOFWHOIS || code == ERR_NOSUCHNICK
}

func (a *whoisAggregator) wait(ctx context.Context) (WhoisResult, error) {
	err := a.block(ctx)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result, err
}

// NamesResult is the resolved membership list for a channel.
type NamesResult struct {
	Channel string
	Names   []string
}

type namesAggregator struct {
	aggBase
	channel string
	result  NamesResult
}

func newNamesAggregator(channel string) *namesAggregator {
	return &namesAggregator{aggBase: newAggBase(), channel: strings.ToLower(channel), result: NamesResult{Channel: channel}}
}

// matches reports whether m concerns a.channel. RPL_NAMREPLY carries an
// extra channel-visibility symbol ("=", "*", or "@") between the echoed
// client nick and the channel name, so the channel sits at position 3.
func (a *namesAggregator) matches(m Message) bool {
	return strings.ToLower(m.Params.Get(3)) == a.channel
}

func (a *namesAggregator) feed(m Message) {
	code, _ := m.NumericCode()
	if code != RPL_NAMREPLY || !a.matches(m) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result.Names = append(a.result.Names, strings.Fields(m.Text())...)
}

func (a *namesAggregator) isDone(m Message) bool {
	code, _ := m.NumericCode()
	return code == RPL_ENDOFNAMES && strings.ToLower(m.Params.Get(2)) == a.channel
}

func (a *namesAggregator) wait(ctx context.Context) (NamesResult, error) {
	err := a.block(ctx)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result, err
}

// WhoEntry is a single row of a Who response.
type WhoEntry struct {
	Channel  string
	User     string
	Host     string
	Server   string
	Nick     string
	Flags    string
	HopCount int
	RealName string
}

// WhoResult is the resolved answer to a Who query.
type WhoResult struct {
	Mask    string
	Entries []WhoEntry
}

type whoAggregator struct {
	aggBase
	mask   string
	result WhoResult
}

func newWhoAggregator(mask string) *whoAggregator {
	return &whoAggregator{aggBase: newAggBase(), mask: strings.ToLower(mask), result: WhoResult{Mask: mask}}
}

func (a *whoAggregator) feed(m Message) {
	code, _ := m.NumericCode()
	if code != RPL_WHOREPLY {
		return
	}
	// RPL_WHOREPLY's second param is the channel the row was matched
	// through, not the queried mask -- a nick/host mask never appears
	// there. At most one WHO is in flight per key, so every 352 seen
	// while this aggregator is pending belongs to it; RPL_ENDOFWHO is
	// what actually echoes the mask and terminates the request.
	entry := WhoEntry{
		Channel: m.Params.Get(2),
		User:    m.Params.Get(3),
		Host:    m.Params.Get(4),
		Server:  m.Params.Get(5),
		Nick:    m.Params.Get(6),
		Flags:   m.Params.Get(7),
	}
	fields := strings.SplitN(m.Text(), " ", 2)
	if len(fields) > 0 {
		if n, err := strconv.Atoi(fields[0]); err == nil {
			entry.HopCount = n
		}
	}
	if len(fields) > 1 {
		entry.RealName = fields[1]
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result.Entries = append(a.result.Entries, entry)
}

func (a *whoAggregator) isDone(m Message) bool {
	code, _ := m.NumericCode()
	return code == RPL_ENDOFWHO && strings.ToLower(m.Params.Get(2)) == a.mask
}

func (a *whoAggregator) wait(ctx context.Context) (WhoResult, error) {
	err := a.block(ctx)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result, err
}

// ListEntry is a single row of a List response.
type ListEntry struct {
	Channel string
	Visible int
	Topic   string
}

// ListResult is the resolved answer to a List query.
type ListResult struct {
	Channels []ListEntry
}

type listAggregator struct {
	aggBase
	channel string // optional filter; empty means "all channels"
	result  ListResult
}

func newListAggregator(channel string) *listAggregator {
	return &listAggregator{aggBase: newAggBase(), channel: strings.ToLower(channel)}
}

// matches reports whether m concerns a.channel. RPL_LIST's first param is
// the echoed client nick, so the channel is one position further along.
func (a *listAggregator) matches(m Message) bool {
	return a.channel == "" || strings.ToLower(m.Params.Get(2)) == a.channel
}

func (a *listAggregator) feed(m Message) {
	code, _ := m.NumericCode()
	if code != RPL_LIST || !a.matches(m) {
		return
	}
	entry := ListEntry{Channel: m.Params.Get(2), Topic: m.Text()}
	if n, err := strconv.Atoi(m.Params.Get(3)); err == nil {
		entry.Visible = n
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result.Channels = append(a.result.Channels, entry)
}

func (a *listAggregator) isDone(m Message) bool {
	code, _ := m.NumericCode()
	return code == RPL_LISTEND
}

func (a *listAggregator) wait(ctx context.Context) (ListResult, error) {
	err := a.block(ctx)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result, err
}

// MotdResult is the resolved message of the day.
type MotdResult struct {
	Lines []string
}

type motdAggregator struct {
	aggBase
	result MotdResult
}

func newMotdAggregator() *motdAggregator {
	return &motdAggregator{aggBase: newAggBase()}
}

func (a *motdAggregator) feed(m Message) {
	code, _ := m.NumericCode()
	if code != RPL_MOTD {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result.Lines = append(a.result.Lines, m.Text())
}

func (a *motdAggregator) isDone(m Message) bool {
	code, _ := m.NumericCode()
	return code == RPL_ENDOFMOTD || code == ERR_NOMOTD
}

func (a *motdAggregator) wait(ctx context.Context) (MotdResult, error) {
	err := a.block(ctx)
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result, err
}
