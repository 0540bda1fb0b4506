package irc

// Event is the sealed set of values delivered on a Client's event channel.
// As with Command, the capability set is closed to this package.
type Event interface {
	ircEvent()
}

// ConnectedEvent fires once the transport is open, before registration
// begins.
type ConnectedEvent struct{}

// RegisteredEvent fires once on receipt of RPL_WELCOME.
type RegisteredEvent struct{}

// DisconnectedEvent fires once cleanup has finished. Cause is nil for a
// caller-requested disconnect.
type DisconnectedEvent struct {
	Cause error
}

// MessageEvent carries every parsed inbound line, in addition to any more
// specific event the same line also produced.
type MessageEvent struct {
	Message Message
}

// PrivmsgEvent fires for an inbound PRIVMSG with a target, sender, and
// text all present.
type PrivmsgEvent struct {
	Target string
	Sender string
	Text   string
	Raw    string
}

// NoticeEvent mirrors PrivmsgEvent for NOTICE.
type NoticeEvent struct {
	Target string
	Sender string
	Text   string
	Raw    string
}

// JoinEvent fires for an inbound JOIN.
type JoinEvent struct {
	Channel string
	Nick    string
	Raw     string
}

// PartEvent fires for an inbound PART.
type PartEvent struct {
	Channel string
	Nick    string
	Reason  string
	Raw     string
}

// QuitEvent fires for an inbound QUIT.
type QuitEvent struct {
	Nick   string
	Reason string
	Raw    string
}

// KickEvent fires for an inbound KICK with at least channel and kicked
// nick present.
type KickEvent struct {
	Channel string
	Kicked  string
	By      string
	Reason  string
	Raw     string
}

// NickEvent fires for an inbound NICK change.
type NickEvent struct {
	Old string
	New string
	Raw string
}

// TopicEvent fires for an inbound TOPIC.
type TopicEvent struct {
	Channel  string
	NewTopic string
	Raw      string
}

// ModeEvent fires for an inbound MODE.
type ModeEvent struct {
	Target      string
	ModesJoined string
	Raw         string
}

// ErrorEvent surfaces a condition worth telling the caller about that
// isn't itself a fatal disconnect (though it may precede one), such as a
// SASL failure or ping timeout.
type ErrorEvent struct {
	Text string
}

func (ConnectedEvent) ircEvent()    {}
func (RegisteredEvent) ircEvent()   {}
func (DisconnectedEvent) ircEvent() {}
func (MessageEvent) ircEvent()      {}
func (PrivmsgEvent) ircEvent()      {}
func (NoticeEvent) ircEvent()       {}
func (JoinEvent) ircEvent()         {}
func (PartEvent) ircEvent()         {}
func (QuitEvent) ircEvent()         {}
func (KickEvent) ircEvent()         {}
func (NickEvent) ircEvent()         {}
func (TopicEvent) ircEvent()        {}
func (ModeEvent) ircEvent()         {}
func (ErrorEvent) ircEvent()        {}
