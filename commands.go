package irc

import (
	"strconv"
	"strings"
)

// Command is a sealed set of outbound protocol commands. Each concrete
// type has exactly one wire encoding, produced by Serialize.
//
// The set of implementations is closed to this package: Command's only
// method is unexported, so callers can construct and inspect the provided
// variants but cannot add new ones.
type Command interface {
	ircCommand()
}

// Pass specifies the connection password. Only meaningful before
// registration; must be sent before Nick and User if used at all.
type Pass struct {
	Password string
}

// Nick requests a nickname, either during registration or as a change
// once registered.
type Nick struct {
	Nickname string
}

// User is sent once, at registration, to specify the username and real
// name of the connection.
type User struct {
	User     string
	RealName string
}

// Quit terminates the connection, optionally with a reason shown to
// other users who share a channel with the client.
type Quit struct {
	Reason string
}

// Cap sends a capability-negotiation subcommand (LS, REQ, LIST, END, ...).
type Cap struct {
	Subcommand string
	Args       []string
}

// Authenticate sends a SASL AUTHENTICATE step. Payload is the raw
// (already base64-encoded, or "+" for empty) argument.
type Authenticate struct {
	Payload string
}

// Join requests membership in a channel, with an optional key for
// key-protected channels.
type Join struct {
	Channel string
	Key     string
}

// Part leaves a channel, with an optional reason.
type Part struct {
	Channel string
	Reason  string
}

// Topic sets or queries a channel's topic. Query is true when Text should
// be omitted from the wire form (a topic query rather than a topic set).
type Topic struct {
	Channel string
	Text    string
	Query   bool
}

// Names requests the list of nicks visible in a channel, or in all
// channels when Channel is empty.
type Names struct {
	Channel string
}

// List requests the channel list, optionally filtered to Channel.
type List struct {
	Channel string
}

// Invite invites Nick to Channel.
type Invite struct {
	Nick    string
	Channel string
}

// Kick removes Nick from Channel, with an optional reason.
type Kick struct {
	Channel string
	Nick    string
	Reason  string
}

// Privmsg sends a message to Target, which may be a channel or nick.
type Privmsg struct {
	Target string
	Text   string
}

// Notice sends a notice to Target. Automated responses should prefer
// Notice over Privmsg, per convention.
type Notice struct {
	Target string
	Text   string
}

// Mode changes or queries a channel or user mode. Flags is empty for a
// bare mode query.
type Mode struct {
	Target string
	Flags  []string
}

// Whois requests detailed information about Nick.
type Whois struct {
	Nick string
}

// Whowas requests historical information about a nick that has since
// disconnected or changed nicks. Count limits the number of historical
// entries returned; zero requests the server default.
type Whowas struct {
	Nick  string
	Count int
}

// Who requests a list of users matching Mask. OpOnly restricts the
// response to channel operators.
type Who struct {
	Mask   string
	OpOnly bool
}

// Ison checks which of Nicks are currently online.
type Ison struct {
	Nicks []string
}

// Userhost requests hostname information for up to five nicks.
type Userhost struct {
	Nicks []string
}

// Ping sends a keepalive probe; the server is expected to reply with Pong
// carrying the same token.
type Ping struct {
	Token string
}

// Pong replies to a server Ping, echoing its token.
type Pong struct {
	Token string
}

// Motd requests the server's message of the day.
type Motd struct{}

// Version requests the server's version string.
type Version struct{}

// Time requests the server's local time.
type Time struct{}

// Admin requests information about the server administrator.
type Admin struct{}

// Info requests server implementation information.
type Info struct{}

// Stats requests server statistics for Query.
type Stats struct {
	Query string
}

// Away marks the client away with Reason, or clears away status when
// Reason is empty.
type Away struct {
	Reason string
}

// Raw sends Line verbatim: Serialize returns it unmodified, and the
// transport appends the trailing CRLF when writing it. Escape hatch for
// commands this package does not model as a variant.
type Raw struct {
	Line string
}

func (Pass) ircCommand()         {}
func (Nick) ircCommand()         {}
func (User) ircCommand()         {}
func (Quit) ircCommand()         {}
func (Cap) ircCommand()          {}
func (Authenticate) ircCommand() {}
func (Join) ircCommand()         {}
func (Part) ircCommand()         {}
func (Topic) ircCommand()        {}
func (Names) ircCommand()        {}
func (List) ircCommand()         {}
func (Invite) ircCommand()       {}
func (Kick) ircCommand()         {}
func (Privmsg) ircCommand()      {}
func (Notice) ircCommand()       {}
func (Mode) ircCommand()         {}
func (Whois) ircCommand()        {}
func (Whowas) ircCommand()       {}
func (Who) ircCommand()          {}
func (Ison) ircCommand()         {}
func (Userhost) ircCommand()     {}
func (Ping) ircCommand()         {}
func (Pong) ircCommand()         {}
func (Motd) ircCommand()         {}
func (Version) ircCommand()      {}
func (Time) ircCommand()         {}
func (Admin) ircCommand()        {}
func (Info) ircCommand()         {}
func (Stats) ircCommand()        {}
func (Away) ircCommand()         {}
func (Raw) ircCommand()          {}

// build joins command and params into wire form, skipping empty params and
// colon-marking the last param as a trailing param when it contains a
// space or begins with ':'.
func build(command string, params ...string) string {
	var b strings.Builder
	b.WriteString(command)
	for i, p := range params {
		if p == "" {
			continue
		}
		b.WriteByte(' ')
		last := i == len(params)-1
		if last && (strings.ContainsRune(p, ' ') || strings.HasPrefix(p, ":")) {
			b.WriteByte(':')
		}
		b.WriteString(p)
	}
	return b.String()
}

// buildTrailing joins command and leading (space-separated, empty ones
// skipped) params, then always appends trailing as a colon-marked final
// param, even when it is empty. Used for the param categories the codec
// treats as "the message" (PRIVMSG/NOTICE text, USER realname, CAP REQ/END
// argument lists, PING/PONG tokens), where the trailing marker is required
// regardless of content.
func buildTrailing(command string, leading []string, trailing string) string {
	var b strings.Builder
	b.WriteString(command)
	for _, p := range leading {
		if p == "" {
			continue
		}
		b.WriteByte(' ')
		b.WriteString(p)
	}
	b.WriteString(" :")
	b.WriteString(trailing)
	return b.String()
}

// buildOptionalTrailing is like buildTrailing, but omits the trailing param
// entirely when it is empty rather than sending a bare colon. Used for
// optional reason/text params (QUIT, PART, KICK, TOPIC, AWAY) that are
// dropped from the wire form when absent, but always colon-marked when
// present, regardless of whether they contain a space.
func buildOptionalTrailing(command string, leading []string, trailing string) string {
	if trailing == "" {
		return build(command, leading...)
	}
	return buildTrailing(command, leading, trailing)
}

// Serialize renders a Command to its single wire encoding, without a
// trailing CRLF. Serialize is total over the Command variants declared in
// this package; an unrecognized implementation (impossible outside this
// package, since ircCommand is unexported) serializes to an empty string.
func Serialize(c Command) string {
	switch v := c.(type) {
	case Pass:
		return build("PASS", v.Password)
	case Nick:
		return build("NICK", v.Nickname)
	case User:
		return buildTrailing("USER", []string{v.User, "0", "*"}, v.RealName)
	case Quit:
		return buildOptionalTrailing("QUIT", nil, v.Reason)
	case Cap:
		if len(v.Args) == 0 {
			return build("CAP", v.Subcommand)
		}
		if v.Subcommand == "LS" {
			return build("CAP", append([]string{v.Subcommand}, v.Args...)...)
		}
		return buildTrailing("CAP", []string{v.Subcommand}, strings.Join(v.Args, " "))
	case Authenticate:
		return build("AUTHENTICATE", v.Payload)
	case Join:
		if v.Key != "" {
			return build("JOIN", v.Channel, v.Key)
		}
		return build("JOIN", v.Channel)
	case Part:
		return buildOptionalTrailing("PART", []string{v.Channel}, v.Reason)
	case Topic:
		if v.Query {
			return build("TOPIC", v.Channel)
		}
		return buildOptionalTrailing("TOPIC", []string{v.Channel}, v.Text)
	case Names:
		return build("NAMES", v.Channel)
	case List:
		return build("LIST", v.Channel)
	case Invite:
		return build("INVITE", v.Nick, v.Channel)
	case Kick:
		return buildOptionalTrailing("KICK", []string{v.Channel, v.Nick}, v.Reason)
	case Privmsg:
		return buildTrailing("PRIVMSG", []string{v.Target}, v.Text)
	case Notice:
		return buildTrailing("NOTICE", []string{v.Target}, v.Text)
	case Mode:
		return build("MODE", append([]string{v.Target}, v.Flags...)...)
	case Whois:
		return build("WHOIS", v.Nick)
	case Whowas:
		if v.Count > 0 {
			return build("WHOWAS", v.Nick, strconv.Itoa(v.Count))
		}
		return build("WHOWAS", v.Nick)
	case Who:
		if v.OpOnly {
			return build("WHO", v.Mask, "o")
		}
		return build("WHO", v.Mask)
	case Ison:
		return build("ISON", v.Nicks...)
	case Userhost:
		return build("USERHOST", v.Nicks...)
	case Ping:
		return buildTrailing("PING", nil, v.Token)
	case Pong:
		return buildTrailing("PONG", nil, v.Token)
	case Motd:
		return "MOTD"
	case Version:
		return "VERSION"
	case Time:
		return "TIME"
	case Admin:
		return "ADMIN"
	case Info:
		return "INFO"
	case Stats:
		return build("STATS", v.Query)
	case Away:
		return buildOptionalTrailing("AWAY", nil, v.Reason)
	case Raw:
		return v.Line
	default:
		return ""
	}
}
