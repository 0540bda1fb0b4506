/*
Package irc provides an IRC client implementation.

This overview provides brief introductions for types and concepts.
The godoc for each type contains expanded documentation.

API

These are the main interfaces and structs that you will interact with while using this package:

	// Client manages a connection to an IRC server: registration, CAP/SASL
	// negotiation, keepalive, and the runtime dispatch of inbound lines.
	type Client struct {
		//...
	}

	// SessionConfig configures a Client.
	type SessionConfig struct {
		Server, Nick, Username, Realname, Password string
		SASL          *SASLConfig
		RequestedCaps []string
		//...
	}

	// Command is the sealed set of outbound protocol messages.
	type Command interface {
		ircCommand()
	}

	// Event is the sealed set of values delivered on a Client's event channel.
	type Event interface {
		ircEvent()
	}

Client

The Client type provides a simple abstraction around an IRC connection.
Connect opens the transport, runs the CAP/SASL/registration handshake, and
starts the reader, writer, and keepalive activities. Callers observe the
connection through the channel returned by Events, and drive it through
the typed helpers in facade.go (Join, Privmsg, Whois, ...) or the lower
level Send/SendRaw.

	c := irc.NewClient(irc.SessionConfig{
		Server: "irc.example.org",
		Nick:   "example",
	})
	if err := c.Connect(ctx); err != nil {
		log.Fatal(err)
	}
	if err := c.AwaitRegistered(ctx); err != nil {
		log.Fatal(err)
	}
	c.Join(ctx, "#example", "")

Events

Every parsed inbound line produces a MessageEvent, and many also produce a
more specific event -- PrivmsgEvent, JoinEvent, and so on. A caller reads
both off the same channel:

	for e := range c.Events() {
		switch v := e.(type) {
		case irc.PrivmsgEvent:
			fmt.Println(v.Sender, v.Text)
		case irc.DisconnectedEvent:
			return
		}
	}

Router

The Router type is a convenience layer over that channel. It provides a
way to register a handler per event type instead of hand-writing a type
switch, comparable to the role http.ServeMux plays for HTTP handlers.
You are not required to use it, however; ranging over Events directly
works just as well.

	r := &irc.Router{}
	r.OnPrivmsg(func(e irc.PrivmsgEvent) {
		fmt.Println(e.Sender, e.Text)
	})
	r.Run(ctx, c.Events())

Aggregated queries

WHOIS, NAMES, WHO, LIST, and MOTD are each answered by a server with a
run of numeric replies terminated by a specific numeric. The Client
methods for these (Whois, Names, Who, List, Motd) hide that accumulation
behind a single call that blocks until the terminator arrives, the
context is cancelled, or the connection drops.

	res, err := c.Whois(ctx, "someone")

Message Formatting

This package does not implement message formatting or IRC color/control
code stripping. Formatting requirements vary widely by application;
write your own reply helpers rather than looking for an irc.Msgf.
*/
package irc
