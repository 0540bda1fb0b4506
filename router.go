package irc

import "context"

// Router dispatches Events to type-specific handlers, the same convenience
// a multiplexer provides over hand-writing a type switch at every call
// site. It plays the role the teacher's command/wildcard route matcher
// played, adapted to dispatch on the sealed Event type instead of an
// open-ended Command/matcher chain.
//
// A Router's zero value is ready to use. Handlers for a given event type
// run in registration order; a Router is not safe for concurrent
// registration, but Dispatch and Run may run concurrently with reads once
// registration is finished.
type Router struct {
	onConnected    []func(ConnectedEvent)
	onRegistered   []func(RegisteredEvent)
	onDisconnected []func(DisconnectedEvent)
	onMessage      []func(MessageEvent)
	onPrivmsg      []func(PrivmsgEvent)
	onNotice       []func(NoticeEvent)
	onJoin         []func(JoinEvent)
	onPart         []func(PartEvent)
	onQuit         []func(QuitEvent)
	onKick         []func(KickEvent)
	onNick         []func(NickEvent)
	onTopic        []func(TopicEvent)
	onMode         []func(ModeEvent)
	onError        []func(ErrorEvent)
}

// OnConnected registers f to run for every ConnectedEvent.
func (r *Router) OnConnected(f func(ConnectedEvent)) { r.onConnected = append(r.onConnected, f) }

// OnRegistered registers f to run for every RegisteredEvent.
func (r *Router) OnRegistered(f func(RegisteredEvent)) { r.onRegistered = append(r.onRegistered, f) }

// OnDisconnected registers f to run for every DisconnectedEvent.
func (r *Router) OnDisconnected(f func(DisconnectedEvent)) {
	r.onDisconnected = append(r.onDisconnected, f)
}

// OnMessage registers f to run for every parsed message, in addition to
// whatever more specific handler also runs for it.
func (r *Router) OnMessage(f func(MessageEvent)) { r.onMessage = append(r.onMessage, f) }

// OnPrivmsg registers f to run for every PrivmsgEvent.
func (r *Router) OnPrivmsg(f func(PrivmsgEvent)) { r.onPrivmsg = append(r.onPrivmsg, f) }

// OnNotice registers f to run for every NoticeEvent.
func (r *Router) OnNotice(f func(NoticeEvent)) { r.onNotice = append(r.onNotice, f) }

// OnJoin registers f to run for every JoinEvent.
func (r *Router) OnJoin(f func(JoinEvent)) { r.onJoin = append(r.onJoin, f) }

// OnPart registers f to run for every PartEvent.
func (r *Router) OnPart(f func(PartEvent)) { r.onPart = append(r.onPart, f) }

// OnQuit registers f to run for every QuitEvent.
func (r *Router) OnQuit(f func(QuitEvent)) { r.onQuit = append(r.onQuit, f) }

// OnKick registers f to run for every KickEvent.
func (r *Router) OnKick(f func(KickEvent)) { r.onKick = append(r.onKick, f) }

// OnNick registers f to run for every NickEvent.
func (r *Router) OnNick(f func(NickEvent)) { r.onNick = append(r.onNick, f) }

// OnTopic registers f to run for every TopicEvent.
func (r *Router) OnTopic(f func(TopicEvent)) { r.onTopic = append(r.onTopic, f) }

// OnMode registers f to run for every ModeEvent.
func (r *Router) OnMode(f func(ModeEvent)) { r.onMode = append(r.onMode, f) }

// OnError registers f to run for every ErrorEvent.
func (r *Router) OnError(f func(ErrorEvent)) { r.onError = append(r.onError, f) }

// Dispatch routes a single Event to every handler registered for its
// concrete type.
func (r *Router) Dispatch(e Event) {
	switch v := e.(type) {
	case ConnectedEvent:
		for _, f := range r.onConnected {
			f(v)
		}
	case RegisteredEvent:
		for _, f := range r.onRegistered {
			f(v)
		}
	case DisconnectedEvent:
		for _, f := range r.onDisconnected {
			f(v)
		}
	case MessageEvent:
		for _, f := range r.onMessage {
			f(v)
		}
	case PrivmsgEvent:
		for _, f := range r.onPrivmsg {
			f(v)
		}
	case NoticeEvent:
		for _, f := range r.onNotice {
			f(v)
		}
	case JoinEvent:
		for _, f := range r.onJoin {
			f(v)
		}
	case PartEvent:
		for _, f := range r.onPart {
			f(v)
		}
	case QuitEvent:
		for _, f := range r.onQuit {
			f(v)
		}
	case KickEvent:
		for _, f := range r.onKick {
			f(v)
		}
	case NickEvent:
		for _, f := range r.onNick {
			f(v)
		}
	case TopicEvent:
		for _, f := range r.onTopic {
			f(v)
		}
	case ModeEvent:
		for _, f := range r.onMode {
			f(v)
		}
	case ErrorEvent:
		for _, f := range r.onError {
			f(v)
		}
	}
}

// Run dispatches every Event received on ch until ch is closed or ctx is
// cancelled.
func (r *Router) Run(ctx context.Context, ch <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			r.Dispatch(e)
		}
	}
}
