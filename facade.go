package irc

import "context"

// Join joins channel, optionally with key. Like every method in this file
// except the handshake primitives, Join waits for registration before
// sending.
func (c *Client) Join(ctx context.Context, channel, key string) error {
	return c.Send(ctx, Join{Channel: channel, Key: key})
}

// Part leaves channel with an optional reason.
func (c *Client) Part(ctx context.Context, channel, reason string) error {
	return c.Send(ctx, Part{Channel: channel, Reason: reason})
}

// Privmsg sends text to target, a channel or nick.
func (c *Client) Privmsg(ctx context.Context, target, text string) error {
	return c.Send(ctx, Privmsg{Target: target, Text: text})
}

// Notice sends a notice to target.
func (c *Client) Notice(ctx context.Context, target, text string) error {
	return c.Send(ctx, Notice{Target: target, Text: text})
}

// SetNick requests a nickname change.
func (c *Client) SetNick(ctx context.Context, nick string) error {
	return c.Send(ctx, Nick{Nickname: nick})
}

// SetTopic sets channel's topic.
func (c *Client) SetTopic(ctx context.Context, channel, topic string) error {
	return c.Send(ctx, Topic{Channel: channel, Text: topic})
}

// GetTopic queries channel's topic; the answer arrives as an RPL_TOPIC or
// RPL_NOTOPIC MessageEvent. No TopicEvent is produced for it.
func (c *Client) GetTopic(ctx context.Context, channel string) error {
	return c.Send(ctx, Topic{Channel: channel, Query: true})
}

// Kick removes nick from channel with an optional reason.
func (c *Client) Kick(ctx context.Context, channel, nick, reason string) error {
	return c.Send(ctx, Kick{Channel: channel, Nick: nick, Reason: reason})
}

// Invite invites nick to channel.
func (c *Client) Invite(ctx context.Context, nick, channel string) error {
	return c.Send(ctx, Invite{Nick: nick, Channel: channel})
}

// SetMode applies flags to target, a channel or nick.
func (c *Client) SetMode(ctx context.Context, target string, flags ...string) error {
	return c.Send(ctx, Mode{Target: target, Flags: flags})
}

// Away marks the client away, or clears away status when reason is empty.
func (c *Client) Away(ctx context.Context, reason string) error {
	return c.Send(ctx, Away{Reason: reason})
}

// registerAggregator installs agg under key, rejecting a duplicate
// in-flight request for the same key with ErrBusy rather than queuing it.
func (c *Client) registerAggregator(key AggKey, agg aggregator) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Disconnected {
		return ErrNotConnected
	}
	if _, exists := c.aggregators[key]; exists {
		return ErrBusy
	}
	c.aggregators[key] = agg
	return nil
}

func (c *Client) unregisterAggregator(key AggKey) {
	c.mu.Lock()
	delete(c.aggregators, key)
	c.mu.Unlock()
}

// Whois queries detailed information about nick and blocks until the
// server's terminator numeric arrives, ctx is cancelled, or the connection
// is torn down.
func (c *Client) Whois(ctx context.Context, nick string) (WhoisResult, error) {
	if err := c.AwaitRegistered(ctx); err != nil {
		return WhoisResult{}, err
	}
	key := whoisKey(nick)
	agg := newWhoisAggregator(nick)
	if err := c.registerAggregator(key, agg); err != nil {
		return WhoisResult{}, err
	}
	defer c.unregisterAggregator(key)

	c.enqueue(Whois{Nick: nick})
	return agg.wait(ctx)
}

// Names lists the members of channel.
func (c *Client) Names(ctx context.Context, channel string) (NamesResult, error) {
	if err := c.AwaitRegistered(ctx); err != nil {
		return NamesResult{}, err
	}
	key := namesKey(channel)
	agg := newNamesAggregator(channel)
	if err := c.registerAggregator(key, agg); err != nil {
		return NamesResult{}, err
	}
	defer c.unregisterAggregator(key)

	c.enqueue(Names{Channel: channel})
	return agg.wait(ctx)
}

// Who lists users matching mask.
func (c *Client) Who(ctx context.Context, mask string, opOnly bool) (WhoResult, error) {
	if err := c.AwaitRegistered(ctx); err != nil {
		return WhoResult{}, err
	}
	key := whoKey(mask)
	agg := newWhoAggregator(mask)
	if err := c.registerAggregator(key, agg); err != nil {
		return WhoResult{}, err
	}
	defer c.unregisterAggregator(key)

	c.enqueue(Who{Mask: mask, OpOnly: opOnly})
	return agg.wait(ctx)
}

// List retrieves the channel list, optionally filtered to channel.
func (c *Client) List(ctx context.Context, channel string) (ListResult, error) {
	if err := c.AwaitRegistered(ctx); err != nil {
		return ListResult{}, err
	}
	key := listKey()
	agg := newListAggregator(channel)
	if err := c.registerAggregator(key, agg); err != nil {
		return ListResult{}, err
	}
	defer c.unregisterAggregator(key)

	c.enqueue(List{Channel: channel})
	return agg.wait(ctx)
}

// Motd retrieves the server's message of the day.
func (c *Client) Motd(ctx context.Context) (MotdResult, error) {
	if err := c.AwaitRegistered(ctx); err != nil {
		return MotdResult{}, err
	}
	key := motdKey()
	agg := newMotdAggregator()
	if err := c.registerAggregator(key, agg); err != nil {
		return MotdResult{}, err
	}
	defer c.unregisterAggregator(key)

	c.enqueue(Motd{})
	return agg.wait(ctx)
}
