package irc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhoisAggregator(t *testing.T) {
	agg := newWhoisAggregator("bob")

	feed := []string{
		":irc.example.org 311 me bob ~bob host.example.org * :Bob Bobson",
		":irc.example.org 312 me bob irc.example.org :Example IRC Network",
		":irc.example.org 317 me bob 42 1600000000 :seconds idle, signon time",
		":irc.example.org 319 me bob :#chan1 #chan2",
		":irc.example.org 330 me bob bobaccount :is logged in as",
		":irc.example.org 318 me bob :End of /WHOIS list.",
	}
	for _, line := range feed {
		m := Parse(line)
		agg.feed(m)
		if agg.isDone(m) {
			agg.complete(nil)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := agg.wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "~bob", res.User)
	assert.Equal(t, "host.example.org", res.Host)
	assert.Equal(t, "Bob Bobson", res.RealName)
	assert.Equal(t, "irc.example.org", res.Server)
	assert.Equal(t, 42, res.IdleSecs)
	assert.ElementsMatch(t, []string{"#chan1", "#chan2"}, res.Channels)
	assert.Equal(t, "bobaccount", res.Account)
}

func TestWhoisAggregatorIgnoresOtherNicks(t *testing.T) {
	agg := newWhoisAggregator("bob")
	m := Parse(":irc.example.org 311 me alice ~alice host * :Alice")
	agg.feed(m)
	if agg.isDone(m) {
		t.Fatalf("aggregator for bob should not terminate on alice's reply")
	}
}

func TestNamesAggregator(t *testing.T) {
	agg := newNamesAggregator("#test")

	m1 := Parse(":irc.example.org 353 me = #test :alice @bob +carol")
	agg.feed(m1)

	end := Parse(":irc.example.org 366 me #test :End of /NAMES list.")
	if !agg.isDone(end) {
		t.Fatalf("expected 366 to terminate names aggregator")
	}
	agg.complete(nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := agg.wait(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "@bob", "+carol"}, res.Names)
}

func TestWhoAggregator(t *testing.T) {
	agg := newWhoAggregator("#test")

	m1 := Parse(":irc.example.org 352 me #test ~alice host1 irc.example.org alice H :3 Alice A")
	agg.feed(m1)
	m2 := Parse(":irc.example.org 352 me #test ~bob host2 irc.example.org bob H@ :1 Bob B")
	agg.feed(m2)

	end := Parse(":irc.example.org 315 me #test :End of /WHO list.")
	if !agg.isDone(end) {
		t.Fatalf("expected 315 to terminate who aggregator")
	}
	agg.complete(nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := agg.wait(ctx)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "alice", res.Entries[0].Nick)
	assert.Equal(t, "~alice", res.Entries[0].User)
	assert.Equal(t, "host1", res.Entries[0].Host)
	assert.Equal(t, 3, res.Entries[0].HopCount)
	assert.Equal(t, "Alice A", res.Entries[0].RealName)
	assert.Equal(t, "bob", res.Entries[1].Nick)
}

func TestWhoAggregatorNickMask(t *testing.T) {
	agg := newWhoAggregator("alice")

	m1 := Parse(":irc.example.org 352 me #test ~alice host1 irc.example.org alice H :3 Alice A")
	agg.feed(m1)

	end := Parse(":irc.example.org 315 me alice :End of /WHO list.")
	if !agg.isDone(end) {
		t.Fatalf("expected 315 echoing the mask to terminate who aggregator")
	}
	agg.complete(nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := agg.wait(ctx)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "alice", res.Entries[0].Nick)
}

func TestListAggregator(t *testing.T) {
	agg := newListAggregator("")

	agg.feed(Parse(":irc.example.org 322 me #test 5 :general chat"))
	agg.feed(Parse(":irc.example.org 322 me #other 2 :other chat"))

	end := Parse(":irc.example.org 323 me :End of /LIST")
	if !agg.isDone(end) {
		t.Fatalf("expected 323 to terminate list aggregator")
	}
	agg.complete(nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	res, err := agg.wait(ctx)
	require.NoError(t, err)
	require.Len(t, res.Channels, 2)
	assert.Equal(t, "#test", res.Channels[0].Channel)
	assert.Equal(t, 5, res.Channels[0].Visible)
	assert.Equal(t, "general chat", res.Channels[0].Topic)
}

func TestAggBaseCompleteIsIdempotent(t *testing.T) {
	base := newAggBase()
	base.complete(ErrTimeout)
	base.complete(nil) // must not panic or overwrite the first error

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := base.block(ctx)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestAggBaseBlockRespectsContext(t *testing.T) {
	base := newAggBase()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := base.block(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
