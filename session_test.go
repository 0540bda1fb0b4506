package irc_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyx-irc/irc"
	"github.com/nyx-irc/irc/irctransport"
)

func newTestClient(t *testing.T, cfg irc.SessionConfig) (*irc.Client, *irctransport.Mock) {
	t.Helper()
	mock := irctransport.NewMock()
	cfg.Transport = mock
	if cfg.Nick == "" {
		cfg.Nick = "tester"
	}
	c := irc.NewClient(cfg)
	require.NoError(t, c.Connect(context.Background()))
	return c, mock
}

func awaitRegistered(t *testing.T, c *irc.Client) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.AwaitRegistered(ctx))
}

// wroteLine reports whether want has been written to mock, polling for up
// to two seconds: the writer activity drains the outbound queue on its own
// goroutine and through the rate limiter, so a line enqueued during the
// handshake may not be written yet when AwaitRegistered returns.
func wroteLine(mock *irctransport.Mock, want string) bool {
	deadline := time.Now().Add(2 * time.Second)
	for {
		for _, l := range mock.WrittenLines() {
			if strings.TrimRight(l, "\r\n") == want {
				return true
			}
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBasicRegistration(t *testing.T) {
	c, mock := newTestClient(t, irc.SessionConfig{Nick: "nick"})
	defer c.Disconnect("")

	mock.QueueRead(":irc.example.org 001 nick :Welcome to the network")
	awaitRegistered(t, c)

	assert.Equal(t, irc.Registered, c.State())
	assert.Equal(t, "nick", c.CurrentNick())
	assert.True(t, wroteLine(mock, "NICK nick"))
	assert.True(t, wroteLine(mock, "USER nick 0 * :nick"))
}

func TestPasswordSentBeforeNickAndUser(t *testing.T) {
	c, mock := newTestClient(t, irc.SessionConfig{Nick: "nick", Password: "serverpass"})
	defer c.Disconnect("")

	mock.QueueRead(":irc.example.org 001 nick :hi")
	awaitRegistered(t, c)
	require.True(t, wroteLine(mock, "NICK nick"))

	var passIdx, nickIdx int = -1, -1
	for i, l := range mock.WrittenLines() {
		switch strings.TrimRight(l, "\r\n") {
		case "PASS serverpass":
			passIdx = i
		case "NICK nick":
			nickIdx = i
		}
	}
	require.NotEqual(t, -1, passIdx)
	require.NotEqual(t, -1, nickIdx)
	assert.Less(t, passIdx, nickIdx)
}

func TestSASLPlainSuccessDelaysNickUser(t *testing.T) {
	c, mock := newTestClient(t, irc.SessionConfig{
		Nick:          "nick",
		RequestedCaps: []string{"sasl"},
		SASL:          &irc.SASLConfig{Mechanism: irc.SASLPlain, User: "bob", Pass: "hunter2"},
	})
	defer c.Disconnect("")

	mock.QueueRead(":irc.example.org CAP * LS :sasl multi-prefix")
	mock.QueueRead(":irc.example.org CAP nick ACK :sasl")
	mock.QueueRead("AUTHENTICATE +")
	mock.QueueRead(":irc.example.org 903 nick :SASL authentication successful")
	mock.QueueRead(":irc.example.org 001 nick :hi")
	awaitRegistered(t, c)

	assert.True(t, wroteLine(mock, "CAP LS 302"))
	assert.True(t, wroteLine(mock, "CAP REQ :sasl"))
	assert.True(t, wroteLine(mock, "AUTHENTICATE PLAIN"))
	assert.True(t, wroteLine(mock, "AUTHENTICATE AGJvYgBodW50ZXIy"))
	assert.True(t, wroteLine(mock, "NICK nick"))
	assert.True(t, wroteLine(mock, "CAP END"))

	var authIdx, endIdx int = -1, -1
	for i, l := range mock.WrittenLines() {
		switch strings.TrimRight(l, "\r\n") {
		case "AUTHENTICATE AGJvYgBodW50ZXIy":
			authIdx = i
		case "CAP END":
			endIdx = i
		}
	}
	assert.Less(t, authIdx, endIdx)
}

func TestSASLFailureStillRegisters(t *testing.T) {
	c, mock := newTestClient(t, irc.SessionConfig{
		Nick:          "nick",
		RequestedCaps: []string{"sasl"},
		SASL:          &irc.SASLConfig{Mechanism: irc.SASLPlain, User: "bob", Pass: "wrong"},
	})
	defer c.Disconnect("")

	mock.QueueRead(":irc.example.org CAP * LS :sasl")
	mock.QueueRead(":irc.example.org CAP nick ACK :sasl")
	mock.QueueRead("AUTHENTICATE +")
	mock.QueueRead(":irc.example.org 904 nick :SASL authentication failed")
	mock.QueueRead(":irc.example.org 001 nick :hi")
	awaitRegistered(t, c)

	assert.True(t, wroteLine(mock, "CAP END"))
	assert.True(t, wroteLine(mock, "NICK nick"))
}

func TestNicknameInUseRecovery(t *testing.T) {
	c, mock := newTestClient(t, irc.SessionConfig{Nick: "nick"})
	defer c.Disconnect("")

	mock.QueueRead(":irc.example.org 433 * nick :Nickname is already in use.")
	mock.QueueRead(":irc.example.org 001 nick_ :hi")
	awaitRegistered(t, c)

	assert.Equal(t, "nick_", c.CurrentNick())
	assert.True(t, wroteLine(mock, "NICK nick_"))
}

func TestWhoisBusyDuplicateRejected(t *testing.T) {
	c, mock := newTestClient(t, irc.SessionConfig{Nick: "nick"})
	defer c.Disconnect("")

	mock.QueueRead(":irc.example.org 001 nick :hi")
	awaitRegistered(t, c)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Whois(ctx, "target")
	}()
	// give the first Whois a moment to register its aggregator before firing
	// the duplicate.
	time.Sleep(20 * time.Millisecond)

	_, err := c.Whois(ctx, "target")
	assert.ErrorIs(t, err, irc.ErrBusy)

	mock.QueueRead(":irc.example.org 318 nick target :End of /WHOIS list.")
	<-done
}

func TestDisconnectResumesAwaitRegistered(t *testing.T) {
	c, _ := newTestClient(t, irc.SessionConfig{Nick: "nick"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.AwaitRegistered(ctx)
	}()
	time.Sleep(20 * time.Millisecond)
	c.Disconnect("")

	err := <-done
	assert.ErrorIs(t, err, irc.ErrDisconnected)
}
