package irctest_test

import (
	"context"
	"testing"
	"time"

	"github.com/nyx-irc/irc"
	"github.com/nyx-irc/irc/irctest"
)

func TestServerRoundTrip(t *testing.T) {
	srv := irctest.NewServer()
	defer srv.Close()

	c := irc.NewClient(irc.SessionConfig{
		Nick:      "nick",
		Transport: srv.Client(),
	})
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Disconnect("")

	select {
	case m := <-srv.Received:
		if m.Command != "NICK" {
			t.Fatalf("expected NICK first, got %q", m.Command)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for NICK")
	}

	select {
	case m := <-srv.Received:
		if m.Command != "USER" {
			t.Fatalf("expected USER second, got %q", m.Command)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for USER")
	}

	srv.SendLine(":irc.example.org 001 nick :Welcome")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.AwaitRegistered(ctx); err != nil {
		t.Fatalf("AwaitRegistered: %v", err)
	}
	if c.State() != irc.Registered {
		t.Fatalf("expected Registered state, got %v", c.State())
	}
}
