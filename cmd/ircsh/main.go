// Command ircsh is a minimal interactive IRC client, mainly useful as a
// worked example of driving the irc package end to end.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nyx-irc/irc"
)

func main() {
	server := flag.String("server", "irc.libera.chat", "server host to connect to")
	port := flag.Int("port", 6697, "server port")
	nick := flag.String("nick", "ircsh-user", "nickname to register with")
	channel := flag.String("channel", "", "channel to join once registered")
	noTLS := flag.Bool("no-tls", false, "disable TLS")
	debug := flag.Bool("debug", false, "log wire traffic to stderr")
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if !*debug {
		logger = logger.Level(zerolog.Disabled)
	}

	cfg := irc.SessionConfig{
		Server:      *server,
		Port:        *port,
		NoTLS:       *noTLS,
		Nick:        *nick,
		PingTimeout: 90 * time.Second,
		Logger:      logger,
	}
	client := irc.NewClient(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := client.Connect(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "connect:", err)
		os.Exit(1)
	}

	router := &irc.Router{}
	router.OnRegistered(func(irc.RegisteredEvent) {
		fmt.Printf("registered as %s\n", client.CurrentNick())
		if *channel != "" {
			_ = client.Join(ctx, *channel, "")
		}
	})
	router.OnPrivmsg(func(e irc.PrivmsgEvent) {
		fmt.Printf("<%s> %s: %s\n", e.Target, e.Sender, e.Text)
	})
	router.OnJoin(func(e irc.JoinEvent) {
		fmt.Printf("* %s joined %s\n", e.Nick, e.Channel)
	})
	router.OnDisconnected(func(e irc.DisconnectedEvent) {
		if e.Cause != nil {
			fmt.Fprintln(os.Stderr, "disconnected:", e.Cause)
		} else {
			fmt.Println("disconnected")
		}
		stop()
	})

	go router.Run(ctx, client.Events())
	go readCommands(ctx, client)

	<-ctx.Done()
	client.Disconnect("ircsh exiting")
}

// readCommands reads "target: message" lines from stdin and sends each as
// a PRIVMSG, until ctx is cancelled or stdin closes.
func readCommands(ctx context.Context, client *irc.Client) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		line := scanner.Text()
		target, text, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		_ = client.Privmsg(ctx, strings.TrimSpace(target), strings.TrimSpace(text))
	}
}
