// Package irctest provides an in-memory fake IRC server for integration
// tests, adapted from the teacher's io.Pipe-based mock server to speak
// through the irctransport.Transport contract instead of a bare
// io.ReadWriteCloser.
package irctest

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"github.com/nyx-irc/irc"
	"github.com/nyx-irc/irc/irctransport"
)

// Server is a loopback fake IRC server. Client() returns a Transport the
// client under test dials into; SendLine pushes a server-to-client line;
// Received yields Messages decoded from whatever the client wrote.
type Server struct {
	toClientR *io.PipeReader
	toClientW *io.PipeWriter

	fromClientR *io.PipeReader
	fromClientW *io.PipeWriter

	Received chan irc.Message

	closeOnce sync.Once
}

// NewServer builds a Server with its reader goroutine already running.
// Callers must Close it when done.
func NewServer() *Server {
	toClientR, toClientW := io.Pipe()
	fromClientR, fromClientW := io.Pipe()

	s := &Server{
		toClientR:   toClientR,
		toClientW:   toClientW,
		fromClientR: fromClientR,
		fromClientW: fromClientW,
		Received:    make(chan irc.Message, 64),
	}
	go s.readClient()
	return s
}

func (s *Server) readClient() {
	defer close(s.Received)
	scanner := bufio.NewScanner(s.fromClientR)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		s.Received <- irc.Parse(line)
	}
}

// SendLine writes line to the client, appending CRLF if absent.
func (s *Server) SendLine(line string) {
	if !strings.HasSuffix(line, "\r\n") {
		line += "\r\n"
	}
	_, _ = s.toClientW.Write([]byte(line))
}

// Client returns a Transport backed by this Server's pipes, ready for a
// session engine's connect() to Open.
func (s *Server) Client() irctransport.Transport {
	return &clientTransport{server: s}
}

// Close tears down both pipe pairs. Idempotent.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		_ = s.toClientW.Close()
		_ = s.fromClientW.Close()
	})
	return nil
}

// clientTransport is the client-side end of a Server's loopback pipes.
type clientTransport struct {
	server *Server
	sc     *bufio.Scanner
}

func (t *clientTransport) Open(ctx context.Context) error {
	t.sc = bufio.NewScanner(t.server.toClientR)
	return nil
}

func (t *clientTransport) ReadLine(ctx context.Context) (string, error) {
	if t.sc.Scan() {
		return strings.TrimRight(t.sc.Text(), "\r\n"), nil
	}
	if err := t.sc.Err(); err != nil {
		return "", err
	}
	return "", irctransport.ErrClosed
}

func (t *clientTransport) WriteLine(ctx context.Context, line string) error {
	if !strings.HasSuffix(line, "\r\n") {
		line += "\r\n"
	}
	_, err := t.server.fromClientW.Write([]byte(line))
	return err
}

func (t *clientTransport) Close() error {
	return t.server.Close()
}
