// Package irctransport defines the narrow transport abstraction the irc
// session engine reads and writes lines through, plus a default TLS/TCP
// implementation of it.
package irctransport

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"
)

// MaxLineSize is the hard cap on a single logical line, tags included.
// Transport implementations must reject anything larger as ErrLineTooLong
// rather than silently truncating it.
const MaxLineSize = 64 * 1024

// ErrClosed is returned by ReadLine once the transport has reached EOF or
// been closed; it is the transport-level equivalent of the wire protocol's
// "no more lines" signal.
var ErrClosed = errors.New("irctransport: closed")

// ErrLineTooLong is returned when a peer sends (or a caller attempts to
// send) a line exceeding MaxLineSize.
var ErrLineTooLong = errors.New("irctransport: line exceeds maximum size")

// Transport is the narrow contract the session engine depends on: open a
// connection, read and write whole logical lines, and close. Line framing
// (splitting the byte stream on CRLF) is the transport's job, not the
// engine's.
type Transport interface {
	// Open establishes the underlying connection. It must be called
	// exactly once, before any ReadLine or WriteLine call.
	Open(ctx context.Context) error

	// ReadLine returns the next logical line with any trailing CR/LF
	// stripped. It returns ErrClosed once no more lines are available.
	ReadLine(ctx context.Context) (string, error)

	// WriteLine sends line, appending a CRLF terminator if line does not
	// already end with one. Delivery is atomic with respect to other
	// WriteLine calls only if the caller serializes them; irc's writer
	// activity is the only caller in practice.
	WriteLine(ctx context.Context, line string) error

	// Close releases the underlying connection. Close is idempotent.
	Close() error
}

// TLSConfig configures the default TCP/TLS transport.
type TLSConfig struct {
	// Host and Port name the remote server.
	Host string
	Port int

	// UseTLS dials with crypto/tls when true, or a plain net.Dial
	// otherwise (for servers behind a TLS-terminating proxy, or test
	// networks).
	UseTLS bool

	// TLSConfig, when non-nil, configures the TLS dial. A nil value uses
	// tls's own defaults, which is sufficient for connecting to a public
	// IRC network with a valid certificate.
	TLSConfig *tls.Config

	// DialTimeout bounds Open. Zero means no timeout beyond the context
	// passed to Open.
	DialTimeout time.Duration
}

// tcpTransport is the default Transport: a single net.Conn framed as
// CRLF-terminated lines via bufio.Scanner, mirroring the teacher's
// bufio.Scanner-over-io.ReadWriteCloser reading style.
type tcpTransport struct {
	cfg     TLSConfig
	conn    net.Conn
	scanner *bufio.Scanner
}

// NewTCP builds a Transport that dials cfg.Host:cfg.Port on Open, using
// TLS when cfg.UseTLS is set. This is the library's shipped default so
// callers aren't forced to write their own Transport for the common case.
func NewTCP(cfg TLSConfig) Transport {
	return &tcpTransport{cfg: cfg}
}

func (t *tcpTransport) Open(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)
	dialer := &net.Dialer{Timeout: t.cfg.DialTimeout}

	var conn net.Conn
	var err error
	if t.cfg.UseTLS {
		conn, err = (&tls.Dialer{NetDialer: dialer, Config: t.cfg.TLSConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}

	t.conn = conn
	t.scanner = bufio.NewScanner(conn)
	t.scanner.Buffer(make([]byte, 4096), MaxLineSize)
	return nil
}

func (t *tcpTransport) ReadLine(ctx context.Context) (string, error) {
	if t.scanner.Scan() {
		line := t.scanner.Text()
		if len(line) > MaxLineSize {
			return "", ErrLineTooLong
		}
		return line, nil
	}
	if err := t.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return "", ErrLineTooLong
		}
		return "", err
	}
	return "", ErrClosed
}

func (t *tcpTransport) WriteLine(ctx context.Context, line string) error {
	if len(line) > MaxLineSize {
		return ErrLineTooLong
	}
	if len(line) < 2 || line[len(line)-2:] != "\r\n" {
		line += "\r\n"
	}
	_, err := t.conn.Write([]byte(line))
	return err
}

func (t *tcpTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	return t.conn.Close()
}
