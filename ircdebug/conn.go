// Package ircdebug contains helper functions that are useful while writing
// an IRC client, primarily wire-level logging of a Transport's traffic.
package ircdebug

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nyx-irc/irc/irctransport"
)

// WrapTransport returns a Transport that logs every line read from and
// written to t at Debug level through log, with a "dir" field of "in" for
// inbound and "out" for outbound. This is the same "tee everything to a log" idea as
// the teacher's io.Writer-prefixing WriteTo, ported from raw io.Reader/
// Writer plumbing to the Transport contract's whole-line operations, and
// from a plain-text prefix writer to structured zerolog fields.
func WrapTransport(t irctransport.Transport, log zerolog.Logger) irctransport.Transport {
	return &debugTransport{Transport: t, log: log}
}

type debugTransport struct {
	irctransport.Transport
	log zerolog.Logger
}

func (d *debugTransport) ReadLine(ctx context.Context) (string, error) {
	line, err := d.Transport.ReadLine(ctx)
	if err != nil {
		return line, err
	}
	d.log.Debug().Str("dir", "in").Msg(line)
	return line, nil
}

func (d *debugTransport) WriteLine(ctx context.Context, line string) error {
	err := d.Transport.WriteLine(ctx, line)
	d.log.Debug().Str("dir", "out").Msg(line)
	return err
}
