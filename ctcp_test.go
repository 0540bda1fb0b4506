package irc

import "testing"

func TestParseCTCP(t *testing.T) {
	cmd, arg, ok := ParseCTCP("\x01ACTION waves\x01")
	if !ok {
		t.Fatalf("expected CTCP to parse")
	}
	if cmd != "ACTION" || arg != "waves" {
		t.Fatalf("got cmd=%q arg=%q", cmd, arg)
	}
}

func TestParseCTCPNotQuoted(t *testing.T) {
	_, _, ok := ParseCTCP("just some text")
	if ok {
		t.Fatalf("plain text should not parse as CTCP")
	}
}

func TestFormatCTCPRoundTrip(t *testing.T) {
	line := FormatCTCP("VERSION", "")
	cmd, arg, ok := ParseCTCP(line)
	if !ok || cmd != "VERSION" || arg != "" {
		t.Fatalf("round trip failed: %q -> cmd=%q arg=%q ok=%v", line, cmd, arg, ok)
	}

	line2 := FormatCTCP("ACTION", "waves")
	cmd2, arg2, ok2 := ParseCTCP(line2)
	if !ok2 || cmd2 != "ACTION" || arg2 != "waves" {
		t.Fatalf("round trip with arg failed: %q -> cmd=%q arg=%q", line2, cmd2, arg2)
	}
}
