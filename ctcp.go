package irc

import "regexp"

// ctcpDelim is the CTCP quoting byte: a message body wrapped in a pair of
// these is a CTCP query or reply rather than plain text.
const ctcpDelim = "\x01"

var ctcpPattern = regexp.MustCompile("^\x01([^ \x01]+) ?(.*?)\x01?$")

// ParseCTCP extracts a CTCP command and argument from text, the body of a
// PrivmsgEvent or NoticeEvent. ok is false when text is not CTCP-quoted.
func ParseCTCP(text string) (command, arg string, ok bool) {
	if len(text) == 0 || text[0] != ctcpDelim[0] {
		return "", "", false
	}
	parts := ctcpPattern.FindStringSubmatch(text)
	if parts == nil {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// FormatCTCP renders command and arg as a CTCP-quoted string suitable as
// the Text field of a Privmsg or Notice.
func FormatCTCP(command, arg string) string {
	if arg == "" {
		return ctcpDelim + command + ctcpDelim
	}
	return ctcpDelim + command + " " + arg + ctcpDelim
}
