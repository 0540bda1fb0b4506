package irc

import "testing"

func TestSerializeSimple(t *testing.T) {
	cases := []struct {
		cmd  Command
		want string
	}{
		{Nick{Nickname: "bob"}, "NICK bob"},
		{User{User: "bob", RealName: "Bob Bobson"}, "USER bob 0 * :Bob Bobson"},
		{Join{Channel: "#test"}, "JOIN #test"},
		{Join{Channel: "#test", Key: "secret"}, "JOIN #test secret"},
		{Privmsg{Target: "#test", Text: "hello world"}, "PRIVMSG #test :hello world"},
		{Privmsg{Target: "#test", Text: "hello"}, "PRIVMSG #test :hello"},
		{Privmsg{Target: "#test", Text: ""}, "PRIVMSG #test :"},
		{Pong{Token: "12345"}, "PONG :12345"},
		{Quit{Reason: "bye now"}, "QUIT :bye now"},
		{Quit{Reason: "bye"}, "QUIT :bye"},
		{Quit{}, "QUIT"},
		{Cap{Subcommand: "LS", Args: []string{"302"}}, "CAP LS 302"},
		{Cap{Subcommand: "END"}, "CAP END"},
		{Part{Channel: "#test", Reason: "spam"}, "PART #test :spam"},
		{Part{Channel: "#test"}, "PART #test"},
		{Kick{Channel: "#test", Nick: "bob", Reason: "spam"}, "KICK #test bob :spam"},
		{Kick{Channel: "#test", Nick: "bob"}, "KICK #test bob"},
		{Topic{Channel: "#test", Text: "hello"}, "TOPIC #test :hello"},
		{Away{Reason: "brb"}, "AWAY :brb"},
		{Away{}, "AWAY"},
		{Who{Mask: "*bot*"}, "WHO *bot*"},
		{Who{Mask: "*bot*", OpOnly: true}, "WHO *bot* o"},
		{Whowas{Nick: "old"}, "WHOWAS old"},
		{Whowas{Nick: "old", Count: 3}, "WHOWAS old 3"},
		{Ison{Nicks: []string{"bob"}}, "ISON bob"},
		{Ison{Nicks: []string{"bob", "alice"}}, "ISON bob alice"},
		{Userhost{Nicks: []string{"bob", "alice"}}, "USERHOST bob alice"},
		{Raw{Line: "WHATEVER foo"}, "WHATEVER foo"},
	}
	for _, c := range cases {
		got := Serialize(c.cmd)
		if got != c.want {
			t.Errorf("Serialize(%#v) = %q, want %q", c.cmd, got, c.want)
		}
	}
}

func TestSerializeTopicEmptyTextOmitted(t *testing.T) {
	got := Serialize(Topic{Channel: "#test", Text: ""})
	if got != "TOPIC #test" {
		t.Errorf("expected trailing empty text to be omitted, got %q", got)
	}
}

func TestSerializeTopicQuery(t *testing.T) {
	got := Serialize(Topic{Channel: "#test", Text: "should be ignored", Query: true})
	if got != "TOPIC #test" {
		t.Errorf("query topic should not include text, got %q", got)
	}
}

// TestPrivmsgEmptyTextKeepsTrailingParam guards invariant 1: params is
// never empty for PRIVMSG, even when the message body itself is empty.
func TestPrivmsgEmptyTextKeepsTrailingParam(t *testing.T) {
	line := Serialize(Privmsg{Target: "#test", Text: ""})
	m := Parse(line)
	if len(m.Params) != 2 {
		t.Fatalf("expected 2 params round-tripping %q, got %v", line, m.Params)
	}
	if m.Text() != "" {
		t.Fatalf("expected empty trailing text, got %q", m.Text())
	}
}

// TestIsonRoundTripsMultipleNicks guards against ISON's nick list being
// joined into a single trailing param, which would make Parse read multiple
// nicks back as one.
func TestIsonRoundTripsMultipleNicks(t *testing.T) {
	line := Serialize(Ison{Nicks: []string{"bob", "alice"}})
	m := Parse(line)
	if len(m.Params) != 2 {
		t.Fatalf("expected 2 params round-tripping %q, got %v", line, m.Params)
	}
}
