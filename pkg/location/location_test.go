package location

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  Location
	}{
		{name: "absolute local", input: "/srv/http/nodeinfo.json", want: Location{Path: "/srv/http/nodeinfo.json"}},
		{name: "relative local", input: "www/nodeinfo.json", want: Location{Path: "www/nodeinfo.json"}},
		{name: "file url", input: "file:///var/www/nodeinfo.json", want: Location{Path: "/var/www/nodeinfo.json"}},
		{name: "scp home relative", input: "scp://alice@node.example/www/nodeinfo.json",
			want: Location{Scheme: SchemeSCP, User: "alice", Host: "node.example", Path: "www/nodeinfo.json"}},
		{name: "scp absolute with port", input: "scp://node.example:2222//srv/nodeinfo.json",
			want: Location{Scheme: SchemeSCP, Host: "node.example", Port: 2222, Path: "/srv/nodeinfo.json"}},
		{name: "sftp", input: "SFTP://bob@[fc00::1]/nodeinfo.json",
			want: Location{Scheme: SchemeSFTP, User: "bob", Host: "fc00::1", Path: "nodeinfo.json"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Fatalf("Parse(%q) = %+v, want %+v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  error
	}{
		{name: "empty", input: "  ", want: ErrEmpty},
		{name: "remote without host", input: "scp:///nodeinfo.json", want: ErrMissingHost},
		{name: "remote without path", input: "scp://node.example/", want: ErrMissingPath},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(tc.input); !errors.Is(err, tc.want) {
				t.Fatalf("Parse(%q) error = %v, want %v", tc.input, err, tc.want)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, input := range []string{
		"/srv/http/nodeinfo.json",
		"scp://alice@node.example/www/nodeinfo.json",
		"scp://node.example:2222//srv/nodeinfo.json",
		"sftp://node.example/nodeinfo.json",
		"sftp://bob@[fc00::1]:22/nodeinfo.json",
	} {
		loc := MustParse(input)
		if got := loc.String(); got != input {
			t.Errorf("String() = %q, want %q", got, input)
		}
	}
}

func TestStringEscapesPath(t *testing.T) {
	testCases := []struct {
		loc  Location
		want string
	}{
		{Location{Scheme: SchemeSCP, Host: "node", Path: "www/100%/info.json"}, "scp://node/www/100%25/info.json"},
		{Location{Scheme: SchemeSFTP, Host: "node", Path: "/srv/a?b#c.json"}, "sftp://node//srv/a%3Fb%23c.json"},
		{Location{Scheme: SchemeSCP, User: "alice", Host: "node", Port: 2222, Path: "my docs/node info.json"},
			"scp://alice@node:2222/my%20docs/node%20info.json"},
		{Location{Path: "/tmp/a?b#c%.json"}, "/tmp/a?b#c%.json"},
	}

	for _, tc := range testCases {
		got := tc.loc.String()
		if got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
			continue
		}
		back, err := Parse(got)
		if err != nil {
			t.Errorf("Parse(%q): %v", got, err)
			continue
		}
		if back != tc.loc {
			t.Errorf("Parse(%q) = %+v, want %+v", got, back, tc.loc)
		}
	}
}

func TestTarget(t *testing.T) {
	if got := MustParse("scp://alice@node/x").Target(); got != "alice@node" {
		t.Fatalf("Target() = %q", got)
	}
	if got := MustParse("scp://node/x").Target(); got != "node" {
		t.Fatalf("Target() = %q", got)
	}
}
