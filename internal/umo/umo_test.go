package umo

import (
	"strings"
	"testing"
)

func TestBuildAndString(t *testing.T) {
	addr, err := Build("aiocqhttp", ScopeGroup, "123456")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got, want := addr.String(), "aiocqhttp:group:123456"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	cases := []struct {
		name     string
		platform string
		scope    Scope
		id       string
	}{
		{name: "empty platform", platform: "", scope: ScopeFriend, id: "1"},
		{name: "empty id", platform: "aiocqhttp", scope: ScopeFriend, id: "  "},
		{name: "space in id", platform: "aiocqhttp", scope: ScopeFriend, id: "1 2"},
		{name: "unknown scope", platform: "aiocqhttp", scope: Scope("channel"), id: "1"},
	}
	for _, tc := range cases {
		if _, err := Build(tc.platform, tc.scope, tc.id); err == nil {
			t.Fatalf("%s: Build() error = nil, want error", tc.name)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"aiocqhttp:friend:10001",
		"aiocqhttp:private:10001",
		"telegram:group:-100987",
	}
	for _, raw := range cases {
		addr, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", raw, err)
		}
		if got := addr.String(); got != raw {
			t.Fatalf("Parse(%q).String() = %q", raw, got)
		}
	}
}

func TestParseKeepsColonsInID(t *testing.T) {
	addr, err := Parse("slack:group:T01:C02")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if addr.ID != "T01:C02" {
		t.Fatalf("Parse() id = %q, want %q", addr.ID, "T01:C02")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "aiocqhttp", "aiocqhttp:group", "aiocqhttp:channel:1"} {
		if _, err := Parse(raw); err == nil {
			t.Fatalf("Parse(%q) error = nil, want error", raw)
		}
	}
}

func TestNormalizePlatform(t *testing.T) {
	cases := []struct {
		in         string
		want       string
		recognized bool
	}{
		{in: "aiocqhttp", want: "aiocqhttp", recognized: true},
		{in: "OneBot11", want: "aiocqhttp", recognized: true},
		{in: " go-cqhttp ", want: "aiocqhttp", recognized: true},
		{in: "napcat", want: "aiocqhttp", recognized: true},
		{in: "telegram", want: "telegram", recognized: true},
		{in: "", want: "aiocqhttp", recognized: false},
		{in: "matrix", want: "aiocqhttp", recognized: false},
	}
	for _, tc := range cases {
		got, ok := NormalizePlatform(tc.in)
		if got != tc.want || ok != tc.recognized {
			t.Fatalf("NormalizePlatform(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.recognized)
		}
	}
	if strings.TrimSpace(PlatformAiocqhttp) != PlatformAiocqhttp {
		t.Fatalf("canonical platform must be trimmed")
	}
}
