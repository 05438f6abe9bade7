package persistence

import (
	"testing"
)

func TestLikeEscape(t *testing.T) {
	cases := map[string]string{
		"g1":      "g1",
		"g%":      `g\%`,
		"g_1":     `g\_1`,
		`g\1`:     `g\\1`,
		"%_":      `\%\_`,
		"group-1": "group-1",
	}
	for in, want := range cases {
		got := likeEscape(in)
		if got != want {
			t.Errorf("likeEscape(%q) should be %q, got %q", in, want, got)
		}
	}
}
