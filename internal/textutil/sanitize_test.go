package textutil_test

import (
	"testing"

	"pulpit/internal/textutil"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hope in Hard Times", "Hope in Hard Times"},
		{"Grace/Mercy: Part 1", "Grace-Mercy- Part 1"},
		{"What Now?", "What Now"},
		{"  padded  ", "padded"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := textutil.SanitizeFileName(tc.in); got != tc.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hope In Hard Times", "hope_in_hard_times"},
		{"already-safe_token", "already-safe_token"},
		{"***", "unknown"},
		{"", "unknown"},
	}
	for _, tc := range cases {
		if got := textutil.SanitizeToken(tc.in); got != tc.want {
			t.Errorf("SanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncateWords(t *testing.T) {
	long := "Trust in the Lord with all your heart and lean not on your own understanding"
	got := textutil.TruncateWords(long, 30)
	if len([]rune(got)) > 31 {
		t.Fatalf("truncated text too long: %q", got)
	}
	if got[len(got)-len("…"):] != "…" {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if short := textutil.TruncateWords("short", 30); short != "short" {
		t.Fatalf("short text should be unchanged, got %q", short)
	}
}

func TestFirstSentence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"First thought. Second thought.", "First thought."},
		{"Is anyone listening? Yes.", "Is anyone listening?"},
		{"No terminator here", "No terminator here"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := textutil.FirstSentence(tc.in); got != tc.want {
			t.Errorf("FirstSentence(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
