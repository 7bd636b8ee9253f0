package command

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncatePromptShortInputUntouched(t *testing.T) {
	if got := truncatePrompt("bom dia", 500); got != "bom dia" {
		t.Errorf("short prompt changed: %q", got)
	}
}

func TestTruncatePromptKeepsRuneBoundary(t *testing.T) {
	// 'á' is two bytes; a byte-indexed cut at 2 would land mid-sequence.
	got := truncatePrompt("aá", 2)
	if got != "a" {
		t.Errorf("got %q, want %q", got, "a")
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncated prompt is not valid UTF-8: %q", got)
	}
}

func TestTruncatePromptAccentedText(t *testing.T) {
	prompt := strings.Repeat("ação ", 200)
	for _, max := range []int{499, 500, 501} {
		got := truncatePrompt(prompt, max)
		if len(got) > max {
			t.Errorf("max %d: length %d exceeds cap", max, len(got))
		}
		if !utf8.ValidString(got) {
			t.Errorf("max %d: broken UTF-8 at the tail: %q", max, got[len(got)-4:])
		}
	}
}
